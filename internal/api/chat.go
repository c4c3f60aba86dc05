package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/chat"
	"github.com/alexanderramin/taskpilot/internal/llm"
	"nhooyr.io/websocket"
)

type sendMessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type sendMessageResponse struct {
	SessionID string        `json:"session_id"`
	Reply     string        `json:"reply"`
	ToolCalls int           `json:"tool_calls"`
	Messages  []llm.Message `json:"messages"`
}

func (h *handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		jsonError(w, http.StatusBadRequest, "message is required")
		return
	}
	sess, created, err := h.Sessions.Resolve(req.SessionID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	reply, err := h.Chat.Send(r.Context(), sess, req.Message, nil)
	if err != nil {
		// A session nobody has seen yet cannot be retried; drop it.
		if created {
			h.Sessions.Delete(sess.ID)
			h.serviceError(w, r, err)
			return
		}
		h.sessionError(w, r, err, sess.ID)
		return
	}
	jsonResponse(w, http.StatusOK, sendMessageResponse{
		SessionID: sess.ID,
		Reply:     reply.Message.Content,
		ToolCalls: reply.ToolCalls,
		Messages:  sess.Conversation.Snapshot(),
	})
}

type resetChatRequest struct {
	SessionID  string `json:"session_id"`
	KeepSystem bool   `json:"keep_system,omitempty"`
}

func (h *handler) resetChat(w http.ResponseWriter, r *http.Request) {
	var req resetChatRequest
	if err := decodeJSON(r, &req); err != nil || req.SessionID == "" {
		jsonError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if err := h.Sessions.Reset(req.SessionID, req.KeepSystem); err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"session_id": req.SessionID, "status": "reset"})
}

// socketMessage is what chat websocket clients send.
type socketMessage struct {
	Message string `json:"message"`
}

// socketHello is the first frame on a chat websocket.
type socketHello struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func (h *handler) chatSocket(w http.ResponseWriter, r *http.Request) {
	sess, created, err := h.Sessions.Resolve(r.URL.Query().Get("session_id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	// A socket-created session without a completed turn holds nothing worth
	// resuming.
	var completed bool
	defer func() {
		if created && !completed {
			h.Sessions.Delete(sess.ID)
		}
	}()

	patterns := h.origins
	if slices.Contains(patterns, "*") {
		patterns = []string{"*"}
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: patterns})
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(32768)

	ctx := r.Context()
	if err := writeFrame(ctx, conn, socketHello{Type: "session", SessionID: sess.ID}); err != nil {
		return
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.DebugContext(ctx, "chat websocket closed", "session_id", sess.ID, "error", err)
			}
			return
		}

		var msg socketMessage
		if err := json.Unmarshal(data, &msg); err != nil || strings.TrimSpace(msg.Message) == "" {
			if writeFrame(ctx, conn, chat.Event{Type: chat.EventError, Error: "invalid message format"}) != nil {
				return
			}
			continue
		}

		var writeErr error
		sink := func(e chat.Event) {
			if writeErr == nil {
				writeErr = writeFrame(ctx, conn, e)
			}
		}
		// Chat failures already reached the client as an error event.
		if _, err := h.Chat.Send(ctx, sess, msg.Message, sink); err == nil {
			completed = true
		}
		if writeErr != nil {
			return
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
