package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alexanderramin/taskpilot/internal/chat"
	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/alexanderramin/taskpilot/internal/tracker"
)

type errorBody struct {
	Error     string `json:"error"`
	SessionID string `json:"session_id,omitempty"`
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if data == nil || status == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// serviceError maps a service failure onto a status. Upstream failures get a
// generic message; their detail only goes to the log.
func (h *handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := h.errorStatus(r, err)
	jsonError(w, status, message)
}

// sessionError is serviceError for chat turns on a session that outlives the
// failure, so the client can retry or reset it.
func (h *handler) sessionError(w http.ResponseWriter, r *http.Request, err error, sessionID string) {
	status, message := h.errorStatus(r, err)
	jsonResponse(w, status, errorBody{Error: message, SessionID: sessionID})
}

func (h *handler) errorStatus(r *http.Request, err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, chat.ErrInvalidArguments):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, tracker.ErrNotFound), errors.Is(err, chat.ErrSessionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, llm.ErrDisabled):
		return http.StatusServiceUnavailable, "language model is disabled"
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err.Error())
		return http.StatusInternalServerError, "internal server error"
	}
}

// decodeJSON reads exactly one JSON document with no unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// decodeOptionalJSON is decodeJSON that accepts an empty body.
func decodeOptionalJSON(r *http.Request, dst any) error {
	err := decodeJSON(r, dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
