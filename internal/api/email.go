package api

import (
	"net/http"
	"strings"
)

type createDraftRequest struct {
	Subject      string   `json:"subject"`
	Body         string   `json:"body"`
	ToRecipients []string `json:"to_recipients"`
}

func (h *handler) createDraft(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	link, err := h.Email.CreateDraft(req.Subject, req.Body, req.ToRecipients)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"draft_link": link})
}

type generateEmailRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Context string `json:"context"`
}

func (h *handler) generateEmail(w http.ResponseWriter, r *http.Request) {
	var req generateEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft, err := h.Email.GenerateEmail(r.Context(), strings.TrimSpace(req.To), strings.TrimSpace(req.From), req.Context)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, draft)
}
