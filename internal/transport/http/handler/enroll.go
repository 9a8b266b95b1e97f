package handler

import (
	"encoding/json"
	"net/http"

	"github.com/torn-watcher/internal/application/enroll"
)

// EnrollEnvelope is the enrollment response. The API key never leaves the server.
type EnrollEnvelope struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// EnrollHandler registers API keys and push devices.
type EnrollHandler struct {
	svc enroll.Service
}

func NewEnrollHandler(svc enroll.Service) *EnrollHandler { return &EnrollHandler{svc: svc} }

func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req enroll.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.svc.Enroll(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, EnrollEnvelope{UserID: u.UserID, Name: u.Name})
}
