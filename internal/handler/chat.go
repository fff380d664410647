package handler

import (
	"errors"
	"net/http"

	"github.com/sagealpha/backend/internal/service"
)

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.chat.Respond(r.Context(), userID(r), req.SessionID, req.Message)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyName string `json:"company_name"`
		ReportType  string `json:"report_type"`
		SessionID   string `json:"session_id"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "company_name is required")
		return
	}

	created, err := h.reports.Create(r.Context(), userID(r), req.SessionID, req.CompanyName, req.ReportType)
	if errors.Is(err, service.ErrReportTooLarge) {
		writeError(w, http.StatusUnprocessableEntity, "generated report exceeds the maximum size")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, created)
}
