package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sagealpha/backend/internal/service"
)

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context(), userID(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (h *Handler) handleApproveReport(w http.ResponseWriter, r *http.Request) {
	err := h.reports.Approve(r.Context(), userID(r), mux.Vars(r)["id"])
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "report approved"})
}

func (h *Handler) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	err := h.reports.Delete(r.Context(), userID(r), mux.Vars(r)["id"])
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "report deleted"})
}

func (h *Handler) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.reports.PDF(r.Context(), userID(r), mux.Vars(r)["id"])
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	html, err := h.reports.HTML(r.Context(), userID(r), mux.Vars(r)["id"])
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if errors.Is(err, service.ErrReportTooLarge) {
		writeError(w, http.StatusUnprocessableEntity, "stored report exceeds the maximum size")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}

// handlePreviewReport serves the raw document for an iframe preview.
func (h *Handler) handlePreviewReport(w http.ResponseWriter, r *http.Request) {
	html, err := h.reports.HTML(r.Context(), userID(r), mux.Vars(r)["id"])
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if errors.Is(err, service.ErrReportTooLarge) {
		writeError(w, http.StatusUnprocessableEntity, "stored report exceeds the maximum size")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// handleEditReport returns the report's body markup for editing.
func (h *Handler) handleEditReport(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["id"]

	body, err := h.reports.EditBody(r.Context(), userID(r), reportID)
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if errors.Is(err, service.ErrReportTooLarge) {
		writeError(w, http.StatusUnprocessableEntity, "stored report exceeds the maximum size")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"html": body, "report_id": reportID})
}

func (h *Handler) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML string `json:"html"`
	}
	if err := decode(r, &req); err != nil || req.HTML == "" {
		writeError(w, http.StatusBadRequest, "html is required")
		return
	}

	err := h.reports.UpdateBody(r.Context(), userID(r), mux.Vars(r)["id"], req.HTML)
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if errors.Is(err, service.ErrReportTooLarge) {
		writeError(w, http.StatusUnprocessableEntity, "edited report exceeds the maximum size")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "report updated"})
}

func (h *Handler) handleSendReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reports          []string `json:"reports"`
		SubscriberEmails []string `json:"subscriber_emails"`
	}
	if err := decode(r, &req); err != nil || len(req.Reports) == 0 {
		writeError(w, http.StatusBadRequest, "reports is required")
		return
	}

	result, err := h.reports.Send(r.Context(), userID(r), req.Reports, req.SubscriberEmails)
	switch {
	case errors.Is(err, service.ErrNoReports):
		writeError(w, http.StatusBadRequest, "reports is required")
		return
	case errors.Is(err, service.ErrNoSubscribers):
		writeError(w, http.StatusBadRequest, "no active subscribers to send to")
		return
	case errors.Is(err, service.ErrEmailDisabled):
		writeError(w, http.StatusServiceUnavailable, "email sending is not configured")
		return
	case err != nil:
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
