package handler

import (
	"net/http"
	"time"
)

func (h *Handler) handleListPortfolio(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.PortfolioItems(r.Context(), userID(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"portfolio": items})
}

func (h *Handler) handleAddPortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyName string `json:"company_name"`
		Ticker      string `json:"ticker"`
		Date        string `json:"date"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "company_name is required")
		return
	}

	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	item, created, err := h.store.UpsertPortfolioItem(r.Context(), userID(r), req.CompanyName, req.Ticker, req.Date)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	writeJSON(w, status, item)
}
