package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sagealpha/backend/internal/storage"
)

func (h *Handler) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.Subscribers(r.Context(), userID(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"subscribers": subs})
}

func (h *Handler) handleCreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Mobile      string `json:"mobile"`
		Email       string `json:"email"`
		RiskProfile string `json:"risk_profile"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	sub, err := h.store.CreateSubscriber(r.Context(), userID(r), req.Name, req.Mobile, req.Email, req.RiskProfile)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) handleUpdateSubscriber(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Mobile      string `json:"mobile"`
		Email       string `json:"email"`
		RiskProfile string `json:"risk_profile"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.store.UpdateSubscriber(r.Context(), userID(r), mux.Vars(r)["id"], req.Name, req.Mobile, req.Email, req.RiskProfile)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "subscriber not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "subscriber updated"})
}

func (h *Handler) handleDeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeactivateSubscriber(r.Context(), userID(r), mux.Vars(r)["id"])
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "subscriber not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "subscriber removed"})
}

func (h *Handler) handleSubscriberHistory(w http.ResponseWriter, r *http.Request) {
	subscriberID := mux.Vars(r)["id"]

	if _, err := h.store.Subscriber(r.Context(), userID(r), subscriberID); errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "subscriber not found")
		return
	} else if err != nil {
		writeInternalError(w, r, err)
		return
	}

	deliveries, err := h.store.Deliveries(r.Context(), userID(r), subscriberID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": deliveries})
}
