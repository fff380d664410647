package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sagealpha/backend/internal/storage"
)

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions(r.Context(), userID(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	// An empty body is fine; the session gets the default title.
	_ = decode(r, &req)

	sess, err := h.store.CreateSession(r.Context(), userID(r), req.Title)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	sess, err := h.store.Session(r.Context(), userID(r), sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	messages, err := h.store.SessionMessages(r.Context(), userID(r), sessionID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session": sess, "messages": messages})
}

func (h *Handler) handleRenameSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decode(r, &req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	err := h.store.RenameSession(r.Context(), userID(r), mux.Vars(r)["id"], req.Title)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "session renamed"})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteSession(r.Context(), userID(r), mux.Vars(r)["id"])
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}

// handleShareSession returns the session transcript in a portable shape.
func (h *Handler) handleShareSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	sess, err := h.store.Session(r.Context(), userID(r), sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	messages, err := h.store.SessionMessages(r.Context(), userID(r), sessionID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"title":    sess.Title,
		"messages": messages,
		"shared":   true,
	})
}
