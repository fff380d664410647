package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sagealpha/backend/internal/service"
	"github.com/sagealpha/backend/internal/storage"
	"github.com/sagealpha/backend/vectorstore"
)

type Handler struct {
	auth    *service.AuthService
	chat    *service.ChatService
	reports *service.ReportService
	store   *storage.Store
	vectors vectorstore.Store
}

func New(auth *service.AuthService, chat *service.ChatService, reports *service.ReportService, store *storage.Store, vectors vectorstore.Store) *Handler {
	return &Handler{
		auth:    auth,
		chat:    chat,
		reports: reports,
		store:   store,
		vectors: vectors,
	}
}

func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/status", h.handleStatus).Methods(http.MethodGet)

	r.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/forgot-password", h.handleForgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", h.handleResetPassword).Methods(http.MethodPost)

	// Everything below requires a bearer token.
	authed := r.PathPrefix("/").Subrouter()
	authed.Use(h.authenticate)

	authed.HandleFunc("/user", h.handleUser).Methods(http.MethodGet)

	authed.HandleFunc("/chat", h.handleChat).Methods(http.MethodPost)
	authed.HandleFunc("/chat/create-report", h.handleCreateReport).Methods(http.MethodPost)

	authed.HandleFunc("/sessions", h.handleListSessions).Methods(http.MethodGet)
	authed.HandleFunc("/sessions", h.handleCreateSession).Methods(http.MethodPost)
	authed.HandleFunc("/sessions/{id}", h.handleGetSession).Methods(http.MethodGet)
	authed.HandleFunc("/sessions/{id}/rename", h.handleRenameSession).Methods(http.MethodPost)
	authed.HandleFunc("/sessions/{id}/delete", h.handleDeleteSession).Methods(http.MethodPost)
	authed.HandleFunc("/sessions/{id}/share", h.handleShareSession).Methods(http.MethodPost)

	authed.HandleFunc("/portfolio", h.handleListPortfolio).Methods(http.MethodGet)
	authed.HandleFunc("/portfolio/add", h.handleAddPortfolio).Methods(http.MethodPost)

	authed.HandleFunc("/subscribers", h.handleListSubscribers).Methods(http.MethodGet)
	authed.HandleFunc("/subscribers", h.handleCreateSubscriber).Methods(http.MethodPost)
	authed.HandleFunc("/subscribers/{id}", h.handleUpdateSubscriber).Methods(http.MethodPut)
	authed.HandleFunc("/subscribers/{id}", h.handleDeleteSubscriber).Methods(http.MethodDelete)
	authed.HandleFunc("/subscribers/{id}/history", h.handleSubscriberHistory).Methods(http.MethodGet)

	authed.HandleFunc("/reports", h.handleListReports).Methods(http.MethodGet)
	authed.HandleFunc("/reports/{id}/approve", h.handleApproveReport).Methods(http.MethodPost)
	authed.HandleFunc("/reports/{id}/delete", h.handleDeleteReport).Methods(http.MethodPost)
	authed.HandleFunc("/reports/download/{id}", h.handleDownloadReport).Methods(http.MethodGet)
	authed.HandleFunc("/reports/html/{id}", h.handleReportHTML).Methods(http.MethodGet)
	authed.HandleFunc("/reports/preview/{id}", h.handlePreviewReport).Methods(http.MethodGet)
	authed.HandleFunc("/reports/edit/{id}", h.handleEditReport).Methods(http.MethodGet)
	authed.HandleFunc("/reports/edit/{id}", h.handleUpdateReport).Methods(http.MethodPut)
	authed.HandleFunc("/reports/send", h.handleSendReport).Methods(http.MethodPost)

	return r
}
