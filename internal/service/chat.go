package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sagealpha/backend/generator"
	"github.com/sagealpha/backend/internal/storage"
	"github.com/sagealpha/backend/rag"
)

const historyLimit = 10

const chatSystemPromptFormat = `You are SageAlpha, a financial assistant specializing in equity research and market analysis.

Use the following retrieved context when it is relevant to the user's question:

%s

If the context does not cover the question, answer from your own knowledge and say so.`

const chatSystemPromptNoContext = `You are SageAlpha, a financial assistant specializing in equity research and market analysis. Answer from your own knowledge.`

type ChatService struct {
	store     *storage.Store
	pipeline  *rag.Pipeline
	generator generator.Generator
}

func NewChatService(store *storage.Store, pipeline *rag.Pipeline, gen generator.Generator) *ChatService {
	return &ChatService{
		store:     store,
		pipeline:  pipeline,
		generator: gen,
	}
}

type Reply struct {
	ID        string       `json:"id"`
	Response  string       `json:"response"`
	SessionID string       `json:"session_id"`
	Sources   []rag.Source `json:"sources"`
}

// Respond runs one chat turn: it persists the user message, retrieves
// context for the question, asks the model with the recent history, and
// persists the assistant reply.
func (s *ChatService) Respond(ctx context.Context, userID, sessionID, message string) (Reply, error) {
	sessionID, err := s.ensureSession(ctx, userID, sessionID)
	if err != nil {
		return Reply{}, err
	}

	if err := s.store.AddMessage(ctx, userID, sessionID, generator.RoleUser, message); err != nil {
		return Reply{}, fmt.Errorf("failed to save user message: %w", err)
	}

	if err := s.autoTitle(ctx, userID, sessionID, message); err != nil {
		slog.WarnContext(ctx, "failed to update session title", "session_id", sessionID, "error", err)
	}

	result, err := s.pipeline.Retrieve(ctx, message, 0)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to retrieve context: %w", err)
	}

	system := chatSystemPromptNoContext
	if result.Context != "" {
		system = fmt.Sprintf(chatSystemPromptFormat, result.Context)
	}

	history, err := s.store.RecentMessages(ctx, userID, sessionID, historyLimit)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to load history: %w", err)
	}

	messages := []generator.Message{{Role: generator.RoleSystem, Content: system}}
	for _, m := range history {
		messages = append(messages, generator.Message{Role: m.Role, Content: m.Content})
	}

	answer, err := s.generator.Complete(ctx, messages)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to generate response: %w", err)
	}

	if err := s.store.AddMessage(ctx, userID, sessionID, generator.RoleAssistant, answer); err != nil {
		return Reply{}, fmt.Errorf("failed to save assistant message: %w", err)
	}

	if err := s.store.TouchSession(ctx, userID, sessionID); err != nil {
		slog.WarnContext(ctx, "failed to touch session", "session_id", sessionID, "error", err)
	}

	return Reply{
		ID:        uuid.New().String(),
		Response:  answer,
		SessionID: sessionID,
		Sources:   result.Sources,
	}, nil
}

func (s *ChatService) ensureSession(ctx context.Context, userID, sessionID string) (string, error) {
	if sessionID != "" {
		if _, err := s.store.Session(ctx, userID, sessionID); err == nil {
			return sessionID, nil
		}
	}

	sess, err := s.store.CreateSession(ctx, userID, "")
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return sess.ID, nil
}

// autoTitle names a fresh session after its first user message.
func (s *ChatService) autoTitle(ctx context.Context, userID, sessionID, message string) error {
	count, err := s.store.CountMessages(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if count > 2 {
		return nil
	}

	title := sessionTitle(message)
	if title == "" {
		return nil
	}

	return s.store.RenameSession(ctx, userID, sessionID, title)
}

// sessionTitle trims the message to at most 60 characters, cutting on a
// rune boundary so multi-byte text stays valid.
func sessionTitle(message string) string {
	title := strings.TrimSpace(message)
	if runes := []rune(title); len(runes) > 60 {
		title = string(runes[:60])
	}
	return title
}
