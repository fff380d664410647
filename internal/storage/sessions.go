package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *Store) CreateSession(ctx context.Context, userID, title string) (Session, error) {
	if title == "" {
		title = "New Chat"
	}

	sess := Session{
		ID:     uuid.New().String(),
		UserID: userID,
		Title:  title,
	}

	query := `
		INSERT INTO chat_sessions (id, user_id, title)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	if err := s.conn.QueryRowContext(ctx, query, sess.ID, sess.UserID, sess.Title).Scan(&sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return Session{}, err
	}

	return sess, nil
}

func (s *Store) Session(ctx context.Context, userID, sessionID string) (Session, error) {
	var sess Session

	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1 AND user_id = $2
	`

	err := s.conn.QueryRowContext(ctx, query, sessionID, userID).Scan(&sess.ID, &sess.UserID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}

	return sess, nil
}

func (s *Store) Sessions(ctx context.Context, userID string) ([]Session, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := s.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []Session{}

	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

func (s *Store) RenameSession(ctx context.Context, userID, sessionID, title string) error {
	res, err := s.conn.ExecContext(
		ctx,
		`UPDATE chat_sessions SET title = $3, updated_at = now() WHERE id = $1 AND user_id = $2`,
		sessionID,
		userID,
		title,
	)
	if err != nil {
		return err
	}

	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteSession removes the session and every message that belongs to it.
func (s *Store) DeleteSession(ctx context.Context, userID, sessionID string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = $1 AND user_id = $2`, sessionID, userID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (s *Store) TouchSession(ctx context.Context, userID, sessionID string) error {
	_, err := s.conn.ExecContext(
		ctx,
		`UPDATE chat_sessions SET updated_at = now() WHERE id = $1 AND user_id = $2`,
		sessionID,
		userID,
	)
	return err
}

func (s *Store) AddMessage(ctx context.Context, userID, sessionID, role, content string) error {
	_, err := s.conn.ExecContext(
		ctx,
		`INSERT INTO messages (user_id, session_id, role, content) VALUES ($1, $2, $3, $4)`,
		userID,
		sessionID,
		role,
		content,
	)
	return err
}

func (s *Store) CountMessages(ctx context.Context, userID, sessionID string) (int, error) {
	var count int

	err := s.conn.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = $1 AND user_id = $2`,
		sessionID,
		userID,
	).Scan(&count)

	return count, err
}

// RecentMessages returns the last limit messages in chronological order.
func (s *Store) RecentMessages(ctx context.Context, userID, sessionID string, limit int) ([]ChatMessage, error) {
	query := `
		SELECT role, content FROM (
			SELECT id, role, content
			FROM messages
			WHERE session_id = $1 AND user_id = $2
			ORDER BY id DESC
			LIMIT $3
		) recent
		ORDER BY id ASC
	`

	rows, err := s.conn.QueryContext(ctx, query, sessionID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []ChatMessage{}

	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// SessionMessages returns the full history of a session in chronological order.
func (s *Store) SessionMessages(ctx context.Context, userID, sessionID string) ([]ChatMessage, error) {
	query := `
		SELECT role, content
		FROM messages
		WHERE session_id = $1 AND user_id = $2
		ORDER BY id ASC
	`

	rows, err := s.conn.QueryContext(ctx, query, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []ChatMessage{}

	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
