package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Subscriber struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Mobile      string    `json:"mobile"`
	Email       string    `json:"email"`
	RiskProfile string    `json:"risk_profile"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Store) CreateSubscriber(ctx context.Context, userID, name, mobile, email, riskProfile string) (Subscriber, error) {
	if riskProfile == "" {
		riskProfile = "Medium"
	}

	sub := Subscriber{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		Mobile:      mobile,
		Email:       email,
		RiskProfile: riskProfile,
		IsActive:    true,
	}

	query := `
		INSERT INTO subscribers (id, user_id, name, mobile, email, risk_profile, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	if err := s.conn.QueryRowContext(ctx, query, sub.ID, sub.UserID, sub.Name, sub.Mobile, sub.Email, sub.RiskProfile, sub.IsActive).Scan(&sub.CreatedAt); err != nil {
		return Subscriber{}, err
	}

	return sub, nil
}

func (s *Store) Subscriber(ctx context.Context, userID, subscriberID string) (Subscriber, error) {
	return s.scanSubscriber(s.conn.QueryRowContext(ctx, subscriberQuery+` WHERE id = $1 AND user_id = $2`, subscriberID, userID))
}

// SubscriberByEmail resolves an active subscriber by address,
// case-insensitively.
func (s *Store) SubscriberByEmail(ctx context.Context, userID, email string) (Subscriber, error) {
	query := subscriberQuery + ` WHERE user_id = $1 AND lower(email) = lower($2) AND is_active`
	return s.scanSubscriber(s.conn.QueryRowContext(ctx, query, userID, strings.TrimSpace(email)))
}

// Subscribers returns the user's active subscribers.
func (s *Store) Subscribers(ctx context.Context, userID string) ([]Subscriber, error) {
	query := subscriberQuery + ` WHERE user_id = $1 AND is_active ORDER BY created_at DESC`

	rows, err := s.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []Subscriber{}

	for rows.Next() {
		var sub Subscriber
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Name, &sub.Mobile, &sub.Email, &sub.RiskProfile, &sub.IsActive, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

func (s *Store) UpdateSubscriber(ctx context.Context, userID, subscriberID, name, mobile, email, riskProfile string) error {
	res, err := s.conn.ExecContext(
		ctx,
		`UPDATE subscribers SET name = $3, mobile = $4, email = $5, risk_profile = $6 WHERE id = $1 AND user_id = $2`,
		subscriberID,
		userID,
		name,
		mobile,
		email,
		riskProfile,
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

// DeactivateSubscriber soft-deletes: delivery history stays intact.
func (s *Store) DeactivateSubscriber(ctx context.Context, userID, subscriberID string) error {
	res, err := s.conn.ExecContext(
		ctx,
		`UPDATE subscribers SET is_active = FALSE WHERE id = $1 AND user_id = $2`,
		subscriberID,
		userID,
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

const subscriberQuery = `
	SELECT id, user_id, name, mobile, email, risk_profile, is_active, created_at
	FROM subscribers
`

func (s *Store) scanSubscriber(row *sql.Row) (Subscriber, error) {
	var sub Subscriber

	err := row.Scan(&sub.ID, &sub.UserID, &sub.Name, &sub.Mobile, &sub.Email, &sub.RiskProfile, &sub.IsActive, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Subscriber{}, ErrNotFound
	}
	if err != nil {
		return Subscriber{}, err
	}

	return sub, nil
}
