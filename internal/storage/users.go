package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type User struct {
	ID           string
	Username     string
	DisplayName  string
	Email        string
	PasswordHash string
	IsActive     bool
	IsWaitlist   bool
	OTPCode      sql.NullString
	OTPExpires   sql.NullTime
	CreatedAt    time.Time
}

func (s *Store) CreateUser(ctx context.Context, username, displayName, email, passwordHash string, waitlist bool) (User, error) {
	u := User{
		ID:           uuid.New().String(),
		Username:     username,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsWaitlist:   waitlist,
	}

	query := `
		INSERT INTO users (id, username, display_name, email, password_hash, is_active, is_waitlist)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if _, err := s.conn.ExecContext(ctx, query, u.ID, u.Username, u.DisplayName, u.Email, u.PasswordHash, u.IsActive, u.IsWaitlist); err != nil {
		return User{}, err
	}

	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.conn.QueryRowContext(ctx, userQuery+` WHERE email = $1`, email))
}

func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.conn.QueryRowContext(ctx, userQuery+` WHERE id = $1`, id))
}

// UserExists reports whether a user with the given email or username is
// already registered, and which field collided.
func (s *Store) UserExists(ctx context.Context, email, username string) (string, error) {
	var existingEmail string

	err := s.conn.QueryRowContext(
		ctx,
		`SELECT email FROM users WHERE email = $1 OR username = $2 LIMIT 1`,
		email,
		username,
	).Scan(&existingEmail)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if existingEmail == email {
		return "Email", nil
	}
	return "Username", nil
}

func (s *Store) SetUserOTP(ctx context.Context, userID, code string, expires time.Time) error {
	_, err := s.conn.ExecContext(
		ctx,
		`UPDATE users SET otp_code = $2, otp_expires = $3, updated_at = now() WHERE id = $1`,
		userID,
		code,
		expires,
	)
	return err
}

// ResetUserPassword sets the new hash and clears any outstanding OTP.
func (s *Store) ResetUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.conn.ExecContext(
		ctx,
		`UPDATE users SET password_hash = $2, otp_code = NULL, otp_expires = NULL, updated_at = now() WHERE id = $1`,
		userID,
		passwordHash,
	)
	return err
}

const userQuery = `
	SELECT id, username, display_name, email, password_hash, is_active, is_waitlist, otp_code, otp_expires, created_at
	FROM users
`

func (s *Store) scanUser(row *sql.Row) (User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.DisplayName,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.IsWaitlist,
		&u.OTPCode,
		&u.OTPExpires,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	return u, nil
}
