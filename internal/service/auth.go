package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sagealpha/backend/email"
	"github.com/sagealpha/backend/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is not active")
	ErrOTPNotRequested    = errors.New("no password reset requested")
	ErrOTPExpired         = errors.New("otp has expired")
	ErrOTPInvalid         = errors.New("invalid otp")
)

const tokenTTL = 7 * 24 * time.Hour

type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService struct {
	store  *storage.Store
	sender email.Sender
	secret []byte
}

func NewAuthService(store *storage.Store, sender email.Sender, secret string) *AuthService {
	return &AuthService{
		store:  store,
		sender: sender,
		secret: []byte(secret),
	}
}

type AuthUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

func (s *AuthService) Register(ctx context.Context, username, displayName, emailAddr, password string) (AuthUser, error) {
	field, err := s.store.UserExists(ctx, emailAddr, username)
	if err != nil {
		return AuthUser{}, fmt.Errorf("failed to check existing users: %w", err)
	}
	if field != "" {
		return AuthUser{}, fmt.Errorf("%w: %s already registered", ErrUserExists, field)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, displayName, emailAddr, string(hash), false)
	if err != nil {
		return AuthUser{}, fmt.Errorf("failed to create user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)

	return AuthUser{ID: user.ID, Username: user.Username, DisplayName: user.DisplayName, Email: user.Email}, nil
}

func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (string, AuthUser, error) {
	user, err := s.store.UserByEmail(ctx, emailAddr)
	if errors.Is(err, storage.ErrNotFound) {
		return "", AuthUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", AuthUser{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", AuthUser{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", AuthUser{}, ErrAccountInactive
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", AuthUser{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, AuthUser{ID: user.ID, Username: user.Username, DisplayName: user.DisplayName, Email: user.Email}, nil
}

func (s *AuthService) User(ctx context.Context, userID string) (AuthUser, error) {
	user, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return AuthUser{}, ErrUserNotFound
	}
	if err != nil {
		return AuthUser{}, err
	}

	return AuthUser{ID: user.ID, Username: user.Username, DisplayName: user.DisplayName, Email: user.Email}, nil
}

// ForgotPassword generates a 6-digit OTP valid for 10 minutes and emails it
// to the user. An unknown email is reported to the caller so the API can
// respond without leaking whether the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.store.UserByEmail(ctx, emailAddr)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	if err := s.store.SetUserOTP(ctx, user.ID, code, time.Now().Add(10*time.Minute)); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if !s.sender.Configured() {
		slog.WarnContext(ctx, "email sender not configured, logging otp instead", "user_id", user.ID, "otp", code)
		return nil
	}

	msg := email.Message{
		To:      user.Email,
		Subject: "SageAlpha Password Reset Code",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your password reset code is:</p><h2>%s</h2><p>This code expires in 10 minutes. If you did not request a reset, you can ignore this email.</p>",
			user.DisplayName,
			code,
		),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	user, err := s.store.UserByEmail(ctx, emailAddr)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.OTPCode.Valid || !user.OTPExpires.Valid {
		return ErrOTPNotRequested
	}

	if time.Now().After(user.OTPExpires.Time) {
		return ErrOTPExpired
	}

	if user.OTPCode.String != code {
		return ErrOTPInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.ResetUserPassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.InfoContext(ctx, "password reset", "user_id", user.ID)

	return nil
}

func (s *AuthService) issueToken(user storage.User) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) ParseToken(tokenString string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	return claims, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
