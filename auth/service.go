package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"smartcalendar/metrics"
	"smartcalendar/user"
	"strings"
	"time"

	"github.com/google/uuid"
)

type UserStore interface {
	CreateUser(ctx context.Context, u user.User, now time.Time) (*user.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	SetVerified(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type TokenStore interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, now time.Time, ttl time.Duration) (string, error)
	ConsumeRefreshToken(ctx context.Context, token string, now time.Time) (uuid.UUID, bool, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokens(ctx context.Context, userID uuid.UUID) error
	CreateOTP(ctx context.Context, userID uuid.UUID, now time.Time, ttl time.Duration) (string, error)
	ConsumeOTP(ctx context.Context, userID uuid.UUID, code string, now time.Time) (bool, error)
	CreateResetToken(ctx context.Context, userID uuid.UUID, now time.Time, ttl time.Duration) (string, error)
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (uuid.UUID, bool, error)
}

// Mailer is implemented by *email.Client.
type Mailer interface {
	SendVerification(ctx context.Context, to, verificationURL, otp string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

type Options struct {
	Config     Config
	RefreshTTL time.Duration
	OTPTTL     time.Duration
	ResetTTL   time.Duration
	// PublicURL is the frontend origin used to build links in emails.
	PublicURL string
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type Service struct {
	users  UserStore
	tokens TokenStore
	mail   Mailer
	opts   Options
}

func NewService(users UserStore, tokens TokenStore, mail Mailer, opts Options) *Service {
	return &Service{users: users, tokens: tokens, mail: mail, opts: opts}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

// Register creates an unverified account and emails a verification code.
// A failed email does not undo the registration; the code can be resent.
func (s *Service) Register(ctx context.Context, req Registration, now time.Time) (*user.User, error) {
	if err := user.ValidatePassword(req.Password); err != nil {
		return nil, invalid(err)
	}
	u := user.User{
		Email:    user.NormalizeEmail(req.Email),
		FullName: strings.TrimSpace(req.FullName),
	}
	if err := u.Validate(); err != nil {
		return nil, invalid(err)
	}

	hash, err := user.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	created, err := s.users.CreateUser(ctx, u, now)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendVerification(ctx, created, now); err != nil {
		slog.WarnContext(ctx, "registered user without verification email", "user_id", created.ID, "error", err)
	}
	return created, nil
}

func (s *Service) Verify(ctx context.Context, email, code string, now time.Time) error {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return ErrInvalidToken
	}
	if u.Verified {
		return nil
	}

	ok, err := s.tokens.ConsumeOTP(ctx, u.ID, strings.TrimSpace(code), now)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		return ErrInvalidToken
	}
	if err := s.users.SetVerified(ctx, u.ID); err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	return nil
}

// ResendVerification is a no-op for unknown or already verified addresses.
func (s *Service) ResendVerification(ctx context.Context, email string, now time.Time) error {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u == nil || u.Verified {
		return nil
	}
	return s.sendVerification(ctx, u, now)
}

func (s *Service) sendVerification(ctx context.Context, u *user.User, now time.Time) error {
	code, err := s.tokens.CreateOTP(ctx, u.ID, now, s.opts.OTPTTL)
	if err != nil {
		return fmt.Errorf("create otp: %w", err)
	}
	link := s.opts.PublicURL + "/verify?email=" + url.QueryEscape(u.Email)
	if err := s.mail.SendVerification(ctx, u.Email, link, code); err != nil {
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

func (s *Service) Login(ctx context.Context, email, password string, now time.Time) (*Tokens, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil || !u.CheckPassword(password) {
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}
	if !u.Verified {
		metrics.LoginAttempts.WithLabelValues("unverified").Inc()
		return nil, ErrNotVerified
	}

	tokens, err := s.issue(ctx, u, now)
	if err != nil {
		return nil, err
	}
	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	return tokens, nil
}

// Refresh rotates the refresh token: the presented one stops working.
func (s *Service) Refresh(ctx context.Context, refreshToken string, now time.Time) (*Tokens, error) {
	if refreshToken == "" {
		return nil, ErrMissingToken
	}
	userID, ok, err := s.tokens.ConsumeRefreshToken(ctx, refreshToken, now)
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if !ok {
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidToken
	}
	return s.issue(ctx, u, now)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrMissingToken
	}
	return s.tokens.DeleteRefreshToken(ctx, refreshToken)
}

func (s *Service) issue(ctx context.Context, u *user.User, now time.Time) (*Tokens, error) {
	access, _, err := Issue(s.opts.Config, u.ID, u.Email, now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateRefreshToken(ctx, u.ID, now, s.opts.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}
	return &Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.opts.Config.AccessTTL.Seconds()),
	}, nil
}

// ForgotPassword never reports whether the address is registered.
func (s *Service) ForgotPassword(ctx context.Context, email string, now time.Time) error {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil
	}

	token, err := s.tokens.CreateResetToken(ctx, u.ID, now, s.opts.ResetTTL)
	if err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	link := s.opts.PublicURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.mail.SendPasswordReset(ctx, u.Email, link); err != nil {
		slog.WarnContext(ctx, "password reset email not delivered", "user_id", u.ID, "error", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string, now time.Time) error {
	if err := user.ValidatePassword(newPassword); err != nil {
		return invalid(err)
	}
	userID, ok, err := s.tokens.ConsumeResetToken(ctx, token, now)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if !ok {
		return ErrInvalidToken
	}
	return s.setPassword(ctx, userID, newPassword)
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if _, err := s.authenticate(ctx, userID, oldPassword); err != nil {
		return err
	}
	if err := user.ValidatePassword(newPassword); err != nil {
		return invalid(err)
	}
	return s.setPassword(ctx, userID, newPassword)
}

// setPassword also revokes every refresh token of the user.
func (s *Service) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hash, err := user.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.tokens.DeleteRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}
	return nil
}

// ChangeEmail moves the account to a new address, which must be verified
// again before the next login.
func (s *Service) ChangeEmail(ctx context.Context, userID uuid.UUID, newEmail, password string, now time.Time) error {
	u, err := s.authenticate(ctx, userID, password)
	if err != nil {
		return err
	}
	newEmail = user.NormalizeEmail(newEmail)
	if err := user.ValidateEmail(newEmail); err != nil {
		return invalid(err)
	}
	if newEmail == u.Email {
		return nil
	}

	if err := s.users.UpdateEmail(ctx, userID, newEmail); err != nil {
		return fmt.Errorf("update email: %w", err)
	}
	u.Email = newEmail
	u.Verified = false

	if err := s.sendVerification(ctx, u, now); err != nil {
		slog.WarnContext(ctx, "changed email without verification email", "user_id", u.ID, "error", err)
	}
	return nil
}

func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	if _, err := s.authenticate(ctx, userID, password); err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	slog.InfoContext(ctx, "deleted account", "user_id", userID)
	return nil
}

func (s *Service) authenticate(ctx context.Context, userID uuid.UUID, password string) (*user.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidToken
	}
	if !u.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
