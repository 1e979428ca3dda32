package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (a *Accessor) CreateUser(ctx context.Context, user User, now time.Time) (*User, error) {
	user.Email = NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return nil, err
	}

	user.ID = uuid.New()
	user.CreatedAt = now

	query := `INSERT INTO users (id, email, full_name, profile_icon, password_hash, verified, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := a.db.ExecContext(ctx, query, user.ID, user.Email, user.FullName, user.ProfileIcon, user.PasswordHash, user.Verified, now); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &user, nil
}

func (a *Accessor) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.get(ctx, selectUser+` WHERE id = $1`, id)
}

func (a *Accessor) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return a.get(ctx, selectUser+` WHERE email = $1`, NormalizeEmail(email))
}

func (a *Accessor) get(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	row := a.db.QueryRowContext(ctx, query, arg)
	if err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.ProfileIcon, &user.PasswordHash, &user.Verified, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &user, nil
}

func (a *Accessor) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, profileIcon string) error {
	query := `UPDATE users SET full_name = $1, profile_icon = $2 WHERE id = $3`
	if _, err := a.db.ExecContext(ctx, query, fullName, profileIcon, id); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

func (a *Accessor) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	if _, err := a.db.ExecContext(ctx, query, passwordHash, id); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

// UpdateEmail changes the address and marks it unverified.
func (a *Accessor) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	query := `UPDATE users SET email = $1, verified = FALSE WHERE id = $2`
	if _, err := a.db.ExecContext(ctx, query, NormalizeEmail(email), id); err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

func (a *Accessor) SetVerified(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET verified = TRUE WHERE id = $1`
	if _, err := a.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

// DeleteUser removes the user; owned rows go with it through ON DELETE CASCADE.
func (a *Accessor) DeleteUser(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`
	if _, err := a.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}
