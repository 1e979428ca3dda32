package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Only the sha256 of refresh and reset tokens is stored.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (a *Accessor) CreateRefreshToken(ctx context.Context, userID uuid.UUID, now time.Time, ttl time.Duration) (string, error) {
	token := rand.Text()
	query := `INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := a.db.ExecContext(ctx, query, hashToken(token), userID, now.Add(ttl), now); err != nil {
		return "", fmt.Errorf("exec context: %w", err)
	}
	return token, nil
}

// ConsumeRefreshToken deletes the token and returns its owner. A token can
// be consumed once; ok is false when it is unknown or expired.
func (a *Accessor) ConsumeRefreshToken(ctx context.Context, token string, now time.Time) (uuid.UUID, bool, error) {
	query := `DELETE FROM refresh_tokens WHERE token_hash = $1 AND expires_at > $2 RETURNING user_id`
	return a.consume(ctx, query, hashToken(token), now)
}

func (a *Accessor) DeleteRefreshToken(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token_hash = $1`
	if _, err := a.db.ExecContext(ctx, query, hashToken(token)); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

// DeleteRefreshTokens signs the user out everywhere.
func (a *Accessor) DeleteRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1`
	if _, err := a.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

// CreateOTP replaces any outstanding verification code for the user.
func (a *Accessor) CreateOTP(ctx context.Context, userID uuid.UUID, now time.Time, ttl time.Duration) (string, error) {
	code, err := newOTP()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM otps WHERE user_id = $1`, userID); err != nil {
		return "", fmt.Errorf("exec context: %w", err)
	}
	query := `INSERT INTO otps (user_id, code, expires_at) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, query, userID, code, now.Add(ttl)); err != nil {
		return "", fmt.Errorf("exec context: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return code, nil
}

func (a *Accessor) ConsumeOTP(ctx context.Context, userID uuid.UUID, code string, now time.Time) (bool, error) {
	query := `DELETE FROM otps WHERE user_id = $1 AND code = $2 AND expires_at > $3`
	res, err := a.db.ExecContext(ctx, query, userID, code, now)
	if err != nil {
		return false, fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (a *Accessor) CreateResetToken(ctx context.Context, userID uuid.UUID, now time.Time, ttl time.Duration) (string, error) {
	token := rand.Text()
	query := `INSERT INTO password_reset_tokens (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`
	if _, err := a.db.ExecContext(ctx, query, hashToken(token), userID, now.Add(ttl)); err != nil {
		return "", fmt.Errorf("exec context: %w", err)
	}
	return token, nil
}

func (a *Accessor) ConsumeResetToken(ctx context.Context, token string, now time.Time) (uuid.UUID, bool, error) {
	query := `DELETE FROM password_reset_tokens WHERE token_hash = $1 AND expires_at > $2 RETURNING user_id`
	return a.consume(ctx, query, hashToken(token), now)
}

func (a *Accessor) consume(ctx context.Context, query, hash string, now time.Time) (uuid.UUID, bool, error) {
	var userID uuid.UUID
	if err := a.db.QueryRowContext(ctx, query, hash, now).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("scan: %w", err)
	}
	return userID, true, nil
}

var expiringTables = []string{"refresh_tokens", "otps", "password_reset_tokens"}

// PruneExpired deletes every refresh token, OTP and reset token that expired
// before now and returns how many rows went.
func (a *Accessor) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for _, table := range expiringTables {
		res, err := a.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE expires_at <= $1`, now)
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}
