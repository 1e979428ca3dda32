package user

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const selectUser = `SELECT id, email, full_name, profile_icon, password_hash, verified, created_at FROM users`

const uniqueViolation = pq.ErrorCode("23505")

// Accessor reads and writes accounts in the users table.
type Accessor struct {
	db *sql.DB
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}

// isUniqueViolation reports whether err is Postgres rejecting a duplicate email.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
