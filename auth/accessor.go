package auth

import "database/sql"

// Accessor stores refresh tokens, verification codes and password reset
// tokens.
type Accessor struct {
	db *sql.DB
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}
