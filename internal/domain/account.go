package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminAccount is a catalog administrator. PasswordHash is a bcrypt hash and
// is empty for accounts provisioned through Google sign-in.
type AdminAccount struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
