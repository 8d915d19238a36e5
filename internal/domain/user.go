package domain

import (
	"context"
	"database/sql"
	"time"
)

// OrgRole values stored on a user and embedded in session claims.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is an account belonging to exactly one organization.
type User struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"org_id"`
	OrgRole      string    `json:"org_role"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Org is the tenant a user belongs to.
type Org struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRepository defines the interface for user data access. Methods that
// take part in multi-step state transitions accept the owning transaction.
type UserRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// UpdatePasswordHash replaces the stored credential for email and
	// reports the number of rows affected. Zero rows means the account
	// vanished between token issuance and consumption.
	UpdatePasswordHash(ctx context.Context, tx *sql.Tx, email, hash string) (int64, error)
}

// OrgRepository defines the interface for organization data access.
type OrgRepository interface {
	Create(ctx context.Context, tx *sql.Tx, org *Org) error
}

// TxRunner executes a function inside a single database transaction.
// Any error returned by fn rolls back every step taken within it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sql.Tx) error) error
}
