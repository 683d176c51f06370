package domain

import "database/sql"

const (
	RoleUser      = "USER"
	RoleStaff     = "STAFF"
	RoleSuperuser = "SUPERUSER"
)

type User struct {
	ID    int64  `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"`
}

type Profile struct {
	UserID       int64          `db:"user_id"`
	Phone        string         `db:"phone"`
	Address      string         `db:"address"`
	IsBlocked    bool           `db:"is_blocked"`
	BlockedUntil sql.NullString `db:"blocked_until"`
	CreatedAt    string         `db:"created_at"`
}

// Member is an account row on the back office user list.
type Member struct {
	User
	IsBlocked    bool           `db:"is_blocked"`
	BlockedUntil sql.NullString `db:"blocked_until"`
}
