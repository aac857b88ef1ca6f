package models

import "time"

// Admin roles. SuperAdmin is required for destructive operations
// like clearing the error ledger.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type AdminUser struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	TokenVersion int        `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
