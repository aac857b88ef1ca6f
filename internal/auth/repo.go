package auth

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"moviehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const userColumns = `id, username, email, password_hash, role, is_active, token_version, created_at, last_login`

func scanUser(row interface{ Scan(...any) error }) (*models.AdminUser, error) {
	var (
		u         models.AdminUser
		isActive  int
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&isActive, &u.TokenVersion, &u.CreatedAt, &lastLogin,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan admin user: %w", err)
	}
	u.IsActive = isActive == 1
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM admin_users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.AdminUser, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM admin_users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *Repo) CreateUser(ctx context.Context, u models.AdminUser) error {
	isActive := 0
	if u.IsActive {
		isActive = 1
	}
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO admin_users (id, username, email, password_hash, role, is_active, token_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Role, isActive, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	return nil
}

func (r *Repo) UpdateLastLogin(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx,
		`UPDATE admin_users SET last_login = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *Repo) GetTokenVersion(ctx context.Context, id string) (int, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT token_version FROM admin_users WHERE id = ?`, id)
	var v int
	if err := row.Scan(&v); err != nil {
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return v, nil
}

func (r *Repo) BumpTokenVersion(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx,
		`UPDATE admin_users SET token_version = token_version + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	return nil
}

func (r *Repo) UpdatePasswordAndBumpTokenVersion(ctx context.Context, id, hash string) error {
	if _, err := r.DB.ExecContext(ctx, `
		UPDATE admin_users
		SET password_hash = ?, token_version = token_version + 1
		WHERE id = ?
	`, hash, id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// EnsureDefaultAdmin creates admin/admin123 when the table is empty so
// a fresh deployment is reachable. Change the password immediately.
func (r *Repo) EnsureDefaultAdmin(ctx context.Context) error {
	row := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`)
	var count int
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("count admin users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}

	if err := r.CreateUser(ctx, models.AdminUser{
		ID:           uuid.NewString(),
		Username:     "admin",
		Email:        "admin@moviehub.app",
		PasswordHash: string(hash),
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	}); err != nil {
		return err
	}

	log.Println("[auth] created default admin user: admin / admin123")
	return nil
}
