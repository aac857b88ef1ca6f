package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"moviehub/pkg/database"
	"moviehub/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func testTokenService() TokenService {
	return TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "moviehub-test",
		Duration: time.Hour,
	}
}

func TestEnsureDefaultAdmin(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.EnsureDefaultAdmin(ctx))

	u, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, models.RoleSuperAdmin, u.Role)
	require.True(t, u.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("admin123")))

	// idempotent: a second call must not add another user
	require.NoError(t, repo.EnsureDefaultAdmin(ctx))
	var count int
	require.NoError(t, repo.DB.QueryRow(`SELECT COUNT(*) FROM admin_users`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestTokenRoundTrip(t *testing.T) {
	ts := testTokenService()

	u := &models.AdminUser{
		ID:           "u1",
		Username:     "admin",
		Role:         models.RoleAdmin,
		TokenVersion: 3,
	}

	token, exp, err := ts.Sign(u)
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "admin", claims.Username)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, 3, claims.TokenVersion)

	// wrong secret fails
	other := TokenService{Secret: []byte("other"), Issuer: ts.Issuer, Duration: ts.Duration}
	_, err = other.Parse(token)
	require.Error(t, err)
}

func TestBumpTokenVersionInvalidatesOldClaims(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.EnsureDefaultAdmin(ctx))
	u, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, 1, u.TokenVersion)

	require.NoError(t, repo.BumpTokenVersion(ctx, u.ID))
	v, err := repo.GetTokenVersion(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	// a token minted before the bump no longer matches
	require.NotEqual(t, u.TokenVersion, v)
}

func TestUpdatePasswordBumpsVersion(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.EnsureDefaultAdmin(ctx))
	u, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("new-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePasswordAndBumpTokenVersion(ctx, u.ID, string(hash)))

	fresh, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.TokenVersion+1, fresh.TokenVersion)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(fresh.PasswordHash), []byte("new-password")))
}
