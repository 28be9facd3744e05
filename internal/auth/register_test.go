package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgAuth "github.com/mrivera-dev/stockroom-backend/pkg/auth"
	"github.com/mrivera-dev/stockroom-backend/pkg/db"
	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/mrivera-dev/stockroom-backend/pkg/errors"
	"github.com/mrivera-dev/stockroom-backend/pkg/security"
)

func setupRegisterTestService(t *testing.T) RegisterService {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(users).Error)

	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             db.NewWithConn(conn),
		SessionManager: newStubSessionManager(),
		PasswordConfig: testPasswordConfig,
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)
	return svc
}

func TestRegister(t *testing.T) {
	svc := setupRegisterTestService(t)
	username := fmt.Sprintf("newuser_%s", uuid.NewString())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    "  New@Example.COM ",
		Password: "long enough password",
	})
	require.NoError(t, err)
	assert.Equal(t, username, resp.User.Username)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// signed straight in with a valid token
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	svc := setupRegisterTestService(t)
	username := fmt.Sprintf("hashuser_%s", uuid.NewString())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    "hash@example.com",
		Password: "long enough password",
	})
	require.NoError(t, err)

	var user models.User
	require.NoError(t, conn.First(&user, "id = ?", resp.User.ID).Error)
	assert.NotEqual(t, "long enough password", user.PasswordHash)

	ok, err := security.VerifyPassword("long enough password", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := setupRegisterTestService(t)
	username := fmt.Sprintf("dupuser_%s", uuid.NewString())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    "first@example.com",
		Password: "long enough password",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    "second@example.com",
		Password: "long enough password",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Fields(), "username")
}

func TestRegisterShortPassword(t *testing.T) {
	svc := setupRegisterTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "shorty",
		Email:    "short@example.com",
		Password: "1234567",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Fields(), "password")
}

func TestRegisterMissingFields(t *testing.T) {
	svc := setupRegisterTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Password: "long enough password"})
	require.Error(t, err)
	assert.Contains(t, pkgerrors.As(err).Fields(), "username")

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "someone", Password: "long enough password"})
	require.Error(t, err)
	assert.Contains(t, pkgerrors.As(err).Fields(), "email")
}
