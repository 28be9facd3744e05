package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/mrivera-dev/stockroom-backend/pkg/auth"
	"github.com/mrivera-dev/stockroom-backend/pkg/auth/session"
	"github.com/mrivera-dev/stockroom-backend/pkg/config"
	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/mrivera-dev/stockroom-backend/pkg/errors"
	"github.com/mrivera-dev/stockroom-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret-test-secret-test-secret",
	Issuer:            "stockroom-test",
	ExpirationMinutes: 30,
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type stubUserRepo struct {
	users map[string]*models.User
}

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if user, ok := s.users[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionManager struct {
	generated map[string]string // accessID -> refresh token
	revoked   []string
	rotateErr error
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{generated: map[string]string{}}
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	token := fmt.Sprintf("refresh-%s", accessID)
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if s.generated[oldAccessID] != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	newAccessID := session.NewAccessID()
	token := fmt.Sprintf("refresh-%s", newAccessID)
	s.generated[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.generated, accessID)
	return nil
}

func newTestService(t *testing.T, sessions *stubSessionManager, seedUsers ...*models.User) Service {
	t.Helper()
	repo := &stubUserRepo{users: map[string]*models.User{}}
	for _, u := range seedUsers {
		repo.users[u.Username] = u
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        "auth@example.com",
		PasswordHash: hash,
	}
}

func TestLogin(t *testing.T) {
	sessions := newStubSessionManager()
	user := seedUser(t, "marisol", "correct horse battery")
	svc := newTestService(t, sessions, user)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Username: "marisol",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "marisol", claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, resp.RefreshToken, sessions.generated[claims.ID])
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, newStubSessionManager(), seedUser(t, "marisol", "right password"))

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: "marisol",
		Password: "wrong password",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	assert.Equal(t, "invalid credentials", typed.Message())
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestService(t, newStubSessionManager())

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: "nobody",
		Password: "whatever",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	// same message as a bad password so callers cannot probe usernames
	assert.Equal(t, "invalid credentials", typed.Message())
}

func TestLoginMissingFields(t *testing.T) {
	svc := newTestService(t, newStubSessionManager())

	_, err := svc.Login(context.Background(), LoginRequest{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Fields(), "username")
	assert.Contains(t, typed.Fields(), "password")
}

func TestRefreshRotatesSession(t *testing.T) {
	sessions := newStubSessionManager()
	user := seedUser(t, "marisol", "correct horse battery")
	svc := newTestService(t, sessions, user)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Username: "marisol",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, resp.RefreshToken, pair.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// the consumed refresh token is dead
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRefreshBadAccessToken(t *testing.T) {
	svc := newTestService(t, newStubSessionManager())

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newStubSessionManager()
	user := seedUser(t, "marisol", "correct horse battery")
	svc := newTestService(t, sessions, user)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Username: "marisol",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.ID))
	assert.Contains(t, sessions.revoked, claims.ID)
}
