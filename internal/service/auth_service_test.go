package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fieldlab-api/internal/models"
)

func testUser(t *testing.T, id, username, password string, role models.UserRole, approved, active bool) models.User {
	t.Helper()
	hash, err := hashPassword(password)
	require.NoError(t, err)
	return models.User{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		FirstName:    "Test",
		LastName:     "User",
		IsApproved:   approved,
		IsActive:     active,
	}
}

func newTestAuthService(repo *memUserRepo, cache *CacheService) *AuthService {
	return NewAuthService(repo, cache, NewMetricsService(), nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "fieldlab-test",
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMemUserRepo(testUser(t, "u1", "labtech", "secret1", models.RoleLabTech, true, true))
	svc := newTestAuthService(repo, nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "labtech", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleLabTech, resp.User.Role)
	assert.Equal(t, "/lab_tech", resp.User.Namespace)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleLabTech, claims.Role)
	assert.Contains(t, repo.lastLogin, "u1")
}

func TestAuthServiceLoginInvalidCredentials(t *testing.T) {
	repo := newMemUserRepo(testUser(t, "u1", "labtech", "secret1", models.RoleLabTech, true, true))
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "secret1"})
	requireCode(t, err, "INVALID_CREDENTIALS")

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "labtech", Password: "wrong"})
	requireCode(t, err, "INVALID_CREDENTIALS")

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "labtech"})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestAuthServiceLoginApprovalGate(t *testing.T) {
	repo := newMemUserRepo(
		testUser(t, "p1", "pending", "secret1", models.RoleFieldCollector, false, false),
		testUser(t, "i1", "inactive", "secret1", models.RoleFieldCollector, true, false),
	)
	svc := newTestAuthService(repo, nil)

	appErr := requireCode(t, loginErr(svc, "pending", "secret1"), "PENDING_APPROVAL")
	assert.Equal(t, 401, appErr.Status)

	appErr = requireCode(t, loginErr(svc, "inactive", "secret1"), "ACCOUNT_INACTIVE")
	assert.Equal(t, 401, appErr.Status)

	// A bad password never reveals the approval state.
	requireCode(t, loginErr(svc, "pending", "wrong"), "INVALID_CREDENTIALS")
	assert.Empty(t, repo.lastLogin)
}

func loginErr(svc *AuthService, username, password string) error {
	_, err := svc.Login(context.Background(), models.LoginRequest{Username: username, Password: password})
	return err
}

func TestAuthServiceValidateTokenRejectsForeignSignature(t *testing.T) {
	repo := newMemUserRepo(testUser(t, "u1", "admin", "secret1", models.RoleAdmin, true, true))
	issuer := NewAuthService(repo, nil, nil, nil, nil, AuthConfig{AccessTokenSecret: "other", AccessTokenExpiry: time.Hour})
	resp, err := issuer.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret1"})
	require.NoError(t, err)

	_, err = newTestAuthService(repo, nil).ValidateToken(resp.AccessToken)
	requireCode(t, err, "UNAUTHORIZED")

	_, err = newTestAuthService(repo, nil).ValidateToken("not-a-token")
	requireCode(t, err, "UNAUTHORIZED")
}

func TestAuthServiceVerifyAccount(t *testing.T) {
	backend := newMemCache()
	cache := newTestCache(backend)
	repo := newMemUserRepo(testUser(t, "u1", "field", "secret1", models.RoleFieldCollector, true, true))
	svc := newTestAuthService(repo, cache)
	claims := &models.JWTClaims{UserID: "u1", Username: "field", Role: models.RoleFieldCollector}
	ctx := context.Background()

	require.NoError(t, svc.VerifyAccount(ctx, claims))
	assert.True(t, backend.has(accountStatusKey("u1")))

	// Cached status is served until an admin action evicts it.
	no := false
	require.NoError(t, repo.UpdateStatus(ctx, "u1", models.UserStatusUpdate{IsActive: &no}, time.Now()))
	require.NoError(t, svc.VerifyAccount(ctx, claims))

	cache.Delete(ctx, accountStatusKey("u1"))
	requireCode(t, svc.VerifyAccount(ctx, claims), "ACCOUNT_INACTIVE")

	requireCode(t, svc.VerifyAccount(ctx, &models.JWTClaims{UserID: "ghost", Role: models.RoleAdmin}), "UNAUTHORIZED")
}

func TestAuthServiceVerifyAccountRoleChanged(t *testing.T) {
	repo := newMemUserRepo(testUser(t, "u1", "field", "secret1", models.RoleFieldCollector, true, true))
	svc := newTestAuthService(repo, nil)

	err := svc.VerifyAccount(context.Background(), &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})
	requireCode(t, err, "UNAUTHORIZED")
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := newMemUserRepo(testUser(t, "u1", "field", "secret1", models.RoleFieldCollector, true, true))
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "u1", models.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newsecret"})
	requireCode(t, err, "VALIDATION_ERROR")

	err = svc.ChangePassword(ctx, "u1", models.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "short"})
	requireCode(t, err, "VALIDATION_ERROR")

	require.NoError(t, svc.ChangePassword(ctx, "u1", models.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "newsecret"}))
	require.NoError(t, loginErr(svc, "field", "newsecret"))
	requireCode(t, loginErr(svc, "field", "secret1"), "INVALID_CREDENTIALS")

	err = svc.ChangePassword(ctx, "ghost", models.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "newsecret"})
	requireCode(t, err, "NOT_FOUND")
}

func TestAuthServiceChangePasswordTooLong(t *testing.T) {
	repo := newMemUserRepo(testUser(t, "u1", "field", "secret1", models.RoleFieldCollector, true, true))
	svc := newTestAuthService(repo, nil)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		CurrentPassword: "secret1",
		NewPassword:     strings.Repeat("a", 73),
	})
	requireCode(t, err, "VALIDATION_ERROR")
	require.NoError(t, loginErr(svc, "field", "secret1"))
}

func TestAuthServiceAdminStatus(t *testing.T) {
	repo := newMemUserRepo(testUser(t, "a1", "admin", "secret1", models.RoleAdmin, true, false))
	svc := newTestAuthService(repo, nil)

	status, err := svc.AdminStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, status.HasApprovedAdmins)

	yes := true
	require.NoError(t, repo.UpdateStatus(context.Background(), "a1", models.UserStatusUpdate{IsActive: &yes}, time.Now()))
	status, err = svc.AdminStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.HasApprovedAdmins)
	assert.Equal(t, int64(1), status.ApprovedAdminCount)
}
