package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/uninav/advisor-api/internal/models"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
)

type mockAuthUsers struct {
	userByEmail      *models.User
	userByID         *models.User
	findByEmailErr   error
	findByIDErr      error
	refreshTokens    map[string]*models.RefreshToken
	createRefreshErr error
	lastLoginUpdated bool
	revokedAll       bool
}

func (m *mockAuthUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	if m.userByEmail != nil {
		return m.userByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthUsers) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.userByEmail != nil && m.userByEmail.ID == id {
		m.userByEmail.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthUsers) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAll = true
	return nil
}

func (m *mockAuthUsers) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.createRefreshErr != nil {
		return m.createRefreshErr
	}
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthUsers) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthUsers) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

type mockAudit struct {
	events []*models.AuditEvent
	err    error
}

func (m *mockAudit) Create(ctx context.Context, event *models.AuditEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockAudit) actions() []string {
	out := make([]string, 0, len(m.events))
	for _, event := range m.events {
		out = append(out, event.Action)
	}
	return out
}

func newAuthService(repo *mockAuthUsers, audit *mockAudit) *AuthService {
	return NewAuthService(repo, audit, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthUsers{userByEmail: &models.User{ID: "u1", Email: "advisor@example.edu", PasswordHash: string(password), Active: true, Role: models.RoleAdvisor}}
	audit := &mockAudit{}
	svc := newAuthService(repo, audit)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "advisor@example.edu", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.RoleAdvisor, res.User.Role)
	assert.True(t, repo.lastLoginUpdated)
	assert.NotEmpty(t, repo.refreshTokens)
	assert.Contains(t, audit.actions(), models.AuditActionLogin)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthUsers{userByEmail: &models.User{ID: "u1", Email: "advisor@example.edu", PasswordHash: string(password), Active: true}}
	svc := newAuthService(repo, &mockAudit{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "advisor@example.edu", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthUsers{userByEmail: &models.User{ID: "u1", Email: "advisor@example.edu", PasswordHash: string(password), Active: false}}
	svc := newAuthService(repo, &mockAudit{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "advisor@example.edu", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginSingleSessionRevokesOldTokens(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthUsers{userByEmail: &models.User{ID: "u1", Email: "advisor@example.edu", PasswordHash: string(password), Active: true}}
	svc := NewAuthService(repo, &mockAudit{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour,
		SingleSession:      true,
	})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "advisor@example.edu", Password: "password"})
	require.NoError(t, err)
	assert.True(t, repo.revokedAll)
}

func TestAuthServiceRefreshTokenRotation(t *testing.T) {
	user := &models.User{ID: "u1", Email: "advisor@example.edu", Active: true, Role: models.RoleAdvisor}
	repo := &mockAuthUsers{userByID: user, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", UserID: user.ID, Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := newAuthService(repo, &mockAudit{})

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	user := &models.User{ID: "u1", Active: true}
	repo := &mockAuthUsers{userByID: user, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", UserID: user.ID, Token: "token", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	svc := newAuthService(repo, &mockAudit{})

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogout(t *testing.T) {
	repo := &mockAuthUsers{refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", UserID: "u1", Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	audit := &mockAudit{}
	svc := newAuthService(repo, audit)

	err := svc.Logout(context.Background(), "u1", models.LogoutRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.True(t, repo.refreshTokens["token"].Revoked)
	assert.Contains(t, audit.actions(), models.AuditActionLogout)
}

func TestAuthServiceLogoutForeignToken(t *testing.T) {
	repo := &mockAuthUsers{refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", UserID: "u1", Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := newAuthService(repo, &mockAudit{})

	err := svc.Logout(context.Background(), "someone-else", models.LogoutRequest{RefreshToken: "token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceChangePassword(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.DefaultCost)
	repo := &mockAuthUsers{userByEmail: &models.User{ID: "u1", PasswordHash: string(oldHash), Active: true}}
	audit := &mockAudit{}
	svc := newAuthService(repo, audit)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "oldpassword", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.NotEqual(t, string(oldHash), repo.userByEmail.PasswordHash)
	assert.True(t, repo.revokedAll)
	assert.Contains(t, audit.actions(), models.AuditActionPasswordChange)
}

func TestValidateToken(t *testing.T) {
	svc := newAuthService(&mockAuthUsers{}, &mockAudit{})
	user := &models.User{ID: "u1", Email: "advisor@example.edu", Role: models.RoleAdmin}
	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := newAuthService(&mockAuthUsers{}, &mockAudit{})
	token, _, err := svc.generateAccessToken(&models.User{ID: "u1"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	require.Error(t, err)
}
