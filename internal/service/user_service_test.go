package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/uninav/advisor-api/internal/models"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
)

type mockUserRepo struct {
	users       []models.User
	byID        map[string]*models.User
	byEmail     map[string]*models.User
	created     []*models.User
	deactivated []string
	listErr     error
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.users, len(m.users), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.byID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.byEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	if user, ok := m.byID[id]; ok {
		user.Active = false
	}
	return nil
}

func newUserService(repo *mockUserRepo, audit *mockAudit) *UserService {
	return NewUserService(repo, audit, validator.New(), zap.NewNop())
}

func TestUserServiceCreate(t *testing.T) {
	repo := &mockUserRepo{}
	audit := &mockAudit{}
	svc := newUserService(repo, audit)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "New.Advisor@Example.edu",
		FullName: "Morgan Park",
		Role:     models.RoleAdvisor,
		Active:   true,
		Password: "supersecret",
	}, "admin-1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "new.advisor@example.edu", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret")))
	require.Len(t, repo.created, 1)
	assert.Contains(t, audit.actions(), models.AuditActionUserCreate)
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{byEmail: map[string]*models.User{
		"taken@example.edu": {ID: "u1", Email: "taken@example.edu"},
	}}
	svc := newUserService(repo, &mockAudit{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "taken@example.edu",
		FullName: "Morgan Park",
		Role:     models.RoleAdvisor,
		Password: "supersecret",
	}, "admin-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceCreateShortPassword(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, &mockAudit{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "new@example.edu",
		FullName: "Morgan Park",
		Role:     models.RoleAdvisor,
		Password: "short",
	}, "admin-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeactivate(t *testing.T) {
	repo := &mockUserRepo{byID: map[string]*models.User{
		"u1": {ID: "u1", Email: "advisor@example.edu", Active: true},
	}}
	audit := &mockAudit{}
	svc := newUserService(repo, audit)

	err := svc.Deactivate(context.Background(), "u1", "admin-1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, repo.deactivated)
	assert.Contains(t, audit.actions(), models.AuditActionUserDeactivate)
}

func TestUserServiceDeactivateAlreadyInactive(t *testing.T) {
	repo := &mockUserRepo{byID: map[string]*models.User{
		"u1": {ID: "u1", Email: "advisor@example.edu", Active: false},
	}}
	svc := newUserService(repo, &mockAudit{})

	err := svc.Deactivate(context.Background(), "u1", "admin-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deactivated)
}

func TestUserServiceList(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{
		{ID: "u1", Email: "a@example.edu"},
		{ID: "u2", Email: "b@example.edu"},
	}}
	svc := newUserService(repo, &mockAudit{})

	users, pagination, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestUserServiceGetNotFound(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, &mockAudit{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
