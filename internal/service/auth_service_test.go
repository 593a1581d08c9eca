package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/techfront-institute/academy-api/internal/models"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail   *models.User
	created       []*models.User
	refreshTokens map[string]*models.RefreshToken
	lastLoginSet  bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.userByEmail != nil && m.userByEmail.ID == id {
		return m.userByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginSet = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := m.refreshTokens[token]; ok {
		return rt, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, rt := range m.refreshTokens {
		if rt.ID == id {
			rt.Revoked = true
			rt.RevokedAt = &revokedAt
		}
	}
	return nil
}

func authConfigFixture() AuthConfig {
	return AuthConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "academy-api-test",
	}
}

func userFixture(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "usr-1",
		Email:        "cashier@techfront.edu",
		PasswordHash: string(hash),
		FullName:     "Fee Cashier",
		Role:         models.RoleCashier,
		Active:       true,
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: userFixture(t, "secret123")}
	svc := NewAuthService(repo, nil, nil, authConfigFixture())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "cashier@techfront.edu", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, repo.lastLoginSet)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, models.RoleCashier, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: userFixture(t, "secret123")}
	svc := NewAuthService(repo, nil, nil, authConfigFixture())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "cashier@techfront.edu", Password: "wrong",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	user := userFixture(t, "secret123")
	user.Active = false
	svc := NewAuthService(&mockAuthRepo{userByEmail: user}, nil, nil, authConfigFixture())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "cashier@techfront.edu", Password: "secret123",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: userFixture(t, "secret123")}
	svc := NewAuthService(repo, nil, nil, authConfigFixture())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "cashier@techfront.edu", Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the used token is revoked and cannot be replayed
	_, err = svc.Refresh(context.Background(), RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestCreateAccountRejectsWeakPassword(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, authConfigFixture())

	_, err := svc.CreateAccount(context.Background(), CreateAccountRequest{
		Email: "new@techfront.edu", Password: "abc", FullName: "New User", Role: models.RoleTeacher,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrWeakPassword.Code, appErr.Code)
}

func TestCreateAccountRejectsTakenEmail(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: userFixture(t, "secret123")}
	svc := NewAuthService(repo, nil, nil, authConfigFixture())

	_, err := svc.CreateAccount(context.Background(), CreateAccountRequest{
		Email: "cashier@techfront.edu", Password: "secret123", FullName: "Dup", Role: models.RoleCashier,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrEmailTaken.Code, appErr.Code)
}

func TestCreateAccountHashesPassword(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, nil, nil, authConfigFixture())

	user, err := svc.CreateAccount(context.Background(), CreateAccountRequest{
		Email: "New@TechFront.edu", Password: "secret123", FullName: "New User", Role: models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@techfront.edu", user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	require.Len(t, repo.created, 1)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}
