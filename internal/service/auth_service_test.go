package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/attendify/attendify-api/internal/models"
	appErrors "github.com/attendify/attendify-api/pkg/errors"
)

type fakeUserRepo struct {
	user      *models.User
	lastLogin time.Time
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, _ string, ts time.Time) error {
	f.lastLogin = ts
	return nil
}

func newAuthFixture(t *testing.T, active bool) (*AuthService, *fakeUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &fakeUserRepo{user: &models.User{
		ID:           "u-1",
		Email:        "teacher@example.com",
		FullName:     "Grace Hopper",
		Role:         "instructor",
		PasswordHash: string(hash),
		Active:       active,
	}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "attendify",
	})
	return svc, repo
}

func TestAuthService_LoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "s3cret",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "u-1", resp.User.ID)
	assert.False(t, repo.lastLogin.IsZero())

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "attendify", claims.Issuer)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "wrong",
	})

	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret",
	})

	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthService_LoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "s3cret",
	})

	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthService_ValidateTokenBadSignature(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	other := NewAuthService(&fakeUserRepo{}, nil, nil, AuthConfig{Secret: "other-secret", Expiration: time.Hour})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}
