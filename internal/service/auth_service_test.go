package service

import (
	"context"
	"testing"
	"time"

	"parking_dashboard/internal/domain"
	"parking_dashboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.Username]; ok {
		return nil, repository.ErrDuplicateEntry
	}
	created := *user
	created.ID = r.nextID
	r.nextID++
	r.users[created.Username] = &created
	copied := created
	return &copied, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newTestAuthService() *AuthService {
	return NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()

	user, err := svc.Register(context.Background(), domain.RegisterUserDTO{
		Username: "operator1",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "operator", user.Role)
	assert.Empty(t, user.Password)

	resp, err := svc.Login(context.Background(), domain.LoginUserDTO{
		Username: "operator1",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "operator1", resp.Username)

	_, claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims["role"])
	assert.Equal(t, "operator1", claims["username"])
}

func TestAuthService_RegisterDuplicateUsername(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), domain.RegisterUserDTO{Username: "operator1", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), domain.RegisterUserDTO{Username: "operator1", Password: "secret456"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), domain.RegisterUserDTO{Username: "operator1", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), domain.LoginUserDTO{Username: "operator1", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), domain.LoginUserDTO{Username: "nobody", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService()

	_, _, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthService_ValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestAuthService()
	other := NewAuthService(newFakeUserRepo(), "other-secret", time.Hour)

	_, err := svc.Register(context.Background(), domain.RegisterUserDTO{Username: "operator1", Password: "secret123"})
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), domain.LoginUserDTO{Username: "operator1", Password: "secret123"})
	require.NoError(t, err)

	_, _, err = other.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
