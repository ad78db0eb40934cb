package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

type fakeUserRepo struct {
	repository.AdminUserRepository
	users map[string]*domain.AdminUser
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, db repository.DBTX, username string) (*domain.AdminUser, error) {
	return f.users[username], nil
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*domain.AdminUser{
		"alice": {ID: 1, Username: "alice", PasswordHash: hash, Active: true},
		"bob":   {ID: 2, Username: "bob", PasswordHash: hash, Active: false},
	}}
	svc := NewAuthService(nil, repo)

	t.Run("success", func(t *testing.T) {
		user, err := svc.Login(context.Background(), "alice", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "alice", "wrong")
		require.Error(t, err)
		assert.Equal(t, "login failed", err.(*domain.AppError).Message)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "mallory", "correct horse")
		require.Error(t, err)
		assert.Equal(t, "login failed", err.(*domain.AppError).Message)
	})

	t.Run("deactivated user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "bob", "correct horse")
		require.Error(t, err)
		assert.Equal(t, "login failed", err.(*domain.AppError).Message)
	})

	t.Run("failure messages are indistinguishable", func(t *testing.T) {
		_, errUnknown := svc.Login(context.Background(), "mallory", "x")
		_, errWrong := svc.Login(context.Background(), "alice", "x")
		_, errInactive := svc.Login(context.Background(), "bob", "x")
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
		assert.Equal(t, errWrong.Error(), errInactive.Error())
	})
}
