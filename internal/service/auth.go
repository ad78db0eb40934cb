package service

import (
	"context"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

// AuthService authenticates console users against admin_users.
type AuthService struct {
	db    repository.DBTX
	users repository.AdminUserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(db repository.DBTX, users repository.AdminUserRepository) *AuthService {
	return &AuthService{db: db, users: users}
}

// Login verifies a username/password pair. Unknown users, wrong passwords
// and deactivated accounts all fail with the same generic error, and all
// three paths cost one bcrypt comparison, so the response reveals nothing
// about which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.AdminUser, error) {
	user, err := s.users.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil || !user.Active {
		auth.BurnVerification(password)
		return nil, domain.ErrUnauthorized("login failed")
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, domain.ErrUnauthorized("login failed")
	}
	return user, nil
}
