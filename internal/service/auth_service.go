package service

import (
	"context"
	"fmt"

	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"
	"github.com/craigsandeman1/fitmom-payments/pkg/apperror"

	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService for the admin area.
type AuthServiceImpl struct {
	userRepo   ports.UserRepository
	roleLookup ports.RoleLookup
	hashSvc    ports.HashService
	tokenSvc   ports.TokenService
	log        zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	roleLookup ports.RoleLookup,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		roleLookup: roleLookup,
		hashSvc:    hashSvc,
		tokenSvc:   tokenSvc,
		log:        log,
	}
}

// Login authenticates an admin user by email and password. Unknown user,
// wrong password and missing admin role all produce the same client-facing
// error to avoid account enumeration.
func (s *AuthServiceImpl) Login(ctx context.Context, email string, password string) (*ports.LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("fetch user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("password hash verification errored")
		return nil, apperror.ErrInvalidCredentials()
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials()
	}

	isAdmin, err := s.roleLookup.IsAdmin(ctx, user.ID)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("role lookup: %w", err))
	}
	if !isAdmin {
		s.log.Warn().Str("email", email).Msg("login attempt by non-admin user")
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(user.ID, user.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().Str("email", email).Msg("admin login")

	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}
