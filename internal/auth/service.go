package auth

import (
	"context"
	"errors"
	"fmt"

	"catalog-api/internal/observability"
)

var (
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidCredentials covers both "no such user" and "wrong password".
	// The two must stay indistinguishable in kind, message and status so the
	// login endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	store  Store
	tokens *TokenManager
	logger *observability.Logger

	// dummyHash is compared against when a login names an unknown email, so
	// the missing-user path costs a bcrypt verification like the real one.
	dummyHash string
}

func NewService(store Store, tokens *TokenManager, logger *observability.Logger) (*Service, error) {
	dummyHash, err := HashPassword("catalog-api-dummy-credential")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &Service{
		store:     store,
		tokens:    tokens,
		logger:    logger,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a credential record for email and returns a signed token
// for the new user. The lookup is a best-effort pre-check; the store's
// unique index settles concurrent registrations for the same email.
func (s *Service) Register(ctx context.Context, email, password string) (TokenResponse, error) {
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		s.logger.Warn("register_email_in_use", map[string]any{"email": email})
		return TokenResponse{}, ErrEmailInUse
	}
	if !errors.Is(err, ErrUserNotFound) {
		return TokenResponse{}, err
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Insert(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.logger.Warn("register_email_in_use", map[string]any{"email": email})
			return TokenResponse{}, ErrEmailInUse
		}
		return TokenResponse{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user_registered", map[string]any{"email": email})
	return TokenResponse{Token: token}, nil
}

// Login verifies email+password and returns a signed token. Nothing is
// cached between calls; the record is re-fetched every time.
func (s *Service) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a compare anyway so absent and present users take the
			// same time to reject.
			CheckPassword(password, s.dummyHash)
			s.logger.Warn("login_failed", map[string]any{"email": email})
			return TokenResponse{}, ErrInvalidCredentials
		}
		return TokenResponse{}, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		s.logger.Warn("login_failed", map[string]any{"email": email})
		return TokenResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user_logged_in", map[string]any{"email": email})
	return TokenResponse{Token: token}, nil
}
