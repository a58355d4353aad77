package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/wishlist/internal/models"
	"github.com/mmynk/wishlist/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	hasher  *PasswordHasher
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage, hasher *PasswordHasher) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		hasher:  hasher,
	}
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, credential string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, &models.ValidationError{Field: "email"}
	}
	if strings.TrimSpace(credential) == "" {
		return nil, &models.ValidationError{Field: "password"}
	}
	if len(credential) > MaxPasswordBytes {
		return nil, &models.ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes),
		}
	}

	// Fast path; the unique index still decides concurrent signups below.
	_, err := a.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	digest, err := a.hasher.Hash(credential)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(email, digest)
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and password, returning the user if valid.
// Storage failures are returned as-is so callers can tell them apart from
// bad credentials.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		a.hasher.burn(credential)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !a.hasher.Verify(credential, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
