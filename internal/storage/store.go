// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/wishlist/internal/models"
)

var (
	// ErrNotFound is returned when a lookup or scoped delete matches no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when a user with the same email exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUnknownOwner is returned when a wishlist item references a user
	// that does not exist.
	ErrUnknownOwner = errors.New("owner does not exist")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser persists a new user. ID and CreatedAt are filled in when
	// empty. Returns ErrDuplicateEmail if the email is already taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound when no user has the given email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound when no user has the given ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// WishlistStore persists wishlist items. Every read and delete is scoped to
// an owner.
type WishlistStore interface {
	// ListWishlistItems returns the owner's items in insertion order.
	// The result is empty, never nil, when the owner has no items.
	ListWishlistItems(ctx context.Context, ownerID string) ([]models.WishlistItem, error)

	// CreateWishlistItem validates and persists a new item. ID and CreatedAt
	// are filled in when empty. Returns a *models.ValidationError without
	// writing anything when required fields are missing, and
	// ErrUnknownOwner when the owner does not exist.
	CreateWishlistItem(ctx context.Context, item *models.WishlistItem) error

	// DeleteWishlistItem removes the item only if it belongs to ownerID.
	// Returns ErrNotFound otherwise, leaving the store unchanged.
	DeleteWishlistItem(ctx context.Context, itemID, ownerID string) error
}

// Store is the full persistence surface used by the server.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	WishlistStore

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
