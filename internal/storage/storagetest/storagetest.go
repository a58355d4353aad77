// Package storagetest holds a behaviour suite shared by every storage.Store
// implementation.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmynk/wishlist/internal/models"
	"github.com/mmynk/wishlist/internal/storage"
)

// NewStoreFunc returns an empty store. The suite calls it once per subtest.
type NewStoreFunc func(t *testing.T) storage.Store

// Run exercises the credential and wishlist contracts against newStore.
func Run(t *testing.T, newStore NewStoreFunc) {
	ctx := context.Background()

	t.Run("CreateUser generates ID and CreatedAt", func(t *testing.T) {
		store := newStore(t)

		user := &models.User{Email: "a@x.com", PasswordHash: "digest"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByEmail normalizes email", func(t *testing.T) {
		store := newStore(t)

		user := &models.User{Email: "  Mixed@Example.COM ", PasswordHash: "digest"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		got, err := store.GetUserByEmail(ctx, "mixed@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, user.ID)
		}
		if got.PasswordHash != "digest" {
			t.Errorf("PasswordHash mismatch: got %q", got.PasswordHash)
		}
	})

	t.Run("GetUserByEmail returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetUserByEmail(ctx, "nobody@x.com")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetUserByID round trip", func(t *testing.T) {
		store := newStore(t)

		user := &models.User{Email: "id@x.com", PasswordHash: "digest"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Email != "id@x.com" {
			t.Errorf("Email mismatch: got %s", got.Email)
		}

		if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateUser rejects duplicate email", func(t *testing.T) {
		store := newStore(t)

		first := &models.User{Email: "dup@x.com", PasswordHash: "one"}
		if err := store.CreateUser(ctx, first); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		second := &models.User{Email: "DUP@x.com", PasswordHash: "two"}
		err := store.CreateUser(ctx, second)
		if !errors.Is(err, storage.ErrDuplicateEmail) {
			t.Fatalf("Expected ErrDuplicateEmail, got %v", err)
		}

		got, err := store.GetUserByEmail(ctx, "dup@x.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != first.ID || got.PasswordHash != "one" {
			t.Errorf("Expected the first record to survive, got %+v", got)
		}
	})

	t.Run("Concurrent duplicate signups create one user", func(t *testing.T) {
		store := newStore(t)

		const workers = 8
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = store.CreateUser(ctx, &models.User{Email: "race@x.com", PasswordHash: "digest"})
			}(i)
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			switch {
			case err == nil:
				created++
			case errors.Is(err, storage.ErrDuplicateEmail):
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}
		if created != 1 {
			t.Errorf("Expected exactly one signup to succeed, got %d", created)
		}
	})

	t.Run("ListWishlistItems returns empty slice", func(t *testing.T) {
		store := newStore(t)
		owner := createUser(t, store, "empty@x.com")

		items, err := store.ListWishlistItems(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListWishlistItems failed: %v", err)
		}
		if items == nil {
			t.Error("Expected non-nil slice")
		}
		if len(items) != 0 {
			t.Errorf("Expected 0 items, got %d", len(items))
		}
	})

	t.Run("CreateWishlistItem and list in insertion order", func(t *testing.T) {
		store := newStore(t)
		owner := createUser(t, store, "list@x.com")

		names := []string{"Book", "Bike", "Lamp"}
		for _, name := range names {
			item := &models.WishlistItem{OwnerID: owner.ID, Name: name}
			if err := store.CreateWishlistItem(ctx, item); err != nil {
				t.Fatalf("CreateWishlistItem failed: %v", err)
			}
			if item.ID == "" {
				t.Error("Expected item ID to be generated")
			}
		}
		withDescription := &models.WishlistItem{OwnerID: owner.ID, Name: "Pen", Description: "fountain"}
		if err := store.CreateWishlistItem(ctx, withDescription); err != nil {
			t.Fatalf("CreateWishlistItem failed: %v", err)
		}

		items, err := store.ListWishlistItems(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListWishlistItems failed: %v", err)
		}
		if len(items) != 4 {
			t.Fatalf("Expected 4 items, got %d", len(items))
		}
		for i, name := range names {
			if items[i].Name != name {
				t.Errorf("Item %d: got %s, want %s", i, items[i].Name, name)
			}
			if items[i].OwnerID != owner.ID {
				t.Errorf("Item %d owner mismatch: got %s", i, items[i].OwnerID)
			}
			if items[i].Description != "" {
				t.Errorf("Item %d: expected empty description, got %q", i, items[i].Description)
			}
		}
		if items[3].Description != "fountain" {
			t.Errorf("Description mismatch: got %q", items[3].Description)
		}
	})

	t.Run("CreateWishlistItem without name fails validation", func(t *testing.T) {
		store := newStore(t)
		owner := createUser(t, store, "noname@x.com")

		err := store.CreateWishlistItem(ctx, &models.WishlistItem{OwnerID: owner.ID, Name: "   "})
		var validationErr *models.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
		if validationErr.Field != "name" {
			t.Errorf("Expected field name, got %s", validationErr.Field)
		}

		items, err := store.ListWishlistItems(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListWishlistItems failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("Expected store unchanged, got %d items", len(items))
		}
	})

	t.Run("CreateWishlistItem rejects unknown owner", func(t *testing.T) {
		store := newStore(t)

		err := store.CreateWishlistItem(ctx, &models.WishlistItem{OwnerID: "ghost", Name: "Book"})
		if !errors.Is(err, storage.ErrUnknownOwner) {
			t.Errorf("Expected ErrUnknownOwner, got %v", err)
		}
	})

	t.Run("Items are scoped to their owner", func(t *testing.T) {
		store := newStore(t)
		alice := createUser(t, store, "alice@x.com")
		bob := createUser(t, store, "bob@x.com")

		aliceItem := &models.WishlistItem{OwnerID: alice.ID, Name: "Book"}
		if err := store.CreateWishlistItem(ctx, aliceItem); err != nil {
			t.Fatalf("CreateWishlistItem failed: %v", err)
		}

		bobItems, err := store.ListWishlistItems(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListWishlistItems failed: %v", err)
		}
		if len(bobItems) != 0 {
			t.Errorf("Bob should not see Alice's items, got %d", len(bobItems))
		}

		err = store.DeleteWishlistItem(ctx, aliceItem.ID, bob.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for foreign delete, got %v", err)
		}

		aliceItems, err := store.ListWishlistItems(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListWishlistItems failed: %v", err)
		}
		if len(aliceItems) != 1 {
			t.Errorf("Expected Alice's item to survive, got %d items", len(aliceItems))
		}
	})

	t.Run("DeleteWishlistItem removes owned item", func(t *testing.T) {
		store := newStore(t)
		owner := createUser(t, store, "delete@x.com")

		keep := &models.WishlistItem{OwnerID: owner.ID, Name: "Keep"}
		drop := &models.WishlistItem{OwnerID: owner.ID, Name: "Drop"}
		for _, item := range []*models.WishlistItem{keep, drop} {
			if err := store.CreateWishlistItem(ctx, item); err != nil {
				t.Fatalf("CreateWishlistItem failed: %v", err)
			}
		}

		if err := store.DeleteWishlistItem(ctx, drop.ID, owner.ID); err != nil {
			t.Fatalf("DeleteWishlistItem failed: %v", err)
		}

		items, err := store.ListWishlistItems(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListWishlistItems failed: %v", err)
		}
		if len(items) != 1 || items[0].ID != keep.ID {
			t.Errorf("Expected only %s to remain, got %+v", keep.ID, items)
		}

		if err := store.DeleteWishlistItem(ctx, drop.ID, owner.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("DeleteWishlistItem with unknown id returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		owner := createUser(t, store, "unknown@x.com")

		err := store.DeleteWishlistItem(ctx, "does-not-exist", owner.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Ping succeeds on open store", func(t *testing.T) {
		store := newStore(t)
		if err := store.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func createUser(t *testing.T, store storage.Store, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, PasswordHash: "digest"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user
}
