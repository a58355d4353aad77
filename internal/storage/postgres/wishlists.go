package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/wishlist/internal/models"
	"github.com/mmynk/wishlist/internal/storage"
)

// ListWishlistItems returns the owner's items in insertion order.
func (s *PostgresStore) ListWishlistItems(ctx context.Context, ownerID string) ([]models.WishlistItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM wishlist_items
		WHERE owner_id = $1
		ORDER BY seq`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	defer rows.Close()

	items := []models.WishlistItem{}
	for rows.Next() {
		var item models.WishlistItem
		var description sql.NullString
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Name, &description, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		item.Description = description.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wishlist items: %w", err)
	}
	return items, nil
}

// CreateWishlistItem validates and inserts a wishlist item.
func (s *PostgresStore) CreateWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}

	description := sql.NullString{String: item.Description, Valid: item.Description != ""}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, owner_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.OwnerID, item.Name, description, item.CreatedAt)
	if sqlState(err) == foreignKeyViolation {
		return storage.ErrUnknownOwner
	}
	if err != nil {
		return fmt.Errorf("failed to create wishlist item: %w", err)
	}
	return nil
}

// DeleteWishlistItem removes the item only when ownerID matches.
func (s *PostgresStore) DeleteWishlistItem(ctx context.Context, itemID, ownerID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE id = $1 AND owner_id = $2`,
		itemID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
