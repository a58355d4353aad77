package models

import (
	"strings"
)

// WishlistItem is a single entry on a user's wishlist.
// Items are created by their owner and can only be listed or deleted by them.
type WishlistItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// OwnerID references the User who created the item.
	OwnerID string `json:"ownerId"`

	// Name is what the user wishes for. Required.
	Name string `json:"name"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// CreatedAt is the Unix timestamp when the item was created.
	CreatedAt int64 `json:"createdAt"`
}

// Validate checks the fields a caller must supply.
func (i *WishlistItem) Validate() error {
	if strings.TrimSpace(i.OwnerID) == "" {
		return &ValidationError{Field: "ownerId"}
	}
	if strings.TrimSpace(i.Name) == "" {
		return &ValidationError{Field: "name"}
	}
	return nil
}
