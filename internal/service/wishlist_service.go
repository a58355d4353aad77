package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/wishlist/internal/middleware"
	"github.com/mmynk/wishlist/internal/models"
	"github.com/mmynk/wishlist/internal/storage"
)

// WishlistService serves the authenticated wishlist endpoints. Every
// operation is scoped to the user ID the auth gate put in the context.
type WishlistService struct {
	store  storage.WishlistStore
	logger *slog.Logger
}

// NewWishlistService creates a WishlistService with the given storage backend.
func NewWishlistService(store storage.WishlistStore, logger *slog.Logger) *WishlistService {
	return &WishlistService{store: store, logger: logger}
}

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List returns the caller's wishlist items.
func (s *WishlistService) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := s.store.ListWishlistItems(r.Context(), ownerID)
	if err != nil {
		s.logger.Error("ListWishlistItems failed", "user_id", ownerID, "error", err)
		writeText(w, http.StatusInternalServerError, "Error retrieving wishlist")
		return
	}

	s.logger.Debug("ListWishlistItems successful", "user_id", ownerID, "count", len(items))
	writeJSON(w, http.StatusOK, items)
}

// Create adds an item to the caller's wishlist.
func (s *WishlistService) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	item := &models.WishlistItem{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.store.CreateWishlistItem(r.Context(), item)
	var validationErr *models.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &validationErr):
		writeText(w, http.StatusBadRequest, validationErr.Error())
		return
	case errors.Is(err, storage.ErrUnknownOwner):
		s.logger.Warn("CreateWishlistItem for unknown owner", "user_id", ownerID)
		writeText(w, http.StatusUnauthorized, "Unauthorized access")
		return
	default:
		s.logger.Error("CreateWishlistItem failed", "user_id", ownerID, "error", err)
		writeText(w, http.StatusInternalServerError, "Error creating wishlist item")
		return
	}

	s.logger.Info("Wishlist item created", "user_id", ownerID, "item_id", item.ID)
	writeJSON(w, http.StatusCreated, item)
}

// Delete removes one of the caller's items. Items that do not exist and
// items owned by someone else get the same answer.
func (s *WishlistService) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID := mux.Vars(r)["id"]

	err := s.store.DeleteWishlistItem(r.Context(), itemID, ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		writeText(w, http.StatusOK, "Wishlist item not found")
		return
	}
	if err != nil {
		s.logger.Error("DeleteWishlistItem failed", "user_id", ownerID, "item_id", itemID, "error", err)
		writeText(w, http.StatusInternalServerError, "Error deleting wishlist item")
		return
	}

	s.logger.Info("Wishlist item deleted", "user_id", ownerID, "item_id", itemID)
	writeText(w, http.StatusOK, "Wishlist item deleted successfully")
}

// requireUser guards against handlers mounted without the auth gate.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeText(w, http.StatusUnauthorized, "Unauthorized access")
		return "", false
	}
	return userID, true
}
