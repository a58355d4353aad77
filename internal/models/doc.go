// Package models defines the core domain models for the wishlist service.
//
// # Models
//
//   - User: a registered account, identified by email and a bcrypt digest
//   - WishlistItem: a single entry on a user's wishlist
//
// # Design Principles
//
// 1. **Owner references by ID**: items carry the owning user's ID string
// instead of a pointer, so stores can scope queries without joins
// 2. **No secrets on the wire**: password digests are never serialized
// 3. **Validation lives with the model**: stores and handlers share the same
// checks through Validate methods and ValidationError
package models
