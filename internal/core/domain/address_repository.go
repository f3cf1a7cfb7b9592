package domain

import "context"

// SavedAddressRepository is the abstraction for any kind of database
// intended to persist SavedAddresses.
type SavedAddressRepository interface {
	// AddAddress stores a new saved address.
	AddAddress(ctx context.Context, address *SavedAddress) error
	// GetAddressesForUser returns all addresses of a user sorted by name.
	GetAddressesForUser(ctx context.Context, userID int64) ([]SavedAddress, error)
	// DeleteAddress removes the address only if it belongs to the given user.
	DeleteAddress(ctx context.Context, addressID string, userID int64) error
}
