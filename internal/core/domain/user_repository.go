package domain

import (
	"context"
	"time"
)

// UserRepository is the abstraction for any kind of database intended to
// persist Users.
type UserRepository interface {
	// GetOrCreateUser returns the user with the given id, creating it with
	// the provided profile info if missing.
	GetOrCreateUser(
		ctx context.Context, userID int64, username, firstName string,
	) (*User, error)
	// GetUser returns the user with the given id.
	GetUser(ctx context.Context, userID int64) (*User, error)
	// GetUsersPaginated returns one page of users, newest first.
	GetUsersPaginated(ctx context.Context, page, limit int) ([]User, error)
	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int, error)
	// CountUsersSince returns the number of users created after the given time.
	CountUsersSince(ctx context.Context, since time.Time) (int, error)
	// UpdateUser commits changes to a user in a transactional way.
	UpdateUser(
		ctx context.Context, userID int64, updateFn func(u *User) (*User, error),
	) error
	// GetActiveUserIDs returns the ids of all non-blocked users.
	GetActiveUserIDs(ctx context.Context) ([]int64, error)
}
