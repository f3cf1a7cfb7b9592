package application

import "errors"

var (
	// ErrNoActiveExchange is thrown when an event arrives for a user that
	// has no negotiation in progress.
	ErrNoActiveExchange = errors.New("no exchange in progress")
	// ErrStaleSession is thrown when an in-flight step finished after the
	// session it belonged to was reset or replaced. The result is discarded.
	ErrStaleSession = errors.New("session was reset while the step was in flight")
	// ErrNotAdmin is thrown when a non-admin user calls an admin operation.
	ErrNotAdmin = errors.New("user is not an administrator")
	// ErrInvalidMarkup is thrown when setting a markup outside [0, 100).
	ErrInvalidMarkup = errors.New("markup percentage must be in [0, 100)")
	// ErrEmptyBroadcast is thrown when broadcasting an empty message.
	ErrEmptyBroadcast = errors.New("broadcast message must not be empty")
)
