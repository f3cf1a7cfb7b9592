package ports

import "context"

// MessageSender pushes an unsolicited localized message to a user, outside
// of a request/reply exchange. Broadcasts and admin ticket answers go
// through it. The chat-platform wiring implements it.
type MessageSender interface {
	SendMessage(ctx context.Context, userID int64, text string) error
}
