package domain

import "time"

// User is a person talking to the bot, keyed by the chat-platform user id.
type User struct {
	UserID       int64
	Username     string
	FirstName    string
	LanguageCode string
	IsBlocked    bool
	CreatedAt    time.Time
}

// NewUser returns a user with the default language and no block.
func NewUser(userID int64, username, firstName, defaultLang string) *User {
	return &User{
		UserID:       userID,
		Username:     username,
		FirstName:    firstName,
		LanguageCode: defaultLang,
		CreatedAt:    time.Now(),
	}
}
