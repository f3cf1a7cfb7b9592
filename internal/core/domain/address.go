package domain

import (
	"time"

	"github.com/google/uuid"
)

// SavedAddress is a payout address a user stored under a custom label.
type SavedAddress struct {
	ID             string
	UserID         int64
	Name           string
	Address        string
	CurrencyTicker string
	CreatedAt      time.Time
}

// NewSavedAddress returns a saved address with a fresh id.
func NewSavedAddress(
	userID int64, name, address, currencyTicker string,
) *SavedAddress {
	return &SavedAddress{
		ID:             uuid.New().String(),
		UserID:         userID,
		Name:           name,
		Address:        address,
		CurrencyTicker: currencyTicker,
		CreatedAt:      time.Now(),
	}
}
