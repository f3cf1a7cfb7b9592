package domain

import "context"

// SettingRepository is the abstraction for any kind of database intended to
// persist AppSettings.
type SettingRepository interface {
	// GetSetting returns the value for key, or the given default if the key
	// was never set.
	GetSetting(ctx context.Context, key, defaultValue string) (string, error)
	// SetSetting stores the value for key, overwriting any previous one.
	SetSetting(ctx context.Context, key, value string) error
}
