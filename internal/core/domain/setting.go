package domain

const (
	// MarkupPercentageKey is the setting holding the operator margin applied
	// to every quote.
	MarkupPercentageKey = "markup_percentage"
	// DefaultMarkupPercentage is used until an admin sets a value.
	DefaultMarkupPercentage = "0.5"
)

// AppSetting is a persisted key/value tunable, like the markup percentage.
type AppSetting struct {
	Key   string
	Value string
}
