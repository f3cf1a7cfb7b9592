package ports

// OrderWatcher starts background tracking of a created order's upstream
// progress. A nil watcher disables tracking.
type OrderWatcher interface {
	Watch(orderID string)
}
