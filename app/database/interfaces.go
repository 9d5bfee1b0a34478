package database

import "time"

// ItemRepository is the persistence surface used by the pipeline, the HTTP
// API and the background tasks.
type ItemRepository interface {
	// InsertItem commits the item and its tags atomically. A dedupe-hash
	// collision returns id 0 with a nil error; it is an expected outcome,
	// not a failure.
	InsertItem(item Item) (int64, error)

	GetItem(id int64) (*Item, error)
	ListItems(filter ItemFilter) ([]Item, error)
	GetItemCount() (int, error)
	GetSourceStats() (map[string]int, error)

	// GetRecentTopItems returns the highest scored items ingested at or
	// after since, for digest rendering.
	GetRecentTopItems(since string, limit int) ([]Item, error)

	// GetItemsIngestedSince returns everything ingested at or after since,
	// newest published first, for report rendering.
	GetItemsIngestedSince(since string) ([]Item, error)

	// CleanupOldItems deletes items whose ingested_at precedes
	// now - retentionDays and returns the number removed.
	CleanupOldItems(retentionDays int, now time.Time) (int64, error)
}
