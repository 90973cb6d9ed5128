package domain

// Item is anything a list screen can render and target with a mutation.
// IDs are unique within one fetched collection.
type Item interface {
	// GetID returns the server assigned identifier
	GetID() int64

	// GetTitle returns the primary display text
	GetTitle() string
}
