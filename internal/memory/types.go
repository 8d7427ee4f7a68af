// Package memory persists embedding vectors with their source text and
// scoping metadata, and serves nearest-neighbor queries over them.
package memory

import "context"

// Source tags recorded in metadata. Retrieval does not distinguish them,
// but they keep every stored vector traceable to its origin.
const (
	SourceUserInput  = "User input"
	SourceAIResponse = "AI Response"
)

// Record is one write-once memory entry. Content is always the exact text
// that produced Vector; the two must never diverge. Position is the chunk's
// pre-trim offset in its source message and is nil for whole-message
// records.
type Record struct {
	ID       string
	UserID   string
	ChatID   string
	Source   string
	Content  string
	Position *int
	Vector   []float32
}

// Match is a retrieved record with its similarity score, higher is closer.
type Match struct {
	Record Record
	Score  float64
}

// Filter restricts a query by metadata equality. UserID is mandatory:
// retrieval is always scoped to the requesting identity's own content.
type Filter struct {
	UserID string
	ChatID string
}

// Store is the vector memory contract. Insert is visible to queries once it
// returns; Query returns an empty slice, not an error, when nothing
// matches.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	Query(ctx context.Context, vector []float32, limit int, filter Filter) ([]Match, error)
	Close() error
}
