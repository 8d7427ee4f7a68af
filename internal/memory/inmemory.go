package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process vector store for local/dev use and
// tests. Similarity is cosine, matching the Postgres implementation.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Insert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	vec := make([]float32, len(rec.Vector))
	copy(vec, rec.Vector)
	rec.Vector = vec
	s.records = append(s.records, rec)
	return nil
}

func (s *InMemoryStore) Query(_ context.Context, vector []float32, limit int, filter Filter) ([]Match, error) {
	if filter.UserID == "" {
		return nil, errMissingUserFilter
	}
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, limit)
	for _, rec := range s.records {
		if rec.UserID != filter.UserID {
			continue
		}
		if filter.ChatID != "" && rec.ChatID != filter.ChatID {
			continue
		}
		matches = append(matches, Match{Record: rec, Score: cosine(vector, rec.Vector)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *InMemoryStore) Close() error { return nil }

// Len reports the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
