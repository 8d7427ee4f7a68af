package memory

import (
	"context"
	"testing"
)

func mustInsert(t *testing.T, s *InMemoryStore, rec Record) {
	t.Helper()
	if err := s.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
}

func TestQueryScopesByUser(t *testing.T) {
	s := NewInMemoryStore()
	probe := []float32{1, 0, 0}

	// User B's record is a perfect match for the probe; it must never leak
	// into user A's results.
	mustInsert(t, s, Record{UserID: "a", Content: "a's note", Vector: []float32{0.5, 0.5, 0}})
	mustInsert(t, s, Record{UserID: "b", Content: "b's note", Vector: []float32{1, 0, 0}})

	matches, err := s.Query(context.Background(), probe, 5, Filter{UserID: "a"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].Record.Content != "a's note" {
		t.Fatalf("matched %q, want user a's own record", matches[0].Record.Content)
	}
}

func TestQueryRequiresUserFilter(t *testing.T) {
	s := NewInMemoryStore()
	mustInsert(t, s, Record{UserID: "a", Vector: []float32{1}})

	if _, err := s.Query(context.Background(), []float32{1}, 5, Filter{}); err == nil {
		t.Fatalf("Query() without user filter expected error")
	}
}

func TestQueryOrdersByScoreAndLimits(t *testing.T) {
	s := NewInMemoryStore()
	probe := []float32{1, 0}

	mustInsert(t, s, Record{UserID: "a", Content: "orthogonal", Vector: []float32{0, 1}})
	mustInsert(t, s, Record{UserID: "a", Content: "exact", Vector: []float32{1, 0}})
	mustInsert(t, s, Record{UserID: "a", Content: "close", Vector: []float32{1, 0.2}})

	matches, err := s.Query(context.Background(), probe, 2, Filter{UserID: "a"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Record.Content != "exact" || matches[1].Record.Content != "close" {
		t.Fatalf("order = %q,%q, want exact,close", matches[0].Record.Content, matches[1].Record.Content)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatalf("scores not descending: %v, %v", matches[0].Score, matches[1].Score)
	}
}

func TestQueryEmptyStoreIsNotAnError(t *testing.T) {
	s := NewInMemoryStore()
	matches, err := s.Query(context.Background(), []float32{1, 0}, 5, Filter{UserID: "a"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("matches = %d, want 0", len(matches))
	}
}

func TestQueryChatFilter(t *testing.T) {
	s := NewInMemoryStore()
	probe := []float32{1, 0}

	mustInsert(t, s, Record{UserID: "a", ChatID: "c1", Content: "in chat", Vector: []float32{1, 0}})
	mustInsert(t, s, Record{UserID: "a", ChatID: "c2", Content: "other chat", Vector: []float32{1, 0}})

	matches, err := s.Query(context.Background(), probe, 5, Filter{UserID: "a", ChatID: "c1"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Record.Content != "in chat" {
		t.Fatalf("matches = %+v, want only chat c1's record", matches)
	}
}

func TestInsertAssignsIDAndCopiesVector(t *testing.T) {
	s := NewInMemoryStore()
	vec := []float32{1, 0}
	mustInsert(t, s, Record{UserID: "a", Vector: vec})

	// Mutating the caller's slice must not corrupt the stored vector.
	vec[0] = 0
	matches, err := s.Query(context.Background(), []float32{1, 0}, 5, Filter{UserID: "a"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].Record.ID == "" {
		t.Fatalf("stored record has no ID")
	}
	if matches[0].Score < 0.99 {
		t.Fatalf("score = %v, stored vector was aliased to caller's slice", matches[0].Score)
	}
}
