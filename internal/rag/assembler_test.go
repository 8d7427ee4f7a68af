package rag

import (
	"strings"
	"testing"

	"github.com/aurora-labs/aurora/internal/ai"
	"github.com/aurora-labs/aurora/internal/memory"
	"github.com/aurora-labs/aurora/internal/transcript"
)

func TestAssembleGroundingBlockFirst(t *testing.T) {
	matches := []memory.Match{
		{Record: memory.Record{Content: "Paris is the capital of France."}, Score: 0.9},
		{Record: memory.Record{Content: "France is in Europe."}, Score: 0.7},
	}
	recent := []transcript.Message{
		{Role: transcript.RoleUser, Content: "Tell me about France."},
		{Role: transcript.RoleModel, Content: "France is a country [1]."},
	}

	turns := Assemble(matches, recent)
	if len(turns) != 3 {
		t.Fatalf("turns = %d, want 3", len(turns))
	}

	grounding := turns[0]
	if grounding.Role != ai.RoleUser {
		t.Fatalf("grounding role = %q, want %q", grounding.Role, ai.RoleUser)
	}
	if !strings.HasPrefix(grounding.Text, "Use the following relevant content with inline citations:\n") {
		t.Fatalf("grounding text missing instruction prefix: %q", grounding.Text)
	}
	if !strings.Contains(grounding.Text, "[1] Paris is the capital of France.\n[2] France is in Europe.") {
		t.Fatalf("fragments not numbered in store order: %q", grounding.Text)
	}
}

func TestAssembleKeepsStoreRanking(t *testing.T) {
	// The store's similarity ordering is authoritative even if scores look
	// out of order; the assembler must not re-rank.
	matches := []memory.Match{
		{Record: memory.Record{Content: "second best"}, Score: 0.2},
		{Record: memory.Record{Content: "best"}, Score: 0.9},
	}
	turns := Assemble(matches, nil)
	if !strings.Contains(turns[0].Text, "[1] second best\n[2] best") {
		t.Fatalf("assembler re-ranked fragments: %q", turns[0].Text)
	}
}

func TestAssembleTranscriptOrderAndRoles(t *testing.T) {
	matches := []memory.Match{{Record: memory.Record{Content: "ctx"}, Score: 1}}
	recent := []transcript.Message{
		{Role: transcript.RoleUser, Content: "first"},
		{Role: transcript.RoleModel, Content: "second"},
		{Role: transcript.RoleUser, Content: "third"},
	}

	turns := Assemble(matches, recent)
	if len(turns) != 4 {
		t.Fatalf("turns = %d, want 4", len(turns))
	}
	wantRoles := []string{ai.RoleUser, ai.RoleUser, ai.RoleModel, ai.RoleUser}
	wantTexts := []string{"", "first", "second", "third"}
	for i := 1; i < len(turns); i++ {
		if turns[i].Role != wantRoles[i] {
			t.Fatalf("turn %d role = %q, want %q", i, turns[i].Role, wantRoles[i])
		}
		if turns[i].Text != wantTexts[i] {
			t.Fatalf("turn %d text = %q, want %q", i, turns[i].Text, wantTexts[i])
		}
	}
}
