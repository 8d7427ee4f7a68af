package rag

import (
	"fmt"
	"strings"

	"github.com/aurora-labs/aurora/internal/ai"
	"github.com/aurora-labs/aurora/internal/memory"
	"github.com/aurora-labs/aurora/internal/transcript"
)

// Assemble merges retrieved fragments and the recent transcript into the
// ordered prompt payload for the generator: one grounding turn first, then
// the transcript turns oldest first. The ordering is part of the
// generator's behavioral contract (context before conversation).
//
// Fragments are numbered in the order the store returned them; its
// similarity ranking is authoritative and is not re-ranked here. The
// orchestrator never calls Assemble with zero matches.
func Assemble(matches []memory.Match, recent []transcript.Message) []ai.Turn {
	fragments := make([]string, 0, len(matches))
	for i, m := range matches {
		fragments = append(fragments, fmt.Sprintf("[%d] %s", i+1, m.Record.Content))
	}

	turns := make([]ai.Turn, 0, len(recent)+1)
	turns = append(turns, ai.Turn{
		Role: ai.RoleUser,
		Text: "Use the following relevant content with inline citations:\n" + strings.Join(fragments, "\n"),
	})

	for _, msg := range recent {
		role := ai.RoleUser
		if msg.Role == transcript.RoleModel {
			role = ai.RoleModel
		}
		turns = append(turns, ai.Turn{Role: role, Text: msg.Content})
	}

	return turns
}
