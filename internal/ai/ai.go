// Package ai defines the capability contracts for the embedding and
// generation models, the fixed behavioral policy they run under, and a
// Gemini-backed implementation of both.
package ai

import "context"

// Conversation roles as the generation API expects them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one ordered element of an assembled prompt payload.
type Turn struct {
	Role string
	Text string
}

// Embedder maps text to a fixed-dimensionality vector. Callers are
// responsible for never passing empty input; transport or provider errors
// propagate unretried.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a response from an assembled prompt under the fixed
// behavioral policy (answer only from supplied context, canonical refusal
// when grounding is missing, inline citations).
type Generator interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
}
