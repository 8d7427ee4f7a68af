package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// MockProvider is a deterministic in-process Embedder and Generator for
// local development and tests. Vectors are derived from the input text, so
// identical text always lands on the identical vector and self-retrieval
// behaves like the real pipeline without network calls.
type MockProvider struct {
	Dim int

	// EmbedErr, when set, is returned for any text containing its key.
	EmbedErr map[string]error
	// GenerateErr, when set, fails every generation.
	GenerateErr error
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 768
	}
	return &MockProvider{Dim: dim}
}

func (m *MockProvider) Embed(_ context.Context, text string) ([]float32, error) {
	for key, err := range m.EmbedErr {
		if strings.Contains(text, key) {
			return nil, err
		}
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, m.Dim)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>33)%1000) / 1000
	}
	return vec, nil
}

func (m *MockProvider) Generate(_ context.Context, turns []Turn) (string, error) {
	if m.GenerateErr != nil {
		return "", m.GenerateErr
	}
	if len(turns) == 0 {
		return "", fmt.Errorf("empty prompt payload")
	}
	return fmt.Sprintf("Based on the provided content [1]: %s", firstLine(turns[0].Text)), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
