package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aurora-labs/aurora/internal/ai"
	"github.com/aurora-labs/aurora/internal/auth"
	"github.com/aurora-labs/aurora/internal/chunk"
	"github.com/aurora-labs/aurora/internal/config"
	"github.com/aurora-labs/aurora/internal/httpapi"
	"github.com/aurora-labs/aurora/internal/memory"
	"github.com/aurora-labs/aurora/internal/observability"
	"github.com/aurora-labs/aurora/internal/rag"
	"github.com/aurora-labs/aurora/internal/session"
	"github.com/aurora-labs/aurora/internal/transcript"
)

type BuildResult struct {
	Config       config.Config
	API          *httpapi.Server
	Sessions     *session.Manager
	Orchestrator *rag.Orchestrator
	Metrics      *observability.Metrics

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	verifier, err := auth.NewVerifier(cfg.AuthSecret)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	splitter, err := chunk.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunker init failed: %w", err)
	}

	memoryStore, err := memory.NewStore(ctx, cfg.DatabaseURL, cfg.EmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("memory store init failed: %w", err)
	}
	transcriptStore, err := transcript.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = memoryStore.Close()
		return nil, fmt.Errorf("transcript store init failed: %w", err)
	}

	var (
		embedder  ai.Embedder
		generator ai.Generator
	)
	if strings.TrimSpace(cfg.GoogleAPIKey) != "" {
		gemini, err := ai.NewGemini(ctx, ai.GeminiConfig{
			APIKey:          cfg.GoogleAPIKey,
			GenerationModel: cfg.GenerationModel,
			EmbeddingModel:  cfg.EmbeddingModel,
			EmbeddingDim:    cfg.EmbeddingDim,
			Temperature:     cfg.Temperature,
		})
		if err != nil {
			_ = transcriptStore.Close()
			_ = memoryStore.Close()
			return nil, fmt.Errorf("gemini init failed: %w", err)
		}
		embedder = gemini
		generator = gemini
		log.Printf("ai provider: gemini (%s, %s)", cfg.GenerationModel, cfg.EmbeddingModel)
	} else {
		mock := ai.NewMockProvider(cfg.EmbeddingDim)
		embedder = mock
		generator = mock
		log.Printf("ai provider: mock (GOOGLE_API_KEY not set)")
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	orchestrator := rag.NewOrchestrator(
		splitter,
		embedder,
		generator,
		memoryStore,
		transcriptStore,
		metrics,
		cfg.QueryLimit,
		cfg.HistoryLimit,
	)

	api := httpapi.New(cfg, sessions, orchestrator, verifier, metrics)

	cleanup := func() error {
		var errs []string
		if err := transcriptStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := memoryStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:       cfg,
		API:          api,
		Sessions:     sessions,
		Orchestrator: orchestrator,
		Metrics:      metrics,
		Cleanup:      cleanup,
	}, nil
}
