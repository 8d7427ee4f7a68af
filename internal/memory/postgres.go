package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresStore persists memory records in PostgreSQL with pgvector.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string, embeddingDim int) (*PostgresStore, error) {
	if embeddingDim <= 0 {
		return nil, fmt.Errorf("embedding dimensionality must be positive, got %d", embeddingDim)
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool, embeddingDim); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool, embeddingDim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS memory_records (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			chat_id TEXT NOT NULL,
			source TEXT NOT NULL,
			content TEXT NOT NULL,
			position INT,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, embeddingDim),
		`CREATE INDEX IF NOT EXISTS idx_memory_records_user ON memory_records (user_id);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO memory_records (id, user_id, chat_id, source, content, position, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID,
		rec.UserID,
		rec.ChatID,
		rec.Source,
		rec.Content,
		rec.Position,
		pgvector.NewVector(rec.Vector),
	)
	if err != nil {
		return fmt.Errorf("insert memory record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, vector []float32, limit int, filter Filter) ([]Match, error) {
	if filter.UserID == "" {
		return nil, errMissingUserFilter
	}
	if limit <= 0 {
		limit = 5
	}

	query := `SELECT id, user_id, chat_id, source, content, position,
		1 - (embedding <=> $1) AS score
		FROM memory_records WHERE user_id = $2`
	args := []any{pgvector.NewVector(vector), filter.UserID}
	if filter.ChatID != "" {
		query += ` AND chat_id = $3`
		args = append(args, filter.ChatID)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memory records: %w", err)
	}
	defer rows.Close()

	matches := make([]Match, 0, limit)
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Record.ID, &m.Record.UserID, &m.Record.ChatID,
			&m.Record.Source, &m.Record.Content, &m.Record.Position, &m.Score); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory rows: %w", err)
	}
	return matches, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
