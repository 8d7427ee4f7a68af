package rag

import "fmt"

// Provider and store failures are wrapped in one of the types below so the
// orchestrator boundary can classify what broke without ever leaking the
// detail to the session.

// EmbeddingError marks a failed embedding call.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreWriteError marks a failed memory or transcript write.
type StoreWriteError struct {
	Err error
}

func (e *StoreWriteError) Error() string { return fmt.Sprintf("store write failed: %v", e.Err) }
func (e *StoreWriteError) Unwrap() error { return e.Err }

// StoreQueryError marks a failed memory or transcript read. A query that
// returns zero matches is not an error; that is the refusal path.
type StoreQueryError struct {
	Err error
}

func (e *StoreQueryError) Error() string { return fmt.Sprintf("store query failed: %v", e.Err) }
func (e *StoreQueryError) Unwrap() error { return e.Err }

// GenerationError marks a failed generation call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation failed: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

func classify(err error) string {
	switch err.(type) {
	case *EmbeddingError:
		return "embedding"
	case *StoreWriteError:
		return "store_write"
	case *StoreQueryError:
		return "store_query"
	case *GenerationError:
		return "generation"
	default:
		return "unknown"
	}
}
