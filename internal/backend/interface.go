package backend

import (
	"context"

	"financas/internal/session"
	"financas/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store, the optional event publisher and a
// cleanup function releasing both.
type BackendResult struct {
	Store storage.Store
	// Events is nil when AMQP is not configured or unreachable.
	Events  session.EventPublisher
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// CSV specific
	DataDirectory string

	// SQLite specific
	SQLiteDBPath string

	// Book-saved events, optional for both backends
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
