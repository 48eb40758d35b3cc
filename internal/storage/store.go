// Package storage persists users' books. Every save rewrites the whole book.
package storage

import (
	"context"

	"financas/internal/ledger"
)

// Store loads and saves a user's book. user is an already slugified key.
// Loading a user with nothing stored returns an empty book.
type Store interface {
	Load(ctx context.Context, user string) (*ledger.Book, error)
	Save(ctx context.Context, user string, b *ledger.Book) error
	Close() error
}
