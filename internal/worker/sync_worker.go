package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/sheets"
	"financas/internal/storage"

	"golang.org/x/sync/errgroup"
)

// maxParallelTabs bounds concurrent table writes per book.
const maxParallelTabs = 4

// SyncWorker mirrors saved books into a spreadsheet.
type SyncWorker struct {
	store     storage.Store
	publisher sheets.BookPublisher
	timeout   time.Duration
	now       func() time.Time

	mu   sync.Mutex
	seen map[string]int64
}

func NewSyncWorker(store storage.Store, publisher sheets.BookPublisher, timeout time.Duration) *SyncWorker {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &SyncWorker{
		store:     store,
		publisher: publisher,
		timeout:   timeout,
		now:       time.Now,
		seen:      make(map[string]int64),
	}
}

// HandleBookSaved processes a book-saved event from AMQP. Events older than
// one already synced for the same user are skipped: the book is read from
// the store, so the newer sync already carried their changes.
func (w *SyncWorker) HandleBookSaved(ctx context.Context, msg *amqp.BookSavedMessage) error {
	if w.stale(msg.User, msg.Version) {
		slog.DebugContext(ctx, "Skipping stale book event",
			"user", msg.User,
			"version", msg.Version)
		return nil
	}

	slog.InfoContext(ctx, "Processing book saved event",
		"user", msg.User,
		"version", msg.Version)

	if err := w.SyncUser(ctx, msg.User); err != nil {
		return err
	}
	w.markSynced(msg.User, msg.Version)
	return nil
}

// SyncUser loads the book of user and publishes every table.
func (w *SyncWorker) SyncUser(ctx context.Context, user string) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	b, err := w.store.Load(ctx, user)
	if err != nil {
		return fmt.Errorf("load book %s: %w", user, err)
	}

	tables := sheets.TablesFor(b, core.DateOf(w.now()))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTabs)
	for _, t := range tables {
		g.Go(func() error {
			if err := w.publisher.Publish(gctx, user, []sheets.Table{t}); err != nil {
				return fmt.Errorf("publish %s: %w", t.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("sync book %s: %w", user, err)
	}

	slog.InfoContext(ctx, "Book synced",
		"user", user,
		"tables", len(tables),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *SyncWorker) stale(user string, version int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	last, ok := w.seen[user]
	return ok && version <= last
}

func (w *SyncWorker) markSynced(user string, version int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if version > w.seen[user] {
		w.seen[user] = version
	}
}
