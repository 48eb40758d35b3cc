// Package session keeps the open books of every user. Each operation runs
// under the user's lock and ends with a whole-book save.
package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/storage"
)

// DefaultUser is the slug of a blank user name.
const DefaultUser = "usuario"

var unsafeChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slugify turns a user name into the key used for files and rows.
func Slugify(name string) string {
	slug := unsafeChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	if slug == "" {
		return DefaultUser
	}
	return slug
}

// EventPublisher announces saved books. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishBookSaved(ctx context.Context, user string, version int64) error
}

// Backuper is implemented by stores that can snapshot a user's data
// before an import overwrites it.
type Backuper interface {
	Backup(ctx context.Context, user string, now time.Time) (string, error)
}

type Options struct {
	CacheSize int
	TTL       time.Duration
	// DefaultCardBudget seeds the card budget category of books with no
	// budget rows. Zero disables seeding.
	DefaultCardBudget core.Money
	// Events is optional.
	Events EventPublisher
	Logger *log.Logger
}

// Registry hands out per-user books loaded from a Store.
type Registry struct {
	store  storage.Store
	books  *cache.LRUCache[*ledger.Book]
	events EventPublisher
	budget core.Money
	logger *log.Logger
	sl     *log.StructuredLogger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock serializes one user's operations. It lives in Registry.locks
// only while some caller holds or waits for it.
type userLock struct {
	sync.Mutex
	refs int
}

func NewRegistry(store storage.Store, opts Options) *Registry {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentSession)

	r := &Registry{
		store:  store,
		books:  cache.NewLRUCache[*ledger.Book](opts.CacheSize, opts.TTL),
		events: opts.Events,
		budget: opts.DefaultCardBudget,
		logger: logger,
		sl:     log.NewStructuredLogger(logger),
		now:    time.Now,
		locks:  make(map[string]*userLock),
	}
	r.books.OnEvict(func(user string, _ *ledger.Book) {
		r.logger.Debug("Book evicted from session cache", log.FieldUser, user)
	})
	return r
}

// Cache exposes the book cache so it can be registered with a cache.Manager.
func (r *Registry) Cache() cache.Cleaner { return r.books }

// Open users, most recently used first.
func (r *Registry) Open() []string { return r.books.Keys() }

// lock takes the lock of user and returns its release.
func (r *Registry) lock(user string) (unlock func()) {
	r.mu.Lock()
	l, ok := r.locks[user]
	if !ok {
		l = &userLock{}
		r.locks[user] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, user)
		}
		r.mu.Unlock()
	}
}

// book returns the cached book of user or loads it. Callers hold the
// user's lock.
func (r *Registry) book(ctx context.Context, user string) (*ledger.Book, error) {
	if b, ok := r.books.Get(user); ok {
		return b, nil
	}
	b, err := r.store.Load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load book %s: %w", user, err)
	}
	b.SeedDefaultBudget(r.budget)
	r.books.Set(user, b)
	r.logger.DebugContext(ctx, "Book opened", log.FieldUser, user, log.FieldOperation, log.OpLoad)
	return b, nil
}

// View runs fn on the book of user without saving it. fn must not modify
// the book.
func (r *Registry) View(ctx context.Context, name string, fn func(*ledger.Book) error) error {
	user := Slugify(name)
	defer r.lock(user)()

	b, err := r.book(ctx, user)
	if err != nil {
		return err
	}
	return fn(b)
}

// Update runs fn on the book of user and saves it when fn succeeds. If the
// save fails the cached copy is dropped so the next call reloads what is
// stored.
func (r *Registry) Update(ctx context.Context, name, table, op string, fn func(*ledger.Book) error) error {
	user := Slugify(name)
	defer r.lock(user)()

	b, err := r.book(ctx, user)
	if err != nil {
		return err
	}
	if err := fn(b); err != nil {
		return err
	}
	if err := r.save(ctx, user, b); err != nil {
		r.books.Delete(user)
		r.sl.LogError(ctx, "Failed to save book", err, log.ComponentSession, op,
			log.NewFields().WithUser(user).WithRow(table, 0))
		return err
	}
	r.sl.LogMutation(ctx, user, table, op, nil)
	return nil
}

func (r *Registry) save(ctx context.Context, user string, b *ledger.Book) error {
	if err := r.store.Save(ctx, user, b); err != nil {
		return fmt.Errorf("save book %s: %w", user, err)
	}
	if r.events == nil {
		return nil
	}
	// The book is already stored; a lost event only delays the sync.
	if err := r.events.PublishBookSaved(ctx, user, r.now().UnixNano()); err != nil {
		r.logger.WarnContext(ctx, "Failed to publish book saved event",
			log.FieldUser, user, log.FieldError, err)
	}
	return nil
}

// Import applies workbook tables to the book of user. Stores that support
// it back up the current files first; the backup path is returned.
func (r *Registry) Import(ctx context.Context, name string, t *export.Tables, mode export.Mode) (export.Result, string, error) {
	if t == nil {
		return nil, "", errors.New("nil import tables")
	}
	var backup string
	if bk, ok := r.store.(Backuper); ok {
		path, err := bk.Backup(ctx, Slugify(name), r.now())
		if err != nil {
			return nil, "", fmt.Errorf("backup before import: %w", err)
		}
		backup = path
	}

	var res export.Result
	err := r.Update(ctx, name, "workbook", log.OpImport, func(b *ledger.Book) error {
		var err error
		res, err = export.Apply(b, t, mode)
		return err
	})
	if err != nil {
		return nil, backup, err
	}
	return res, backup, nil
}
