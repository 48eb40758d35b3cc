package memory

import (
	"context"
	"sync"

	ports "financas/internal/sheets"
)

var _ ports.BookPublisher = (*Publisher)(nil)

// Publisher keeps published tables in memory, keyed by user and table name.
type Publisher struct {
	mu     sync.Mutex
	tables map[string]map[string]ports.Table
	calls  int
}

func New() *Publisher {
	return &Publisher{tables: make(map[string]map[string]ports.Table)}
}

// Publish replaces the stored copy of each table.
func (p *Publisher) Publish(_ context.Context, user string, tables []ports.Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	byName, ok := p.tables[user]
	if !ok {
		byName = make(map[string]ports.Table)
		p.tables[user] = byName
	}
	for _, t := range tables {
		rows := make([][]any, len(t.Rows))
		for i, r := range t.Rows {
			rows[i] = append([]any(nil), r...)
		}
		byName[t.Name] = ports.Table{Name: t.Name, Header: append([]string(nil), t.Header...), Rows: rows}
	}
	return nil
}

// Table returns the last published copy of a user's table.
func (p *Publisher) Table(user, name string) (ports.Table, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tables[user][name]
	return t, ok
}

// Calls reports how many times Publish ran.
func (p *Publisher) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
