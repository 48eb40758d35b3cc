// Package ledger holds the in-memory tables of a user's book.
//
// Rows get a monotonic id when added. Ids are never reused within a
// ledger, so they stay valid across deletes of other rows.
package ledger

import (
	"fmt"

	"financas/internal/core"
)

// Record is a row type that carries its own id.
type Record[T any] interface {
	RowID() int64
	WithID(id int64) T
}

// Ledger is an ordered table of rows of one entity type.
type Ledger[T Record[T]] struct {
	rows   []T
	nextID int64
}

// New returns an empty ledger whose first id is 1.
func New[T Record[T]]() *Ledger[T] {
	return &Ledger[T]{nextID: 1}
}

// Add appends row with a fresh id and returns the stored row.
func (l *Ledger[T]) Add(row T) T {
	row = row.WithID(l.nextID)
	l.nextID++
	l.rows = append(l.rows, row)
	return row
}

// Get returns the row with the given id.
func (l *Ledger[T]) Get(id int64) (T, error) {
	if i := l.index(id); i >= 0 {
		return l.rows[i], nil
	}
	var zero T
	return zero, fmt.Errorf("%w: id %d", core.ErrRowNotFound, id)
}

// Update replaces the row with the result of fn. The id is preserved and
// the row is left untouched when fn fails.
func (l *Ledger[T]) Update(id int64, fn func(T) (T, error)) (T, error) {
	var zero T
	i := l.index(id)
	if i < 0 {
		return zero, fmt.Errorf("%w: id %d", core.ErrRowNotFound, id)
	}
	updated, err := fn(l.rows[i])
	if err != nil {
		return zero, err
	}
	l.rows[i] = updated.WithID(id)
	return l.rows[i], nil
}

// Delete removes the row with the given id and returns it.
func (l *Ledger[T]) Delete(id int64) (T, error) {
	var zero T
	i := l.index(id)
	if i < 0 {
		return zero, fmt.Errorf("%w: id %d", core.ErrRowNotFound, id)
	}
	removed := l.rows[i]
	l.rows = append(l.rows[:i], l.rows[i+1:]...)
	return removed, nil
}

// DeleteWhere removes every row matching pred and returns how many were removed.
func (l *Ledger[T]) DeleteWhere(pred func(T) bool) int {
	kept := l.rows[:0]
	for _, r := range l.rows {
		if !pred(r) {
			kept = append(kept, r)
		}
	}
	removed := len(l.rows) - len(kept)
	clear(l.rows[len(kept):])
	l.rows = kept
	return removed
}

// UpdateWhere applies fn to every row matching pred and returns the updated rows.
func (l *Ledger[T]) UpdateWhere(pred func(T) bool, fn func(T) T) []T {
	var changed []T
	for i, r := range l.rows {
		if pred(r) {
			l.rows[i] = fn(r).WithID(r.RowID())
			changed = append(changed, l.rows[i])
		}
	}
	return changed
}

// Find returns the first row matching pred.
func (l *Ledger[T]) Find(pred func(T) bool) (T, bool) {
	for _, r := range l.rows {
		if pred(r) {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// All returns a copy of the rows in insertion order.
func (l *Ledger[T]) All() []T {
	out := make([]T, len(l.rows))
	copy(out, l.rows)
	return out
}

func (l *Ledger[T]) Len() int { return len(l.rows) }

// NextID is the id the next Add will assign.
func (l *Ledger[T]) NextID() int64 { return l.nextID }

// Restore replaces the contents with rows loaded from storage. Rows keep
// their ids; rows without one are numbered after the highest id seen.
// nextID is raised to at least one past the highest id.
func (l *Ledger[T]) Restore(rows []T, nextID int64) {
	var maxID int64
	for _, r := range rows {
		if r.RowID() > maxID {
			maxID = r.RowID()
		}
	}
	l.rows = make([]T, 0, len(rows))
	for _, r := range rows {
		if r.RowID() <= 0 {
			maxID++
			r = r.WithID(maxID)
		}
		l.rows = append(l.rows, r)
	}
	if nextID <= maxID {
		nextID = maxID + 1
	}
	l.nextID = nextID
}

func (l *Ledger[T]) index(id int64) int {
	for i, r := range l.rows {
		if r.RowID() == id {
			return i
		}
	}
	return -1
}
