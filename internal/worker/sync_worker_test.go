package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/sheets"
	"financas/internal/sheets/memory"
	"financas/internal/storage"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, []sheets.Table) error {
	return errors.New("quota exceeded")
}

func seededStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	b := ledger.NewBook("ana")
	if _, err := b.AddExpense(core.ExpenseEntry{
		Date:        core.NewDate(2025, 3, 4),
		Category:    "Mercado",
		Description: "Feira",
		Amount:      core.Cents(12350),
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(context.Background(), "ana", b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return store
}

func TestSyncWorker_HandleBookSaved(t *testing.T) {
	pub := memory.New()
	w := NewSyncWorker(seededStore(t), pub, time.Second)
	w.now = func() time.Time { return time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC) }

	if err := w.HandleBookSaved(context.Background(), amqp.NewBookSavedMessage("ana", 10)); err != nil {
		t.Fatalf("HandleBookSaved: %v", err)
	}

	want := len(storage.Tables) + 1
	if pub.Calls() != want {
		t.Errorf("publish calls = %d, want %d", pub.Calls(), want)
	}
	exp, ok := pub.Table("ana", string(storage.TableExpenses))
	if !ok || len(exp.Rows) != 1 {
		t.Fatalf("expenses table = %+v, %v", exp, ok)
	}
	if _, ok := pub.Table("ana", sheets.SummaryTable); !ok {
		t.Error("summary table not published")
	}
}

func TestSyncWorker_SkipsStaleVersions(t *testing.T) {
	pub := memory.New()
	w := NewSyncWorker(seededStore(t), pub, time.Second)
	ctx := context.Background()

	tests := []struct {
		name      string
		version   int64
		wantCalls int
	}{
		{"first", 10, 1},
		{"older", 5, 1},
		{"same", 10, 1},
		{"newer", 11, 2},
	}
	perSync := len(storage.Tables) + 1
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.HandleBookSaved(ctx, amqp.NewBookSavedMessage("ana", tt.version)); err != nil {
				t.Fatalf("HandleBookSaved: %v", err)
			}
			if got := pub.Calls(); got != tt.wantCalls*perSync {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls*perSync)
			}
		})
	}
}

func TestSyncWorker_PublishErrorIsRetryable(t *testing.T) {
	w := NewSyncWorker(seededStore(t), failingPublisher{}, time.Second)
	ctx := context.Background()

	if err := w.HandleBookSaved(ctx, amqp.NewBookSavedMessage("ana", 7)); err == nil {
		t.Fatal("expected error")
	}
	if w.stale("ana", 7) {
		t.Error("failed sync must not mark the version as synced")
	}
}
