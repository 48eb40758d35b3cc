package memory

import (
	"context"
	"testing"

	ports "financas/internal/sheets"
)

func TestPublisherReplacesTables(t *testing.T) {
	p := New()
	ctx := context.Background()
	first := ports.Table{Name: "expenses", Header: []string{"id"}, Rows: [][]any{{"1"}, {"2"}}}
	if err := p.Publish(ctx, "ana", []ports.Table{first}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	first.Rows[0][0] = "changed"

	got, ok := p.Table("ana", "expenses")
	if !ok || len(got.Rows) != 2 || got.Rows[0][0] != "1" {
		t.Fatalf("unexpected table %+v", got)
	}

	if err := p.Publish(ctx, "ana", []ports.Table{{Name: "expenses", Header: []string{"id"}}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got, _ = p.Table("ana", "expenses")
	if len(got.Rows) != 0 {
		t.Fatalf("expected table to be replaced, got %d rows", len(got.Rows))
	}
	if _, ok := p.Table("bia", "expenses"); ok {
		t.Fatal("users must not share tables")
	}
	if p.Calls() != 2 {
		t.Fatalf("expected 2 calls, got %d", p.Calls())
	}
}
