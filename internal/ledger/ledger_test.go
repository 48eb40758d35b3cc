package ledger

import (
	"errors"
	"testing"

	"financas/internal/core"
)

func budget(cat string, cents int64) core.BudgetLimit {
	return core.BudgetLimit{Category: cat, Limit: core.Cents(cents)}
}

func TestLedger_IDsAreStableAcrossDeletes(t *testing.T) {
	l := New[core.BudgetLimit]()
	a := l.Add(budget("a", 1))
	b := l.Add(budget("b", 2))
	c := l.Add(budget("c", 3))
	if a.ID != 1 || b.ID != 2 || c.ID != 3 {
		t.Fatalf("unexpected ids %d %d %d", a.ID, b.ID, c.ID)
	}

	if _, err := l.Delete(b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := l.Get(c.ID)
	if err != nil || got.Category != "c" {
		t.Fatalf("Get(c) after delete = %+v, %v", got, err)
	}
	d := l.Add(budget("d", 4))
	if d.ID != 4 {
		t.Fatalf("ids must not be reused, got %d", d.ID)
	}
	if _, err := l.Get(b.ID); !errors.Is(err, core.ErrMissingResource) {
		t.Fatalf("expected missing resource, got %v", err)
	}
}

func TestLedger_UpdatePreservesIDAndOrder(t *testing.T) {
	l := New[core.BudgetLimit]()
	l.Add(budget("a", 1))
	l.Add(budget("b", 2))

	updated, err := l.Update(1, func(r core.BudgetLimit) (core.BudgetLimit, error) {
		r.Limit = core.Cents(100)
		r.ID = 99
		return r, nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != 1 {
		t.Fatalf("id changed to %d", updated.ID)
	}
	all := l.All()
	if all[0].Limit.Cents != 100 || all[1].Category != "b" {
		t.Fatalf("unexpected rows %+v", all)
	}

	boom := errors.New("boom")
	if _, err := l.Update(2, func(core.BudgetLimit) (core.BudgetLimit, error) { return core.BudgetLimit{}, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got, _ := l.Get(2); got.Category != "b" {
		t.Fatalf("failed update must not modify the row, got %+v", got)
	}
	if _, err := l.Update(42, nil); !errors.Is(err, core.ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestLedger_AllReturnsCopy(t *testing.T) {
	l := New[core.BudgetLimit]()
	l.Add(budget("a", 1))
	rows := l.All()
	rows[0].Category = "mutated"
	if got, _ := l.Get(1); got.Category != "a" {
		t.Fatalf("ledger was mutated through All()")
	}
}

func TestLedger_DeleteWhereAndUpdateWhere(t *testing.T) {
	l := New[core.BudgetLimit]()
	for _, c := range []string{"x", "y", "x", "z"} {
		l.Add(budget(c, 1))
	}
	changed := l.UpdateWhere(
		func(r core.BudgetLimit) bool { return r.Category == "x" },
		func(r core.BudgetLimit) core.BudgetLimit { r.Limit = core.Cents(5); return r },
	)
	if len(changed) != 2 || changed[1].ID != 3 {
		t.Fatalf("unexpected changed rows %+v", changed)
	}
	if n := l.DeleteWhere(func(r core.BudgetLimit) bool { return r.Category == "x" }); n != 2 {
		t.Fatalf("DeleteWhere removed %d", n)
	}
	if l.Len() != 2 {
		t.Fatalf("Len = %d", l.Len())
	}
	if l.Add(budget("w", 1)).ID != 5 {
		t.Fatal("next id should continue after deletes")
	}
}

func TestLedger_Restore(t *testing.T) {
	l := New[core.BudgetLimit]()
	l.Restore([]core.BudgetLimit{
		{ID: 7, Category: "a"},
		{Category: "no id"},
		{ID: 3, Category: "b"},
	}, 0)
	all := l.All()
	if all[1].ID != 8 {
		t.Fatalf("row without id got %d, want 8", all[1].ID)
	}
	if l.NextID() != 9 {
		t.Fatalf("NextID = %d, want 9", l.NextID())
	}

	l.Restore(nil, 50)
	if l.Len() != 0 || l.NextID() != 50 {
		t.Fatalf("restore with explicit next id: len=%d next=%d", l.Len(), l.NextID())
	}
}
