package storage

import (
	"testing"

	"financas/internal/core"
	"financas/internal/ledger"
)

func TestDecode_CardPurchaseColumns(t *testing.T) {
	header := Headers[TableCardPurchases]
	records := [][]string{
		{"7", "6f1c2b1e-8d8f-4b8e-9c3a-2f2d1a0b9c11", "2025-03-02", "TV (1/2)", "150.00", "2", "1", "2025-03-10", "sim", "Nubank", "10"},
		{"8", "6f1c2b1e-8d8f-4b8e-9c3a-2f2d1a0b9c11", "2025-03-02", "TV (2/2)", "150.00", "2", "2", "2025-04-10", "false", "Nubank", "10"},
	}
	b := ledger.NewBook("ana")
	if err := Decode(b, TableCardPurchases, header, records, 0); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rows := b.CardPurchases.All()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Paid || rows[1].Paid {
		t.Errorf("unexpected paid flags %v %v", rows[0].Paid, rows[1].Paid)
	}
	if rows[1].DueDate != core.NewDate(2025, 4, 10) || rows[0].PurchaseID != rows[1].PurchaseID {
		t.Errorf("unexpected rows %+v", rows)
	}
	if b.CardPurchases.NextID() != 9 {
		t.Errorf("expected next id 9, got %d", b.CardPurchases.NextID())
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		table  Table
		record []string
	}{
		{"bad amount", TableExpenses, []string{"1", "2025-01-01", "c", "d", "abc", "Pix"}},
		{"bad id", TableCards, []string{"x", "Nubank", "10"}},
		{"bad rate", TableInvestments, []string{"1", "2025-01-01", "CDB", "Geral", "10", "um"}},
		{"bad uuid", TableCardPurchases, []string{"1", "nope", "2025-01-01", "d", "1", "1", "1", "2025-01-10", "false", "c", "10"}},
		{"unknown table", Table("accounts"), []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ledger.NewBook("ana")
			if err := Decode(b, tt.table, Headers[tt.table], [][]string{tt.record}, 0); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEncode_FollowsHeaders(t *testing.T) {
	b := sampleBook(t)
	for _, tb := range Tables {
		for _, rec := range Encode(b, tb) {
			if len(rec) != len(Headers[tb]) {
				t.Errorf("%s: record has %d cells, header has %d", tb, len(rec), len(Headers[tb]))
			}
		}
	}
}

func TestDecodeRows_KeepsMissingIDs(t *testing.T) {
	var rs Rows
	header := []string{"name", "due_day"}
	if err := DecodeRows(&rs, TableCards, header, [][]string{{"Nubank", "10"}, {"Inter", "5"}}); err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(rs.Cards) != 2 || rs.Cards[0].ID != 0 || rs.Cards[1].ID != 0 {
		t.Fatalf("expected ids left at zero, got %+v", rs.Cards)
	}

	b := ledger.NewBook("ana")
	if err := Decode(b, TableCards, header, [][]string{{"Nubank", "10"}, {"Inter", "5"}}, 7); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ids := []int64{b.Cards.All()[0].ID, b.Cards.All()[1].ID}; ids[0] != 1 || ids[1] != 2 || b.Cards.NextID() != 7 {
		t.Fatalf("unexpected numbering %v next %d", ids, b.Cards.NextID())
	}
}
