//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/ledger"
	ports "financas/internal/sheets"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_PublishBook(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	opts := Options{
		SpreadsheetID:   spreadsheetID,
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}
	if opts.CredentialsJSON == "" && opts.CredentialsFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	p, err := New(ctx, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b := ledger.NewBook("integration")
	if _, err := b.AddExpense(core.ExpenseEntry{Date: core.DateOf(time.Now()), Description: "integration test", Amount: core.Cents(123), Category: "Teste"}); err != nil {
		t.Fatal(err)
	}
	if err := p.Publish(ctx, "integration", ports.TablesFor(b, core.DateOf(time.Now()))); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
