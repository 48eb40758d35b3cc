package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ports "financas/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr string
	}{
		{"inline wins", Options{CredentialsJSON: `{"inline":true}`, CredentialsFile: file}, `{"inline":true}`, ""},
		{"file", Options{CredentialsFile: file}, `{"type":"service_account"}`, ""},
		{"missing file", Options{CredentialsFile: filepath.Join(dir, "nope.json")}, "", "read service account file"},
		{"none", Options{}, "", "missing service account credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := credentials(tt.opts)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPublish_NilService(t *testing.T) {
	p := &Publisher{spreadsheetID: "test"}
	err := p.Publish(context.Background(), "ana", []ports.Table{{Name: "expenses"}})
	if err == nil || err.Error() != "sheets service not initialized" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMissingTabs(t *testing.T) {
	existing := map[string]bool{"ana expenses": true}
	tables := []ports.Table{{Name: "expenses"}, {Name: "income"}, {Name: "income"}}
	reqs := missingTabs(existing, "ana", tables)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if got := reqs[0].AddSheet.Properties.Title; got != "ana income" {
		t.Errorf("unexpected tab %q", got)
	}
}

func TestQuote(t *testing.T) {
	if got := quote("ana d'arc expenses"); got != "'ana d''arc expenses'" {
		t.Errorf("unexpected quoted name %s", got)
	}
}
