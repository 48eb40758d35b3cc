package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ports "financas/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options configures the Sheets publisher.
type Options struct {
	SpreadsheetID string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// Publisher writes every table to its own "<user> <table>" tab.
type Publisher struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var _ ports.BookPublisher = (*Publisher)(nil)

// New creates a Sheets publisher authenticated with a service account.
func New(ctx context.Context, opts Options) (*Publisher, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Publisher{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when no credentials are configured.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsJSON, err := credentials(opts)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func credentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// Publish clears and rewrites the tab of every table, creating missing tabs.
func (p *Publisher) Publish(ctx context.Context, user string, tables []ports.Table) error {
	if p.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(tables) == 0 {
		return nil
	}
	if err := p.ensureTabs(ctx, user, tables); err != nil {
		return err
	}

	ranges := make([]string, 0, len(tables))
	data := make([]*gsheet.ValueRange, 0, len(tables))
	for _, t := range tables {
		tab := quote(TabName(user, t.Name))
		ranges = append(ranges, tab)
		data = append(data, &gsheet.ValueRange{Range: tab + "!A1", Values: t.Grid()})
	}

	if _, err := p.svc.Spreadsheets.Values.BatchClear(p.spreadsheetID,
		&gsheet.BatchClearValuesRequest{Ranges: ranges}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %v: %w", ranges, err)
	}
	if _, err := p.svc.Spreadsheets.Values.BatchUpdate(p.spreadsheetID, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %v: %w", ranges, err)
	}

	slog.InfoContext(ctx, "Tables published to Google Sheets", "user", user, "tables", len(tables))
	return nil
}

func (p *Publisher) ensureTabs(ctx context.Context, user string, tables []ports.Table) error {
	ss, err := p.svc.Spreadsheets.Get(p.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	existing := make(map[string]bool, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	requests := missingTabs(existing, user, tables)
	if len(requests) == 0 {
		return nil
	}
	if _, err := p.svc.Spreadsheets.BatchUpdate(p.spreadsheetID,
		&gsheet.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add tabs: %w", err)
	}
	slog.InfoContext(ctx, "Created spreadsheet tabs", "user", user, "count", len(requests))
	return nil
}

func missingTabs(existing map[string]bool, user string, tables []ports.Table) []*gsheet.Request {
	var requests []*gsheet.Request
	for _, t := range tables {
		name := TabName(user, t.Name)
		if existing[name] {
			continue
		}
		existing[name] = true
		requests = append(requests, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		})
	}
	return requests
}

// TabName is the tab holding table of user.
func TabName(user, table string) string {
	return strings.TrimSpace(user + " " + table)
}

// quote makes a tab name safe for A1 notation.
func quote(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
