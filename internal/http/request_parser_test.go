package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"financas/internal/core"
)

var fixedNow = time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)

func TestParseMonthParams(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    core.YearMonth
		wantErr bool
	}{
		{
			name:  "both values provided",
			query: url.Values{"year": {"2024"}, "month": {"6"}},
			want:  core.YearMonth{Year: 2024, Month: time.June},
		},
		{
			name:  "only month uses current year",
			query: url.Values{"month": {"11"}},
			want:  core.YearMonth{Year: 2025, Month: time.November},
		},
		{
			name:  "empty query uses now",
			query: url.Values{},
			want:  core.YearMonth{Year: 2025, Month: time.March},
		},
		{
			name:  "year-month form",
			query: url.Values{"month": {"2024-12"}},
			want:  core.YearMonth{Year: 2024, Month: time.December},
		},
		{
			name:    "month out of range",
			query:   url.Values{"month": {"13"}},
			wantErr: true,
		},
		{
			name:    "non numeric month",
			query:   url.Values{"month": {"abc"}},
			wantErr: true,
		},
		{
			name:    "non numeric year",
			query:   url.Values{"year": {"20x5"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query, fixedNow)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidInput) {
					t.Errorf("err = %v, want invalid input", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonthParams: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Description string     `json:"description"`
		Amount      core.Money `json:"amount"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    int64
	}{
		{"number amount", `{"description":"Feira","amount":12.5}`, false, 1250},
		{"string amount with comma", `{"description":"Feira","amount":"12,50"}`, false, 1250},
		{"unknown field", `{"description":"Feira","amount":1,"extra":true}`, true, 0},
		{"negative amount", `{"description":"Feira","amount":-1}`, true, 0},
		{"trailing data", `{"description":"Feira","amount":1} {}`, true, 0},
		{"not json", `description=Feira`, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			got, err := DecodeJSON[payload](req)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidInput) {
					t.Errorf("err = %v, want invalid input", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON: %v", err)
			}
			if got.Amount.Cents != tt.want {
				t.Errorf("amount = %d, want %d", got.Amount.Cents, tt.want)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"7", 7, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.SetPathValue("id", tt.raw)
			got, err := PathID(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("id = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Feira\x00\x07 da\tesquina "); got != "Feira da\tesquina" {
		t.Errorf("sanitizeInput = %q", got)
	}
}
