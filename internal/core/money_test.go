package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("%q expected invalid input, got %v", tc.in, err)
			}
		}
	}
}

func TestParseMoneyAcceptsZero(t *testing.T) {
	m, err := ParseMoney("0,00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.IsZero() {
		t.Fatalf("expected zero, got %v", m)
	}
	if _, err := ParseMoney("-3"); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestParseRate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0.7", "0.7", true},
		{"0,7", "0.7", true},
		{"", "0", true},
		{"-0.5", "-0.5", true},
		{"x", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRate(tc.in)
			if !tc.ok {
				if !errors.Is(err, ErrInvalidRate) {
					t.Fatalf("expected ErrInvalidRate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestMoneyFromDecimalRoundsHalfUp(t *testing.T) {
	cases := map[string]int64{
		"1126.825": 112683,
		"1126.824": 112682,
		"0.005":    1,
		"10":       1000,
	}
	for in, want := range cases {
		if got := MoneyFromDecimal(decimal.RequireFromString(in)); got.Cents != want {
			t.Fatalf("%s: got %d, want %d", in, got.Cents, want)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	m := Cents(123450)
	if got := m.String(); got != "1234.50" {
		t.Fatalf("String() = %q", got)
	}
	if got := m.Format("BRL"); got != "R$1.234,50" {
		t.Fatalf("Format(BRL) = %q", got)
	}
	if got := m.Format("USD"); got != "$1,234.50" {
		t.Fatalf("Format(USD) = %q", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Cents(1050))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "10.50" {
		t.Fatalf("marshal = %s", b)
	}

	var fromNumber, fromString Money
	if err := json.Unmarshal([]byte("33.335"), &fromNumber); err != nil {
		t.Fatal(err)
	}
	if fromNumber.Cents != 3334 {
		t.Fatalf("number: got %d", fromNumber.Cents)
	}
	if err := json.Unmarshal([]byte(`"12,34"`), &fromString); err != nil {
		t.Fatal(err)
	}
	if fromString.Cents != 1234 {
		t.Fatalf("string: got %d", fromString.Cents)
	}
	var bad Money
	if err := json.Unmarshal([]byte("-1"), &bad); err == nil {
		t.Fatal("expected error for negative number")
	}
}

func TestMoneyOutOfRange(t *testing.T) {
	for _, in := range []string{"2e17", "92233720368547758.08", "1e30"} {
		t.Run(in, func(t *testing.T) {
			var m Money
			if err := json.Unmarshal([]byte(in), &m); !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("expected ErrInvalidAmount, got %v (cents=%d)", err, m.Cents)
			}
			if _, err := DecimalToMoney(decimal.RequireFromString(in)); !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("DecimalToMoney: expected ErrInvalidAmount, got %v", err)
			}
		})
	}

	var m Money
	if err := json.Unmarshal([]byte("1e15"), &m); err != nil || m.Cents != 100000000000000000 {
		t.Fatalf("1e15: cents=%d err=%v", m.Cents, err)
	}
}
