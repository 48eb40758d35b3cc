// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: JSON bodies, path ids and year/month query parameters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// DecodeJSON reads the request body into a value of type T. Unknown fields
// and trailing data are rejected. Every failure wraps core.ErrInvalidInput.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			return v, err
		}
		return v, fmt.Errorf("%w: malformed JSON body: %v", core.ErrInvalidInput, err)
	}
	if dec.More() {
		return v, fmt.Errorf("%w: unexpected data after JSON body", core.ErrInvalidInput)
	}
	return v, nil
}

// PathID parses the {id} path value.
func PathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrInvalidInput, raw)
	}
	return id, nil
}

// ParseYear reads the year query parameter, defaulting to now's year.
func ParseYear(query url.Values, now time.Time) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return now.Year(), nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1 || y > 9999 {
		return 0, fmt.Errorf("%w: invalid year %q", core.ErrInvalidInput, v)
	}
	return y, nil
}

// ParseMonthParams reads year and month query parameters, each defaulting
// to now. A month may also be given as "YYYY-MM" in month alone.
func ParseMonthParams(query url.Values, now time.Time) (core.YearMonth, error) {
	m := strings.TrimSpace(query.Get("month"))
	if strings.Contains(m, "-") {
		return core.ParseYearMonth(m)
	}
	year, err := ParseYear(query, now)
	if err != nil {
		return core.YearMonth{}, err
	}
	month := int(now.Month())
	if m != "" {
		month, err = strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return core.YearMonth{}, fmt.Errorf("%w: %q", core.ErrInvalidMonth, m)
		}
	}
	return core.YearMonth{Year: year, Month: time.Month(month)}, nil
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
