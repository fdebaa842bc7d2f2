package normalize

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order; first successful parse wins.
var dateLayouts = []string{
	"02.01.2006",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02.01.06",
	"20060102",
}

// ParseDate parses a raw date cell. Returns nil when the input is empty or
// matches none of the known layouts.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

var currencySymbols = []string{"€", "$", "£", "¥"}

// CleanAmount parses a raw amount cell into a signed float. European
// formats are handled: with both '.' and ',' present, '.' is a thousands
// separator and ',' the decimal point; a lone ',' is a decimal point. Any
// failure yields 0.0 — callers must treat that as "no reliable amount",
// never as a real zero balance.
func CleanAmount(s string) float64 {
	s = strings.TrimSpace(s)
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0.0
	}
	return v
}
