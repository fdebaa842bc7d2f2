// Package normalize maps locale-varying export columns onto the canonical
// transaction schema and parses raw field values. All of it is heuristic
// and total: unmapped fields and unparsable values degrade to documented
// defaults instead of failing the file.
package normalize

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mbeier/kontoscan/internal/model"
)

// Canonical field names, as used by ColumnMapping and Suggest.
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldAccount     = "account"
	FieldCurrency    = "currency"
)

// columnSynonyms lists known header spellings per canonical field, German
// banking terminology first, including spellings whose umlaut got dropped
// by a broken decode ("auftraggeber/empfnger", "whrung"). Priority-ordered:
// the first synonym that matches a header wins.
var columnSynonyms = []struct {
	field    string
	variants []string
}{
	{FieldDate, []string{"datum", "date", "buchung", "valuta", "buchungstag", "wertstellung", "transaction date", "transactiondate"}},
	{FieldDescription, []string{"beschreibung", "description", "verwendungszweck", "buchungstext", "text", "details", "transaction details", "purpose"}},
	{FieldAmount, []string{"betrag", "amount", "wert", "value", "sum", "summe"}},
	{FieldAccount, []string{"auftraggeber", "empfänger", "empfaenger", "auftraggeber/empfänger", "auftraggeber/empfaenger", "auftraggeber/empfnger", "account", "recipient", "payee", "payer", "name"}},
	{FieldCurrency, []string{"währung", "waehrung", "whrung", "currency", "whrun", "eur", "usd"}},
}

// normalizeHeader prepares a header for comparison: case-insensitive,
// spaces and underscores ignored.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	return strings.ReplaceAll(h, "_", "")
}

// MapColumns builds a ColumnMapping for the given ordered headers. For
// duplicate headers (after normalization) only the first occurrence is
// eligible. Fields without any matching synonym stay unmapped; the caller
// decides whether that is acceptable.
func MapColumns(headers []string) model.ColumnMapping {
	byNorm := make(map[string]string, len(headers))
	for _, h := range headers {
		norm := normalizeHeader(h)
		if _, ok := byNorm[norm]; !ok {
			byNorm[norm] = h
		}
	}

	var m model.ColumnMapping
	for _, s := range columnSynonyms {
		for _, v := range s.variants {
			original, ok := byNorm[normalizeHeader(v)]
			if !ok {
				continue
			}
			switch s.field {
			case FieldDate:
				m.Date = original
			case FieldDescription:
				m.Description = original
			case FieldAmount:
				m.Amount = original
			case FieldAccount:
				m.Account = original
			case FieldCurrency:
				m.Currency = original
			}
			break
		}
	}
	return m
}

// Suggest proposes the closest header for a canonical field that MapColumns
// left unmapped, using edit distance against the field's synonyms. The
// result is informational only (a hint for manual override upstream); ok is
// false when nothing comes reasonably close.
func Suggest(field string, headers []string) (string, bool) {
	var variants []string
	for _, s := range columnSynonyms {
		if s.field == field {
			variants = s.variants
			break
		}
	}

	best := ""
	bestRatio := 1.0
	for _, h := range headers {
		nh := normalizeHeader(h)
		if nh == "" {
			continue
		}
		for _, v := range variants {
			nv := normalizeHeader(v)
			dist := levenshtein.ComputeDistance(nh, nv)
			maxlen := len(nh)
			if len(nv) > maxlen {
				maxlen = len(nv)
			}
			ratio := float64(dist) / float64(maxlen)
			if ratio < bestRatio {
				bestRatio = ratio
				best = h
			}
		}
	}
	return best, best != "" && bestRatio < 0.4
}
