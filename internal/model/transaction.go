package model

import "time"

// Category sentinels. CategoryUncategorized is the initial state of every
// normalized transaction, CategoryInternalTransfer is reserved for matched
// transfers and is never produced by the classifier, CategoryFallback is the
// catch-all assigned when classification cannot be determined.
const (
	CategoryUncategorized    = "Uncategorized"
	CategoryInternalTransfer = "Internal Transfer"
	CategoryFallback         = "Sonstiges"
)

// Defaults used by the normalizer when a canonical field is unmapped.
const (
	DefaultCurrency = "EUR"
	DefaultAccount  = "Unknown"
)

// Transaction is the canonical unit of data produced by normalization.
// Amount is signed: negative = outgoing, positive = incoming. A nil Date
// means the source value was missing or unparsable. Amount 0.0 can mean
// "no reliable amount" (parse failure), callers must not read it as a real
// zero balance.
type Transaction struct {
	ID               string
	Date             *time.Time
	Description      string
	Amount           float64
	Account          string
	Currency         string
	Source           string
	Category         string
	InternalTransfer bool
}

// RawTable holds the decoded rows of one source file before normalization.
// It is transient: owned by the ingest path for the duration of one file.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// ColumnIndex returns the index of the first header matching name exactly,
// or -1. Duplicate headers resolve to the first occurrence.
func (t *RawTable) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns row[col] for a header name, or "" when the column is absent
// or the row is short.
func (t *RawTable) Cell(row []string, name string) string {
	i := t.ColumnIndex(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// ColumnMapping maps each canonical field to the originating column header
// of a RawTable. An empty string means unmapped. Built once per file and
// treated as immutable afterwards.
type ColumnMapping struct {
	Date        string
	Description string
	Amount      string
	Account     string
	Currency    string
}
