package repository

import "time"

// Session groups the transactions of one analysis run.
type Session struct {
	ID               string
	CreatedAt        time.Time
	UserName         string
	SourceFiles      []string
	TransactionCount int
}

// Transaction represents a persisted transaction row.
type Transaction struct {
	ID               string
	SessionID        string
	Date             *time.Time
	Description      string
	Amount           float64
	Account          string
	Currency         string
	Source           string
	Category         string
	InternalTransfer bool
	CreatedAt        time.Time
}

// CategorySpend is one row of the per-category spending summary.
type CategorySpend struct {
	Category string
	Total    float64
	Count    int
}
