// Package transfer flags movements between the user's own accounts so they
// can be excluded from spending analysis.
package transfer

import (
	"math"
	"strings"
	"time"

	"github.com/mbeier/kontoscan/internal/model"
)

// DefaultTolerance is the monetary tolerance for opposite-amount matching.
const DefaultTolerance = 0.01

// maxDaysApart is the widest date gap two legs of a transfer may have.
const maxDaysApart = 2

// investmentKeywords exclude security trades from all transfer logic:
// buys, sells, dividends and interest legitimately show offsetting amounts
// that are not transfers. Matching is case-insensitive substring.
var investmentKeywords = []string{
	"WP-", "Wertpapier", "ETF", "ISIN", "Kauf", "Verkauf", "Dividende", "Zins",
}

// Options configures Mark.
type Options struct {
	// UserName, when set, flags any transaction whose account field
	// contains it (case-insensitive).
	UserName string
	// Tolerance for amount matching; DefaultTolerance when zero.
	Tolerance float64
}

// Mark sets InternalTransfer on txs in place and returns how many rows were
// flagged. Pair matching is greedy and one-shot: a transaction, once
// flagged, leaves the candidate pool, and a row with several possible
// partners pairs with the first one in insertion order. The scan is
// quadratic; it runs once per analysis session.
func Mark(txs []model.Transaction, opts Options) int {
	tolerance := opts.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}

	isInvestment := make([]bool, len(txs))
	for i := range txs {
		isInvestment[i] = containsInvestmentKeyword(txs[i].Description)
	}

	flagged := 0
	if user := strings.ToLower(strings.TrimSpace(opts.UserName)); user != "" {
		for i := range txs {
			if isInvestment[i] || txs[i].InternalTransfer {
				continue
			}
			if strings.Contains(strings.ToLower(txs[i].Account), user) {
				txs[i].InternalTransfer = true
				flagged++
			}
		}
	}

	for i := range txs {
		if txs[i].InternalTransfer || isInvestment[i] {
			continue
		}
		if txs[i].Date == nil || txs[i].Amount == 0 {
			continue
		}
		for j := range txs {
			if j == i || txs[j].InternalTransfer || isInvestment[j] {
				continue
			}
			if txs[j].Date == nil {
				continue
			}
			if math.Abs(txs[j].Amount+txs[i].Amount) > tolerance {
				continue
			}
			if daysApart(*txs[i].Date, *txs[j].Date) > maxDaysApart {
				continue
			}
			txs[i].InternalTransfer = true
			txs[j].InternalTransfer = true
			flagged += 2
			break
		}
	}
	return flagged
}

func containsInvestmentKeyword(description string) bool {
	desc := strings.ToLower(description)
	for _, kw := range investmentKeywords {
		if strings.Contains(desc, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func daysApart(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
