package normalize

import (
	"github.com/mbeier/kontoscan/internal/model"
)

// Normalize converts a RawTable into canonical transactions, one per row in
// the original order. It is pure and total: unmapped fields take their
// documented defaults (date absent, description "", amount 0.0, account
// "Unknown", currency "EUR") and parse failures degrade the same way.
func Normalize(table *model.RawTable, mapping model.ColumnMapping, source string) []model.Transaction {
	txs := make([]model.Transaction, 0, len(table.Rows))
	for _, row := range table.Rows {
		tx := model.Transaction{
			Description: "",
			Account:     model.DefaultAccount,
			Currency:    model.DefaultCurrency,
			Source:      source,
			Category:    model.CategoryUncategorized,
		}
		if mapping.Date != "" {
			tx.Date = ParseDate(table.Cell(row, mapping.Date))
		}
		if mapping.Description != "" {
			tx.Description = table.Cell(row, mapping.Description)
		}
		if mapping.Amount != "" {
			tx.Amount = CleanAmount(table.Cell(row, mapping.Amount))
		}
		if mapping.Account != "" {
			tx.Account = table.Cell(row, mapping.Account)
		}
		if mapping.Currency != "" {
			if c := table.Cell(row, mapping.Currency); c != "" {
				tx.Currency = c
			}
		}
		txs = append(txs, tx)
	}
	return txs
}
