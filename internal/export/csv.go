// Package export writes the labeled transaction table as a delimited file
// spreadsheets open cleanly.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mbeier/kontoscan/internal/model"
)

// Header is the column order of an exported table.
var Header = []string{"Date", "Description", "Amount", "Account", "Currency", "Source", "Category", "Internal_Transfer"}

// utf8BOM makes Excel pick UTF-8 instead of the platform codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the transactions preceded by a UTF-8 BOM. Absent dates
// become empty cells; amounts use the shortest decimal form so a re-import
// parses them back to the same value.
func WriteCSV(w io.Writer, txs []model.Transaction) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("export: write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for i, tx := range txs {
		date := ""
		if tx.Date != nil {
			date = tx.Date.Format(time.DateOnly)
		}
		rec := []string{
			date,
			tx.Description,
			strconv.FormatFloat(tx.Amount, 'f', -1, 64),
			tx.Account,
			tx.Currency,
			tx.Source,
			tx.Category,
			strconv.FormatBool(tx.InternalTransfer),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}
