package repository

import (
	"context"
	"database/sql"

	"github.com/mbeier/kontoscan/internal/database"
)

// TransactionRepo handles persisted transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, session_id, date, description, amount, account, currency, source, category, internal_transfer, created_at`

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, session_id, date, description, amount, account, currency, source, category, internal_transfer, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, t.ID, t.SessionID, t.Date, t.Description, t.Amount, t.Account, t.Currency, t.Source, t.Category, t.InternalTransfer)
	return err
}

// BulkInsert writes all rows in one transaction; either every row lands or
// none do.
func (r *TransactionRepo) BulkInsert(ctx context.Context, txs []Transaction) error {
	return database.WithTx(r.db, func(dbtx *sql.Tx) error {
		stmt, err := dbtx.PrepareContext(ctx, `
		INSERT INTO transactions(
		 id, session_id, date, description, amount, account, currency, source, category, internal_transfer, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, t := range txs {
			if _, err := stmt.ExecContext(ctx, t.ID, t.SessionID, t.Date, t.Description, t.Amount,
				t.Account, t.Currency, t.Source, t.Category, t.InternalTransfer); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TransactionRepo) UpdateCategory(ctx context.Context, id, category string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE id = ?`, category, id)
	return err
}

// ListBySession returns the session's transactions in insertion order.
func (r *TransactionRepo) ListBySession(ctx context.Context, sessionID string) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE session_id = ? ORDER BY rowid ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountUncategorized counts rows still carrying the given sentinel category.
func (r *TransactionRepo) CountUncategorized(ctx context.Context, sessionID, sentinel string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE session_id = ? AND category = ?`, sessionID, sentinel).Scan(&n)
	return n, err
}

// SpendingByCategory sums the session's expenses (negative amounts) per
// category, internal transfers excluded, biggest spend first.
func (r *TransactionRepo) SpendingByCategory(ctx context.Context, sessionID string) ([]CategorySpend, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT category, SUM(amount) AS total, COUNT(*) AS n
	FROM transactions
	WHERE session_id = ? AND internal_transfer = 0 AND amount < 0
	GROUP BY category
	ORDER BY total ASC;
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategorySpend
	for rows.Next() {
		var cs CategorySpend
		if err := rows.Scan(&cs.Category, &cs.Total, &cs.Count); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// scanTransaction handles the nullable date for both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var date sql.NullTime
	if err := row.Scan(&t.ID, &t.SessionID, &date, &t.Description, &t.Amount,
		&t.Account, &t.Currency, &t.Source, &t.Category, &t.InternalTransfer, &t.CreatedAt); err != nil {
		return Transaction{}, err
	}
	if date.Valid {
		t.Date = &date.Time
	}
	return t, nil
}
