package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mbeier/kontoscan/internal/database"
)

// SessionRepo handles analysis sessions.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Insert(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO sessions(id, user_name, source_files, transaction_count, created_at)
	VALUES(?, ?, ?, ?, ?);
	`, s.ID, s.UserName, strings.Join(s.SourceFiles, "\n"), s.TransactionCount, database.Now())
	return err
}

func (r *SessionRepo) UpdateTransactionCount(ctx context.Context, id string, count int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET transaction_count = ? WHERE id = ?`, count, id)
	return err
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, created_at, user_name, source_files, transaction_count FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Latest returns the most recently created session, or nil when none exist.
func (r *SessionRepo) Latest(ctx context.Context) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, created_at, user_name, source_files, transaction_count FROM sessions ORDER BY created_at DESC, id DESC LIMIT 1`)
	s, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) List(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, created_at, user_name, source_files, transaction_count FROM sessions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the session; its transactions cascade.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func scanSession(row scanner) (Session, error) {
	var s Session
	var files string
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UserName, &files, &s.TransactionCount); err != nil {
		return Session{}, err
	}
	if files != "" {
		s.SourceFiles = strings.Split(files, "\n")
	}
	return s, nil
}
