// Package service glues the ingest, transfer-matching, classification and
// persistence stages into one pipeline.
package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mbeier/kontoscan/internal/classify"
	"github.com/mbeier/kontoscan/internal/database/repository"
	"github.com/mbeier/kontoscan/internal/decode"
	"github.com/mbeier/kontoscan/internal/export"
	"github.com/mbeier/kontoscan/internal/llm"
	"github.com/mbeier/kontoscan/internal/model"
	"github.com/mbeier/kontoscan/internal/normalize"
	"github.com/mbeier/kontoscan/internal/transfer"
)

// SourceFile is one bank export handed to Analyze.
type SourceFile struct {
	Name string
	Data []byte
}

// FileReport describes how one source file was ingested.
type FileReport struct {
	Name      string
	Encoding  string
	Delimiter rune
	Mapping   model.ColumnMapping
	Rows      int
	// Hints suggests a header per canonical field that stayed unmapped.
	Hints map[string]string
}

// AnalyzeOptions tunes one pipeline run.
type AnalyzeOptions struct {
	UserName  string
	Tolerance float64
	Prompt    string
	BatchSize int
}

// AnalyzeResult is the outcome of a full run. Transactions carry their final
// categories; the same rows are persisted under SessionID.
type AnalyzeResult struct {
	SessionID      string
	Files          []FileReport
	Transactions   []model.Transaction
	Transfers      int
	Classification classify.Result
}

// AnalyzerService runs the pipeline end to end. Sessions and Transactions
// may be nil for Analyze, which then skips persistence; the session
// operations (ExportSession, Summary, ListSessions, Relabel) require both.
type AnalyzerService struct {
	Sessions     *repository.SessionRepo
	Transactions *repository.TransactionRepo
	Provider     llm.Provider
	Logger       *log.Logger
	OnProgress   func(classify.Progress)
}

// Analyze ingests the files, marks internal transfers, classifies the rest
// and persists the labeled table. Unreadable files and rows degrade to
// reports and defaults; only persistence can fail.
func (s *AnalyzerService) Analyze(ctx context.Context, files []SourceFile, opts AnalyzeOptions) (*AnalyzeResult, error) {
	res := &AnalyzeResult{SessionID: uuid.NewString()}

	var txs []model.Transaction
	for _, f := range files {
		table, dec := decode.ReadTable(f.Data)
		mapping := normalize.MapColumns(table.Headers)
		report := FileReport{
			Name:      f.Name,
			Encoding:  dec.Encoding,
			Delimiter: dec.Delimiter,
			Mapping:   mapping,
			Rows:      len(table.Rows),
			Hints:     mappingHints(mapping, table.Headers),
		}
		res.Files = append(res.Files, report)
		s.logf("file ingested", "file", f.Name, "encoding", dec.Encoding,
			"delimiter", string(dec.Delimiter), "rows", report.Rows)
		for field, header := range report.Hints {
			s.logf("column unmapped", "file", f.Name, "field", field, "closest", header)
		}

		txs = append(txs, normalize.Normalize(table, mapping, f.Name)...)
	}

	res.Transfers = transfer.Mark(txs, transfer.Options{
		UserName:  opts.UserName,
		Tolerance: opts.Tolerance,
	})
	s.logf("transfers marked", "count", res.Transfers, "total", len(txs))

	orch := &classify.Orchestrator{Provider: s.Provider, Logger: s.Logger, OnProgress: s.OnProgress}
	res.Classification = orch.Run(ctx, txs, classify.Options{
		Prompt:    opts.Prompt,
		BatchSize: opts.BatchSize,
	})
	res.Transactions = txs

	// Cancellation ends classification, not the run: rows labeled so far
	// are persisted even though ctx is already done.
	if err := s.persist(context.WithoutCancel(ctx), res, files, opts.UserName); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *AnalyzerService) persist(ctx context.Context, res *AnalyzeResult, files []SourceFile, userName string) error {
	if s.Sessions == nil || s.Transactions == nil {
		return nil
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	sess := repository.Session{
		ID:          res.SessionID,
		UserName:    userName,
		SourceFiles: names,
	}
	if err := s.Sessions.Insert(ctx, sess); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	rows := make([]repository.Transaction, 0, len(res.Transactions))
	for i := range res.Transactions {
		res.Transactions[i].ID = uuid.NewString()
		rows = append(rows, toRow(res.Transactions[i], res.SessionID))
	}
	if err := s.Transactions.BulkInsert(ctx, rows); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	if err := s.Sessions.UpdateTransactionCount(ctx, res.SessionID, len(rows)); err != nil {
		return fmt.Errorf("update session count: %w", err)
	}
	return nil
}

// ExportSession writes a previously stored session as CSV. An empty
// sessionID exports the latest session.
func (s *AnalyzerService) ExportSession(ctx context.Context, w io.Writer, sessionID string) error {
	sess, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return err
	}
	rows, err := s.Transactions.ListBySession(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	txs := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, fromRow(r))
	}
	return export.WriteCSV(w, txs)
}

// Summary aggregates a stored session: income, expenses and net over
// non-transfer rows plus per-category expense totals.
type Summary struct {
	Income     float64
	Expenses   float64
	Net        float64
	ByCategory []repository.CategorySpend
}

func (s *AnalyzerService) Summary(ctx context.Context, sessionID string) (Summary, error) {
	sess, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	rows, err := s.Transactions.ListBySession(ctx, sess.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("list transactions: %w", err)
	}

	var sum Summary
	for _, r := range rows {
		if r.InternalTransfer {
			continue
		}
		if r.Amount > 0 {
			sum.Income += r.Amount
		} else {
			sum.Expenses += r.Amount
		}
	}
	sum.Net = sum.Income + sum.Expenses

	sum.ByCategory, err = s.Transactions.SpendingByCategory(ctx, sess.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("spending by category: %w", err)
	}
	return sum, nil
}

// ListSessions returns stored sessions, newest first.
func (s *AnalyzerService) ListSessions(ctx context.Context) ([]repository.Session, error) {
	if s.Sessions == nil {
		return nil, fmt.Errorf("no session store configured")
	}
	return s.Sessions.List(ctx)
}

// Relabel overrides the category of one stored transaction; the manual
// correction path for misclassified rows.
func (s *AnalyzerService) Relabel(ctx context.Context, transactionID, category string) error {
	if s.Transactions == nil {
		return fmt.Errorf("no session store configured")
	}
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("category required")
	}
	return s.Transactions.UpdateCategory(ctx, transactionID, category)
}

func (s *AnalyzerService) resolveSession(ctx context.Context, sessionID string) (*repository.Session, error) {
	if s.Sessions == nil || s.Transactions == nil {
		return nil, fmt.Errorf("no session store configured")
	}
	var sess *repository.Session
	var err error
	if sessionID == "" {
		sess, err = s.Sessions.Latest(ctx)
	} else {
		sess, err = s.Sessions.Get(ctx, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("no session found")
	}
	return sess, nil
}

// mappingHints runs the fuzzy suggester for every canonical field the
// mapper left unmapped.
func mappingHints(m model.ColumnMapping, headers []string) map[string]string {
	unmapped := map[string]string{
		normalize.FieldDate:        m.Date,
		normalize.FieldDescription: m.Description,
		normalize.FieldAmount:      m.Amount,
		normalize.FieldAccount:     m.Account,
		normalize.FieldCurrency:    m.Currency,
	}
	var hints map[string]string
	for field, mapped := range unmapped {
		if mapped != "" {
			continue
		}
		if h, ok := normalize.Suggest(field, headers); ok {
			if hints == nil {
				hints = make(map[string]string)
			}
			hints[field] = h
		}
	}
	return hints
}

func (s *AnalyzerService) logf(msg string, kv ...any) {
	if s.Logger != nil {
		s.Logger.Info(msg, kv...)
	}
}

func toRow(t model.Transaction, sessionID string) repository.Transaction {
	return repository.Transaction{
		ID:               t.ID,
		SessionID:        sessionID,
		Date:             t.Date,
		Description:      t.Description,
		Amount:           t.Amount,
		Account:          t.Account,
		Currency:         t.Currency,
		Source:           t.Source,
		Category:         t.Category,
		InternalTransfer: t.InternalTransfer,
	}
}

func fromRow(r repository.Transaction) model.Transaction {
	return model.Transaction{
		ID:               r.ID,
		Date:             r.Date,
		Description:      r.Description,
		Amount:           r.Amount,
		Account:          r.Account,
		Currency:         r.Currency,
		Source:           r.Source,
		Category:         r.Category,
		InternalTransfer: r.InternalTransfer,
	}
}
