// Package classify drives the batched categorization of normalized
// transactions through an LLM provider. Batches run sequentially; a failed
// batch degrades to the fallback category and the run continues.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mbeier/kontoscan/internal/llm"
	"github.com/mbeier/kontoscan/internal/model"
)

// DefaultBatchSize balances request count against reply quality; the useful
// range is roughly 1-50.
const DefaultBatchSize = 10

// Options configures one orchestration run.
type Options struct {
	// Prompt is the category specification sent as the system prompt.
	Prompt string
	// BatchSize caps how many transactions share one request;
	// DefaultBatchSize when <= 0.
	BatchSize int
}

// Progress is emitted after every finished batch.
type Progress struct {
	Completed    int
	Total        int
	Batch        int
	TotalBatches int
}

// Result reports how a run ended. A cancelled run leaves every
// not-yet-attempted transaction at the Uncategorized sentinel.
type Result struct {
	Cancelled     bool
	Classified    int
	Remaining     int
	FailedBatches int
	TotalBatches  int
}

// Orchestrator mutates transaction categories in place. The caller owns the
// collection exclusively for the duration of Run; no reference is retained.
type Orchestrator struct {
	Provider llm.Provider
	Logger   *log.Logger
	// OnProgress, when set, receives an event after each batch.
	OnProgress func(Progress)
}

// Run assigns a category to every transaction: flagged internal transfers
// get the reserved label without touching the service, the rest are
// classified in consecutive batches preserving original order. Cancellation
// is checked before each batch; in-flight calls are not interrupted.
func (o *Orchestrator) Run(ctx context.Context, txs []model.Transaction, opts Options) Result {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for i := range txs {
		if txs[i].InternalTransfer {
			txs[i].Category = model.CategoryInternalTransfer
		}
	}

	var pending []int
	for i := range txs {
		if !txs[i].InternalTransfer {
			pending = append(pending, i)
		}
	}

	total := len(pending)
	totalBatches := (total + batchSize - 1) / batchSize
	res := Result{TotalBatches: totalBatches}
	if total == 0 {
		return res
	}

	for start := 0; start < total; start += batchSize {
		if ctx.Err() != nil {
			res.Cancelled = true
			res.Remaining = total - res.Classified
			o.logf("classification cancelled", "classified", res.Classified, "remaining", res.Remaining)
			return res
		}

		end := start + batchSize
		if end > total {
			end = total
		}
		batch := pending[start:end]
		batchNum := start/batchSize + 1

		categories, fault := o.classifyBatch(ctx, txs, batch, opts.Prompt)
		if fault {
			res.FailedBatches++
		}
		// Pad a short reply with the fallback label, drop any excess.
		for len(categories) < len(batch) {
			categories = append(categories, model.CategoryFallback)
		}
		categories = categories[:len(batch)]

		for k, idx := range batch {
			txs[idx].Category = categories[k]
		}
		res.Classified = end

		if o.OnProgress != nil {
			o.OnProgress(Progress{
				Completed:    end,
				Total:        total,
				Batch:        batchNum,
				TotalBatches: totalBatches,
			})
		}
	}
	return res
}

// classifyBatch returns the parsed category list. fault is true when the
// service call failed or its reply carried no usable assignment at all; the
// caller then falls back for the whole batch.
func (o *Orchestrator) classifyBatch(ctx context.Context, txs []model.Transaction, batch []int, prompt string) (categories []string, fault bool) {
	var list strings.Builder
	for k, idx := range batch {
		fmt.Fprintf(&list, "%d. %s, %s\n", k+1, txs[idx].Account, txs[idx].Description)
	}

	user := fmt.Sprintf(
		"Hier sind %d Transaktionen. Gib für jede die Kategorie zurück.\n\n%s\nAntworte im Format:\n1. [Kategorie]\n2. [Kategorie]\n3. [Kategorie]\n...",
		len(batch), strings.TrimRight(list.String(), "\n"),
	)

	reply, err := o.Provider.Complete(ctx, prompt, user)
	if err != nil {
		o.logf("batch classification failed", "size", len(batch), "err", err)
		return nil, true
	}
	categories = ParseNumberedList(reply)
	if len(categories) == 0 {
		o.logf("unusable classification reply", "size", len(batch))
		return nil, true
	}
	return categories, false
}

func (o *Orchestrator) logf(msg string, kv ...any) {
	if o.Logger != nil {
		o.Logger.Warn(msg, kv...)
	}
}
