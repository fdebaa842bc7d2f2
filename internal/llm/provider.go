// Package llm abstracts the text-classification service behind a narrow
// request/response interface so orchestration stays testable with fakes.
package llm

import "context"

// Provider sends one system+user prompt pair to a model and returns its
// free-form text reply. Implementations must bound the call with a timeout;
// the caller treats any error as a batch-level fault, never as fatal.
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
