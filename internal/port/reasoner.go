package port

import (
	"context"

	"github.com/answerlens/answerlens/internal/domain"
)

// Reasoner abstracts the external reasoning service behind the two calls
// the pipeline makes. Both call sites receive pre-aggregated summaries,
// never raw HTML, and both must tolerate malformed or empty responses.
type Reasoner interface {
	// Classify determines the sensitive-topic flag, business category
	// and candidate competitor discovery queries for the target.
	Classify(ctx context.Context, sum domain.BusinessSummary) (*domain.Classification, error)

	// Synthesize produces the multi-section narrative report text from
	// the reduced audit context.
	Synthesize(ctx context.Context, rc domain.ReportContext) (string, error)
}
