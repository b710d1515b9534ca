package port

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/answerlens/answerlens/internal/domain"
)

// PageInput is the fixed analyzer input: a pre-fetched, pre-parsed page.
// Doc is nil when the HTML could not be parsed; analyzers must degrade
// the affected sub-checks to zero instead of failing.
type PageInput struct {
	URL  string
	Doc  *goquery.Document
	Text string // visible text with scripts/styles stripped
}

// Analyzer is a pluggable page heuristic (Strategy Pattern). Each
// analyzer owns one score category, performs no network access, and
// emits issues for every failed sub-check.
type Analyzer interface {
	// Name returns the unique name of this analyzer.
	Name() string

	// Category returns the score category this analyzer contributes to.
	Category() domain.ScoreCategory

	// Analyze scores the page 0-100 and reports detected issues.
	Analyze(in PageInput) (float64, []domain.Issue)
}

// AnalyzerEngine runs a fixed, ordered set of analyzers over a page.
type AnalyzerEngine struct {
	analyzers []Analyzer
}

// NewAnalyzerEngine creates an engine; analyzer order is preserved so
// issue ordering stays deterministic.
func NewAnalyzerEngine(analyzers ...Analyzer) *AnalyzerEngine {
	return &AnalyzerEngine{analyzers: analyzers}
}

// RunAll executes every analyzer and returns per-category scores plus
// the combined issue list in analyzer order.
func (e *AnalyzerEngine) RunAll(in PageInput) (domain.CategoryScores, []domain.Issue) {
	var scores domain.CategoryScores
	var issues []domain.Issue
	for _, a := range e.analyzers {
		score, found := a.Analyze(in)
		switch a.Category() {
		case domain.CategoryStructure:
			scores.Structure = score
		case domain.CategoryContent:
			scores.Content = score
		case domain.CategoryAuthority:
			scores.Authority = score
		case domain.CategorySchema:
			scores.Schema = score
		}
		issues = append(issues, found...)
	}
	return scores, issues
}

// Names returns the registered analyzer names in run order.
func (e *AnalyzerEngine) Names() []string {
	names := make([]string, 0, len(e.analyzers))
	for _, a := range e.analyzers {
		names = append(names, a.Name())
	}
	return names
}
