package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// Synthesizer produces the narrative report. The reasoning service is
// the primary path; when it fails, a templated report restating the
// scores and fix plan is produced instead of failing the audit.
type Synthesizer struct {
	reasoner port.Reasoner
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(reasoner port.Reasoner) *Synthesizer {
	return &Synthesizer{reasoner: reasoner}
}

// Synthesize returns the narrative report for the reduced context.
// It never returns an error: degraded output is the fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, rc domain.ReportContext) *domain.Report {
	rep := &domain.Report{
		AuditID:   rc.Audit.ID,
		CreatedAt: time.Now(),
	}

	if s.reasoner != nil {
		narrative, err := s.reasoner.Synthesize(ctx, rc)
		if err == nil && strings.TrimSpace(narrative) != "" {
			rep.Narrative = narrative
			return rep
		}
		slog.Warn("report synthesis degraded to template", "audit_id", rc.Audit.ID, "error", err)
	}

	rep.Narrative = TemplateReport(rc)
	rep.Degraded = true
	return rep
}

// TemplateReport builds the minimal deterministic report used when the
// reasoning service is unreachable.
func TemplateReport(rc domain.ReportContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Readiness Audit: %s\n\n", rc.Audit.Domain)

	b.WriteString("## Overall Readiness\n\n")
	if len(rc.Ranking) > 0 {
		for _, row := range rc.Ranking {
			if row.IsTarget {
				fmt.Fprintf(&b, "Your site scored **%.1f/100** overall (structure %.1f, content %.1f, authority %.1f, schema %.1f), ranking #%d of %d sites compared.\n\n",
					row.Composite, row.Scores.Structure, row.Scores.Content, row.Scores.Authority, row.Scores.Schema, row.Rank, len(rc.Ranking))
			}
		}
	} else {
		b.WriteString("No pages could be scored for this site.\n\n")
	}
	if rc.Classification != nil && rc.Classification.Category != domain.CategoryUnknown {
		fmt.Fprintf(&b, "Detected business category: %s.\n\n", rc.Classification.Category)
	}

	b.WriteString("## How You Compare\n\n")
	if len(rc.Ranking) > 1 {
		b.WriteString("| Rank | Site | Score |\n|---|---|---|\n")
		for _, row := range rc.Ranking {
			name := row.Entity
			if row.IsTarget {
				name = row.Entity + " (you)"
			}
			fmt.Fprintf(&b, "| %d | %s | %.1f |\n", row.Rank, name, row.Composite)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No competitors could be audited for comparison.\n\n")
	}

	b.WriteString("## Recommended Next Steps\n\n")
	if len(rc.FixPlan) == 0 {
		b.WriteString("No outstanding issues were detected.\n")
	}
	max := len(rc.FixPlan)
	if max > 10 {
		max = 10
	}
	for i := 0; i < max; i++ {
		item := rc.FixPlan[i]
		fmt.Fprintf(&b, "%d. **%s** (%s, %s) — %s\n", i+1, item.Title, strings.ToUpper(string(item.Priority)), item.URL, item.Description)
	}

	return b.String()
}
