package domain

import "time"

// FixPlanItem is one actionable recommendation derived deterministically
// from the issues found across the target's page audits.
type FixPlanItem struct {
	AuditID     string        `json:"audit_id"    db:"audit_id"`
	Title       string        `json:"title"       db:"title"`
	Priority    Severity      `json:"priority"    db:"priority"`
	Category    IssueCategory `json:"category"    db:"category"`
	URL         string        `json:"url"         db:"url"`
	Description string        `json:"description" db:"description"`
	Impact      string        `json:"impact"      db:"impact"`
}

// Report is the narrative audit report. Degraded reports are produced
// from a fixed template when the reasoning service is unreachable.
type Report struct {
	AuditID   string    `json:"audit_id"  db:"audit_id"`
	Narrative string    `json:"narrative" db:"narrative"`
	Degraded  bool      `json:"degraded"  db:"degraded"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Classification is the output of the external intelligence classifier:
// a sensitive-topic flag, a business category and candidate competitor
// discovery queries.
type Classification struct {
	Sensitive bool     `json:"sensitive"`
	Category  string   `json:"category"`
	Queries   []string `json:"queries"`
}

// PageSummary is a bounded per-page digest used when talking to the
// reasoning service; raw HTML never crosses that boundary.
type PageSummary struct {
	URL        string   `json:"url"`
	Title      string   `json:"title,omitempty"`
	Composite  float64  `json:"composite"`
	TopIssues  []string `json:"top_issues,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	WordCount  int      `json:"word_count,omitempty"`
	SchemaSeen bool     `json:"schema_seen"`
}

// BusinessSummary is the classifier input: the target URL plus digests
// of its audited pages.
type BusinessSummary struct {
	TargetURL string        `json:"target_url"`
	Domain    string        `json:"domain"`
	Pages     []PageSummary `json:"pages"`
	Keywords  []string      `json:"keywords,omitempty"`
}

// CompetitorSummary is a per-competitor digest for report synthesis.
type CompetitorSummary struct {
	Domain    string         `json:"domain"`
	Scores    CategoryScores `json:"scores"`
	Composite float64        `json:"composite"`
}

// ReportContext is the reduced context handed to the report synthesizer.
// Each auxiliary signal is independently optional; an absent signal must
// not block report generation.
type ReportContext struct {
	Audit          *Audit              `json:"audit"`
	Classification *Classification     `json:"classification,omitempty"`
	Target         BusinessSummary     `json:"target"`
	Competitors    []CompetitorSummary `json:"competitors,omitempty"`
	Ranking        []ComparativeResult `json:"ranking,omitempty"`
	FixPlan        []FixPlanItem       `json:"fix_plan,omitempty"`

	// Optional auxiliary signals.
	PerformanceNote string `json:"performance_note,omitempty"`
	KeywordNote     string `json:"keyword_note,omitempty"`
	BacklinkNote    string `json:"backlink_note,omitempty"`
}
