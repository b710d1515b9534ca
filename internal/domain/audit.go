package domain

import "time"

// Audit represents one full readiness audit run for a target URL.
// It is owned by the orchestrator: created on request, mutated only by
// stage transitions, and immutable once it reaches a terminal status.
type Audit struct {
	ID           string     `json:"id"             db:"id"`
	TargetURL    string     `json:"target_url"     db:"target_url"`
	Domain       string     `json:"domain"         db:"domain"`
	Status       string     `json:"status"         db:"status"` // pending, running, completed, failed
	Progress     int        `json:"progress"       db:"progress"`
	Sensitive    bool       `json:"sensitive"      db:"sensitive"`
	Category     string     `json:"category"       db:"category"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at"     db:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"   db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Audit status constants.
const (
	AuditStatusPending   = "pending"
	AuditStatusRunning   = "running"
	AuditStatusCompleted = "completed"
	AuditStatusFailed    = "failed"
)

// CategoryUnknown is recorded when the classifier is unreachable or
// returns unusable output.
const CategoryUnknown = "unknown"

// Terminal reports whether the audit can no longer change.
func (a *Audit) Terminal() bool {
	return a.Status == AuditStatusCompleted || a.Status == AuditStatusFailed
}

// CrawledURL is a discovered, normalized URL belonging to one audit.
// Immutable once created; unique per audit after normalization.
type CrawledURL struct {
	AuditID    string    `json:"audit_id"   db:"audit_id"`
	URL        string    `json:"url"        db:"url"`
	Depth      int       `json:"depth"      db:"depth"`
	HTML       bool      `json:"html"       db:"html"`
	Reachable  bool      `json:"reachable"  db:"reachable"`
	Discovered time.Time `json:"discovered" db:"discovered"`
}

// AuditResults is the consumer-facing contract of a completed audit:
// composite scores, the ranked comparative table, per-page issues, the
// ordered fix plan and the narrative report.
type AuditResults struct {
	Audit       *Audit              `json:"audit"`
	Pages       []PageAudit         `json:"pages"`
	Competitors []Competitor        `json:"competitors"`
	Ranking     []ComparativeResult `json:"ranking"`
	FixPlan     []FixPlanItem       `json:"fix_plan"`
	Report      *Report             `json:"report,omitempty"`
}
