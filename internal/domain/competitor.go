package domain

// Competitor is a discovered candidate competitor site. Competitors are
// bounded per audit and hold distinct normalized domains, none equal to
// the target's domain.
type Competitor struct {
	AuditID string  `json:"audit_id" db:"audit_id"`
	Domain  string  `json:"domain"   db:"domain"`
	URL     string  `json:"url"      db:"url"`
	Rank    int     `json:"rank"     db:"rank"` // discovery rank, 1 = best
	Score   float64 `json:"score"    db:"score"`
}

// ComparativeResult is one row of the comparative ranking: the target or
// one competitor with its aggregated scores and rank position. Rows are
// recomputed fully on every scoring pass, never partially updated.
type ComparativeResult struct {
	AuditID    string          `json:"audit_id"  db:"audit_id"`
	Entity     string          `json:"entity"    db:"entity"` // "target" or competitor domain
	IsTarget   bool            `json:"is_target" db:"is_target"`
	Scores     CategoryScores  `json:"scores"`
	Composite  float64         `json:"composite" db:"composite"`
	Rank       int             `json:"rank"      db:"rank"` // 1 = best
	Strengths  []ScoreCategory `json:"strengths"`
	Weaknesses []ScoreCategory `json:"weaknesses"`
}
