package domain

import (
	"math"
	"time"
)

// ScoreCategory identifies one of the four heuristic categories a page is
// scored against.
type ScoreCategory string

// Score categories.
const (
	CategoryStructure ScoreCategory = "structure"
	CategoryContent   ScoreCategory = "content"
	CategoryAuthority ScoreCategory = "authority"
	CategorySchema    ScoreCategory = "schema"
)

// ScoreCategories lists the categories in their fixed evaluation order.
var ScoreCategories = []ScoreCategory{
	CategoryStructure,
	CategoryContent,
	CategoryAuthority,
	CategorySchema,
}

// CategoryScores holds the four per-category scores for a page or an
// aggregated domain, each in the 0-100 range.
type CategoryScores struct {
	Structure float64 `json:"structure" db:"structure"`
	Content   float64 `json:"content"   db:"content"`
	Authority float64 `json:"authority" db:"authority"`
	Schema    float64 `json:"schema"    db:"schema"`
}

// Composite is the unweighted mean of the four category scores, rounded
// to one decimal.
func (s CategoryScores) Composite() float64 {
	return Round1((s.Structure + s.Content + s.Authority + s.Schema) / 4)
}

// Get returns the score for a single category.
func (s CategoryScores) Get(c ScoreCategory) float64 {
	switch c {
	case CategoryStructure:
		return s.Structure
	case CategoryContent:
		return s.Content
	case CategoryAuthority:
		return s.Authority
	case CategorySchema:
		return s.Schema
	}
	return 0
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// PageAudit is the heuristic result for one URL, target or competitor.
// Never mutated after creation; re-audits create new records.
type PageAudit struct {
	ID        string         `json:"id"        db:"id"`
	AuditID   string         `json:"audit_id"  db:"audit_id"`
	Entity    string         `json:"entity"    db:"entity"` // "target" or competitor domain
	URL       string         `json:"url"       db:"url"`
	Scores    CategoryScores `json:"scores"`
	Composite float64        `json:"composite" db:"composite"`
	Issues    []Issue        `json:"issues"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// EntityTarget marks page audits belonging to the audited site itself.
const EntityTarget = "target"
