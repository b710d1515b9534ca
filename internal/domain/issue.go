package domain

// IssueCategory is the fixed taxonomy of detectable deficiencies.
type IssueCategory string

// Issue categories.
const (
	IssueMissingH1              IssueCategory = "missing-h1"
	IssueMultipleH1             IssueCategory = "multiple-h1"
	IssueHeadingSkip            IssueCategory = "heading-skip"
	IssueLowSemanticMarkup      IssueCategory = "low-semantic-markup"
	IssueMissingMetaDescription IssueCategory = "missing-meta-description"
	IssueThinContent            IssueCategory = "thin-content"
	IssueWallOfText             IssueCategory = "wall-of-text"
	IssueNoQuestionPhrasing     IssueCategory = "no-question-phrasing"
	IssueNoFAQ                  IssueCategory = "no-faq"
	IssueBuriedAnswer           IssueCategory = "buried-answer"
	IssueMissingAuthor          IssueCategory = "missing-author"
	IssueMissingDates           IssueCategory = "missing-dates"
	IssueStaleContent           IssueCategory = "stale-content"
	IssueNoCitations            IssueCategory = "no-citations"
	IssueMissingTrustPages      IssueCategory = "missing-trust-pages"
	IssueNoSchema               IssueCategory = "no-schema"
	IssueFewSchemaTypes         IssueCategory = "few-schema-types"
	IssueUnparseableHTML        IssueCategory = "unparseable-html"
)

// Severity of a detected issue.
type Severity string

// Severities, highest first.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight returns the numeric weight used for fix-plan ordering
// (critical=4 down to low=1).
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Issue is one detected deficiency on one page.
type Issue struct {
	Category    IssueCategory `json:"category"    db:"category"`
	Severity    Severity      `json:"severity"    db:"severity"`
	Message     string        `json:"message"     db:"message"`
	Remediation string        `json:"remediation" db:"remediation"`
}
