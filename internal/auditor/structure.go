package auditor

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// Structure sub-weights: single H1 40, clean heading hierarchy 30,
// semantic element usage 30.
const (
	structureH1Weight        = 40.0
	structureHierarchyWeight = 30.0
	structureSemanticWeight  = 30.0
)

// StructureAnalyzer checks the page's heading and markup structure.
type StructureAnalyzer struct{}

func (a *StructureAnalyzer) Name() string { return "structure" }
func (a *StructureAnalyzer) Category() domain.ScoreCategory { return domain.CategoryStructure }

func (a *StructureAnalyzer) Analyze(in port.PageInput) (float64, []domain.Issue) {
	if in.Doc == nil {
		return 0, nil
	}

	var score float64
	var issues []domain.Issue

	switch h1s := in.Doc.Find("h1").Length(); {
	case h1s == 1:
		score += structureH1Weight
	case h1s == 0:
		issues = append(issues, domain.Issue{
			Category:    domain.IssueMissingH1,
			Severity:    domain.SeverityCritical,
			Message:     "The page has no H1 heading.",
			Remediation: "Add exactly one H1 that states the page's main topic.",
		})
	default:
		score += structureH1Weight / 2
		issues = append(issues, domain.Issue{
			Category:    domain.IssueMultipleH1,
			Severity:    domain.SeverityMedium,
			Message:     "The page has " + strconv.Itoa(h1s) + " H1 headings.",
			Remediation: "Keep a single H1 and demote the others to H2.",
		})
	}

	if headingHierarchyClean(in.Doc) {
		score += structureHierarchyWeight
	} else {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueHeadingSkip,
			Severity:    domain.SeverityMedium,
			Message:     "Heading levels skip (e.g. H1 followed directly by H3).",
			Remediation: "Nest headings without skipping levels so the outline stays machine-readable.",
		})
	}

	ratio := semanticRatio(in.Doc)
	score += structureSemanticWeight * ratio
	if ratio < 0.1 {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueLowSemanticMarkup,
			Severity:    domain.SeverityLow,
			Message:     "Content is wrapped almost entirely in generic containers.",
			Remediation: "Use semantic HTML5 elements (main, article, section, nav) instead of bare divs.",
		})
	}

	return domain.Round1(score), issues
}

// headingHierarchyClean walks headings in document order and reports
// whether any level jumps by more than one.
func headingHierarchyClean(doc *goquery.Document) bool {
	clean := true
	last := 0
	doc.Find("h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		level := int(s.Nodes[0].Data[1] - '0')
		if last > 0 && level > last+1 {
			clean = false
		}
		last = level
	})
	return clean
}

// semanticRatio is the share of semantic HTML5 containers among all
// block containers on the page, capped at 1.
func semanticRatio(doc *goquery.Document) float64 {
	semantic := doc.Find("main,article,section,header,footer,nav,aside,figure").Length()
	generic := doc.Find("div").Length()
	if semantic+generic == 0 {
		return 0
	}
	ratio := float64(semantic) / float64(semantic+generic)
	// A handful of semantic landmarks among many divs is normal; scale
	// so that 25% semantic already earns full credit.
	if ratio*4 > 1 {
		return 1
	}
	return ratio * 4
}
