package auditor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// Content sub-weights: meta description 15, paragraph readability 25,
// conversational phrasing 20, FAQ structure 15, inverted pyramid 25.
const (
	contentMetaWeight      = 15.0
	contentParagraphWeight = 25.0
	contentQuestionWeight  = 20.0
	contentFAQWeight       = 15.0
	contentPyramidWeight   = 25.0

	thinContentWords   = 150
	longParagraphWords = 120
	foldWordTarget     = 40
)

var questionRe = regexp.MustCompile(`(?i)\b(how|what|why|when|where|who|which|can|should|does|is)\b[^.!?]{3,80}\?`)
var faqHeadingRe = regexp.MustCompile(`(?i)\bfaq\b|frequently asked`)

// ContentAnalyzer checks readability and answer-engine friendliness of
// the page's text.
type ContentAnalyzer struct{}

func (a *ContentAnalyzer) Name() string { return "content" }
func (a *ContentAnalyzer) Category() domain.ScoreCategory { return domain.CategoryContent }

func (a *ContentAnalyzer) Analyze(in port.PageInput) (float64, []domain.Issue) {
	if in.Doc == nil {
		return 0, nil
	}

	var score float64
	var issues []domain.Issue

	desc := strings.TrimSpace(in.Doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if desc == "" {
		desc = strings.TrimSpace(in.Doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}
	if desc != "" {
		score += contentMetaWeight
	} else {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueMissingMetaDescription,
			Severity:    domain.SeverityHigh,
			Message:     "The page has no meta description.",
			Remediation: "Add a meta description that answers the page's core question in one or two sentences.",
		})
	}

	words := len(strings.Fields(in.Text))
	if words < thinContentWords {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueThinContent,
			Severity:    domain.SeverityHigh,
			Message:     "The page carries very little text content.",
			Remediation: "Expand the page so it fully answers the questions it targets.",
		})
	} else {
		longRatio := longParagraphRatio(in.Doc)
		score += contentParagraphWeight * (1 - longRatio)
		if longRatio > 0.5 {
			issues = append(issues, domain.Issue{
				Category:    domain.IssueWallOfText,
				Severity:    domain.SeverityMedium,
				Message:     "Most paragraphs run unbroken past comfortable reading length.",
				Remediation: "Split long paragraphs and add subheadings or lists.",
			})
		}
	}

	if questionRe.MatchString(in.Text) || questionRe.MatchString(headingText(in.Doc)) {
		score += contentQuestionWeight
	} else {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueNoQuestionPhrasing,
			Severity:    domain.SeverityMedium,
			Message:     "No conversational or question-targeting phrasing found.",
			Remediation: "Phrase headings the way users ask questions (how, what, why).",
		})
	}

	if hasFAQ(in.Doc) {
		score += contentFAQWeight
	} else {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueNoFAQ,
			Severity:    domain.SeverityLow,
			Message:     "No FAQ-style structure found.",
			Remediation: "Add a question-and-answer section for the topics users ask about most.",
		})
	}

	if answerAboveFold(in.Doc) {
		score += contentPyramidWeight
	} else {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueBuriedAnswer,
			Severity:    domain.SeverityMedium,
			Message:     "The key answer does not appear near the top of the page.",
			Remediation: "Lead with the direct answer, then expand on detail (inverted pyramid).",
		})
	}

	return domain.Round1(score), issues
}

// longParagraphRatio is the share of paragraphs exceeding comfortable
// reading length.
func longParagraphRatio(doc *goquery.Document) float64 {
	total, long := 0, 0
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		n := len(strings.Fields(s.Text()))
		if n == 0 {
			return
		}
		total++
		if n > longParagraphWords {
			long++
		}
	})
	if total == 0 {
		return 1
	}
	return float64(long) / float64(total)
}

func headingText(doc *goquery.Document) string {
	var parts []string
	doc.Find("h1,h2,h3").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(s.Text()))
	})
	return strings.Join(parts, " ")
}

func hasFAQ(doc *goquery.Document) bool {
	if doc.Find(`[itemtype*="FAQPage"],details summary`).Length() > 0 {
		return true
	}
	found := false
	doc.Find("h1,h2,h3,h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if faqHeadingRe.MatchString(s.Text()) {
			found = true
			return false
		}
		return true
	})
	return found
}

// answerAboveFold checks that the first couple of paragraphs already
// carry a substantive answer.
func answerAboveFold(doc *goquery.Document) bool {
	words := 0
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		words += len(strings.Fields(s.Text()))
		return i < 1 // first two paragraphs
	})
	return words >= foldWordTarget
}
