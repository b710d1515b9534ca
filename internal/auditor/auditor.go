// Package auditor scores a single page against structural, content,
// authority and structured-data heuristics. Everything here is a pure
// function of pre-fetched page content; no network access happens in
// this package.
package auditor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// PageAuditor parses HTML and runs the analyzer engine over it.
type PageAuditor struct {
	engine *port.AnalyzerEngine
}

// New creates a page auditor with the four standard analyzers in their
// fixed evaluation order.
func New() *PageAuditor {
	return &PageAuditor{
		engine: port.NewAnalyzerEngine(
			&StructureAnalyzer{},
			&ContentAnalyzer{},
			&AuthorityAnalyzer{},
			&SchemaAnalyzer{},
		),
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Parse turns raw HTML into the fixed analyzer input. Unparseable or
// empty documents yield a nil Doc; analyzers degrade accordingly.
func Parse(rawURL, body string) port.PageInput {
	in := port.PageInput{URL: rawURL}
	if strings.TrimSpace(body) == "" {
		return in
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return in
	}
	// JSON-LD blocks survive; the schema analyzer reads them later.
	doc.Find(`script:not([type="application/ld+json"]),noscript,style`).Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	in.Doc = doc

	// Gather visible text from content-bearing elements only, so
	// surviving JSON-LD payloads never leak into word counts.
	var parts []string
	doc.Find("h1,h2,h3,h4,h5,h6,p,li,td,blockquote,figcaption").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	in.Text = strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.Join(parts, " "), " "))
	return in
}

// Audit scores one page and returns its category scores and issues.
// A page with no parseable document scores zero everywhere and carries
// a single unparseable-html issue.
func (p *PageAuditor) Audit(rawURL, body string) (domain.CategoryScores, []domain.Issue) {
	return p.AuditParsed(Parse(rawURL, body))
}

// AuditParsed scores an already parsed page, for callers that need the
// parse result themselves and should not pay for a second one.
func (p *PageAuditor) AuditParsed(in port.PageInput) (domain.CategoryScores, []domain.Issue) {
	if in.Doc == nil || in.Text == "" {
		return domain.CategoryScores{}, []domain.Issue{{
			Category:    domain.IssueUnparseableHTML,
			Severity:    domain.SeverityCritical,
			Message:     "The page has no parseable HTML content.",
			Remediation: "Serve a valid HTML document with visible text content.",
		}}
	}
	return p.engine.RunAll(in)
}

// Title extracts the page title for summaries.
func Title(in port.PageInput) string {
	if in.Doc == nil {
		return ""
	}
	return strings.TrimSpace(in.Doc.Find("title").First().Text())
}
