package auditor

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// Schema sub-weights: any structured data present 60, plus 20 per
// distinct recognized type, capped at two types.
const (
	schemaPresenceWeight = 60.0
	schemaTypeWeight     = 20.0
	schemaTypeCap        = 2
)

// recognizedSchemaTypes are the schema.org types that count toward the
// score.
var recognizedSchemaTypes = map[string]bool{
	"Organization":   true,
	"WebSite":        true,
	"WebPage":        true,
	"Article":        true,
	"BlogPosting":    true,
	"NewsArticle":    true,
	"Product":        true,
	"FAQPage":        true,
	"HowTo":          true,
	"BreadcrumbList": true,
	"LocalBusiness":  true,
	"Person":         true,
	"Review":         true,
}

// SchemaAnalyzer checks for structured-data blocks (JSON-LD and
// microdata).
type SchemaAnalyzer struct{}

func (a *SchemaAnalyzer) Name() string { return "schema" }
func (a *SchemaAnalyzer) Category() domain.ScoreCategory { return domain.CategorySchema }

func (a *SchemaAnalyzer) Analyze(in port.PageInput) (float64, []domain.Issue) {
	if in.Doc == nil {
		return 0, nil
	}

	types := schemaTypes(in.Doc)
	if len(types) == 0 {
		return 0, []domain.Issue{{
			Category:    domain.IssueNoSchema,
			Severity:    domain.SeverityHigh,
			Message:     "The page carries no structured data.",
			Remediation: "Add JSON-LD structured data describing the page and the organization behind it.",
		}}
	}

	score := schemaPresenceWeight
	recognized := 0
	for _, t := range types {
		if recognizedSchemaTypes[t] {
			recognized++
		}
	}
	if recognized > schemaTypeCap {
		recognized = schemaTypeCap
	}
	score += schemaTypeWeight * float64(recognized)

	var issues []domain.Issue
	if recognized < schemaTypeCap {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueFewSchemaTypes,
			Severity:    domain.SeverityLow,
			Message:     "Only one recognized structured-data type found.",
			Remediation: "Describe more entities (organization, breadcrumbs, FAQ) with additional schema types.",
		})
	}

	return domain.Round1(score), issues
}

// schemaTypes collects distinct @type values from JSON-LD blocks and
// itemtype attributes, sorted for determinism. Malformed blocks are
// skipped.
func schemaTypes(doc *goquery.Document) []string {
	seen := map[string]bool{}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := s.Text()
		if strings.TrimSpace(raw) == "" {
			return
		}
		var payload interface{}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return
		}
		collectTypes(payload, seen)
	})

	doc.Find("[itemtype]").Each(func(_ int, s *goquery.Selection) {
		itemtype, _ := s.Attr("itemtype")
		if i := strings.LastIndex(itemtype, "/"); i >= 0 {
			itemtype = itemtype[i+1:]
		}
		if itemtype != "" {
			seen[itemtype] = true
		}
	})

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// collectTypes walks a decoded JSON-LD value, including @graph arrays
// and nested objects, gathering every @type.
func collectTypes(v interface{}, seen map[string]bool) {
	switch val := v.(type) {
	case map[string]interface{}:
		if t, ok := val["@type"]; ok {
			switch typed := t.(type) {
			case string:
				seen[typed] = true
			case []interface{}:
				for _, item := range typed {
					if s, ok := item.(string); ok {
						seen[s] = true
					}
				}
			}
		}
		for _, child := range val {
			collectTypes(child, seen)
		}
	case []interface{}:
		for _, item := range val {
			collectTypes(item, seen)
		}
	}
}
