// Package report derives the deterministic fix plan and synthesizes
// the narrative audit report.
package report

import (
	"sort"

	"github.com/answerlens/answerlens/internal/domain"
)

// fixAdvice is the fixed per-category remediation catalog. Weight is
// the category's impact weight, the secondary fix-plan ordering key.
type fixAdvice struct {
	Title  string
	Impact string
	Weight int
}

var fixCatalog = map[domain.IssueCategory]fixAdvice{
	domain.IssueUnparseableHTML:        {"Serve valid HTML", "Unblocks every other check on the page", 10},
	domain.IssueMissingH1:              {"Add a single H1 heading", "Largest single structure gain; anchors the page topic for crawlers and answer engines", 10},
	domain.IssueNoSchema:               {"Add structured data", "Makes the page eligible for rich results and machine answers", 9},
	domain.IssueMissingMetaDescription: {"Write a meta description", "Controls the snippet search and answer engines quote", 8},
	domain.IssueThinContent:            {"Expand the page content", "Thin pages rarely surface in answers at all", 8},
	domain.IssueMissingAuthor:          {"Attribute content to an author", "Authorship is a core trust signal for high-scrutiny ranking", 7},
	domain.IssueBuriedAnswer:           {"Lead with the answer", "Answer engines quote what appears before the fold", 6},
	domain.IssueMissingDates:           {"Expose publish and update dates", "Dated content is preferred for freshness-sensitive queries", 6},
	domain.IssueStaleContent:           {"Refresh stale content", "Old dates suppress freshness-sensitive rankings", 6},
	domain.IssueHeadingSkip:            {"Fix the heading outline", "A clean outline keeps sections individually quotable", 5},
	domain.IssueNoCitations:            {"Cite authoritative sources", "Outbound citations back up expertise claims", 5},
	domain.IssueWallOfText:             {"Break up long paragraphs", "Scannable text gets extracted into answers more often", 4},
	domain.IssueNoQuestionPhrasing:     {"Target question phrasing", "Matches how users ask assistants and search", 4},
	domain.IssueMultipleH1:             {"Reduce to one H1", "Removes topic ambiguity for crawlers", 4},
	domain.IssueFewSchemaTypes:         {"Add more schema types", "Each recognized entity widens rich-result eligibility", 3},
	domain.IssueNoFAQ:                  {"Add an FAQ section", "FAQ blocks map directly onto answer-engine output", 3},
	domain.IssueMissingTrustPages:      {"Link trust pages", "About/contact/privacy links are baseline trust markers", 2},
	domain.IssueLowSemanticMarkup:      {"Use semantic containers", "Helps parsers separate content from chrome", 2},
}

// impactWeight returns the fixed impact weight for a category; unknown
// categories sink to the bottom.
func impactWeight(c domain.IssueCategory) int {
	return fixCatalog[c].Weight
}

// BuildFixPlan derives the prioritized fix plan from all issues across
// the target's page audits. Ordering is stable and reproducible:
// severity weight descending, category impact weight descending, page
// URL ascending. Duplicate (category, URL) pairs collapse to one item.
func BuildFixPlan(auditID string, targetPages []domain.PageAudit) []domain.FixPlanItem {
	type key struct {
		cat domain.IssueCategory
		url string
	}
	seen := map[key]bool{}
	var items []domain.FixPlanItem

	for _, page := range targetPages {
		for _, issue := range page.Issues {
			k := key{issue.Category, page.URL}
			if seen[k] {
				continue
			}
			seen[k] = true
			advice := fixCatalog[issue.Category]
			title := advice.Title
			if title == "" {
				title = string(issue.Category)
			}
			items = append(items, domain.FixPlanItem{
				AuditID:     auditID,
				Title:       title,
				Priority:    issue.Severity,
				Category:    issue.Category,
				URL:         page.URL,
				Description: issue.Remediation,
				Impact:      advice.Impact,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if w1, w2 := items[i].Priority.Weight(), items[j].Priority.Weight(); w1 != w2 {
			return w1 > w2
		}
		if w1, w2 := impactWeight(items[i].Category), impactWeight(items[j].Category); w1 != w2 {
			return w1 > w2
		}
		return items[i].URL < items[j].URL
	})
	return items
}
