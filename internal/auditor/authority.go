package auditor

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// Authority (E-E-A-T) sub-weights: identifiable author 30,
// machine-readable dates 25, outbound citations 25, trust pages 20.
const (
	authorityAuthorWeight    = 30.0
	authorityDatesWeight     = 25.0
	authorityCitationsWeight = 25.0
	authorityTrustWeight     = 20.0

	staleAfter        = 2 * 365 * 24 * time.Hour
	fullCitationCount = 3
)

var bylineRe = regexp.MustCompile(`(?i)\bby\s+[A-Z][a-z]+(\s+[A-Z][a-z]+)?\b|written by|reviewed by`)

// AuthorityAnalyzer checks experience/expertise/authority/trust signals.
type AuthorityAnalyzer struct{}

func (a *AuthorityAnalyzer) Name() string { return "authority" }
func (a *AuthorityAnalyzer) Category() domain.ScoreCategory { return domain.CategoryAuthority }

func (a *AuthorityAnalyzer) Analyze(in port.PageInput) (float64, []domain.Issue) {
	if in.Doc == nil {
		return 0, nil
	}

	var score float64
	var issues []domain.Issue

	if hasAuthor(in.Doc, in.Text) {
		score += authorityAuthorWeight
	} else {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueMissingAuthor,
			Severity:    domain.SeverityHigh,
			Message:     "No identifiable author on the page.",
			Remediation: "Attribute the content to a named author with credentials.",
		})
	}

	switch published, stale := publishDate(in.Doc); {
	case published.IsZero():
		issues = append(issues, domain.Issue{
			Category:    domain.IssueMissingDates,
			Severity:    domain.SeverityMedium,
			Message:     "No machine-readable publish or update date found.",
			Remediation: "Expose publish and modified dates via <time datetime> or article meta tags.",
		})
	case stale:
		score += authorityDatesWeight / 2
		issues = append(issues, domain.Issue{
			Category:    domain.IssueStaleContent,
			Severity:    domain.SeverityMedium,
			Message:     "The page was last dated more than two years ago.",
			Remediation: "Review, refresh and re-date the content.",
		})
	default:
		score += authorityDatesWeight
	}

	switch citations := outboundCitations(in.Doc, in.URL); {
	case citations >= fullCitationCount:
		score += authorityCitationsWeight
	case citations > 0:
		score += authorityCitationsWeight * 0.6
	default:
		issues = append(issues, domain.Issue{
			Category:    domain.IssueNoCitations,
			Severity:    domain.SeverityMedium,
			Message:     "The page cites no external sources.",
			Remediation: "Link claims to authoritative external sources.",
		})
	}

	trust := trustPageShare(in.Doc)
	score += authorityTrustWeight * trust
	if trust == 0 {
		issues = append(issues, domain.Issue{
			Category:    domain.IssueMissingTrustPages,
			Severity:    domain.SeverityLow,
			Message:     "No links to about, contact or privacy pages found.",
			Remediation: "Link to about, contact and privacy pages from every page.",
		})
	}

	return domain.Round1(score), issues
}

func hasAuthor(doc *goquery.Document, text string) bool {
	if doc.Find(`meta[name="author"],[rel="author"],[itemprop="author"]`).Length() > 0 {
		return true
	}
	if doc.Find(`[class*="author"],[class*="byline"]`).Length() > 0 {
		return true
	}
	head := text
	if len(head) > 1200 {
		head = head[:1200]
	}
	return bylineRe.MatchString(head)
}

// publishDate returns the best machine-readable date and whether it is
// stale. A zero time means no date was found.
func publishDate(doc *goquery.Document) (time.Time, bool) {
	candidates := []string{
		doc.Find(`meta[property="article:published_time"]`).AttrOr("content", ""),
		doc.Find(`meta[property="article:modified_time"]`).AttrOr("content", ""),
		doc.Find(`meta[name="date"]`).AttrOr("content", ""),
		doc.Find(`time[datetime]`).First().AttrOr("datetime", ""),
	}

	var best time.Time
	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02T15:04"} {
			if t, err := time.Parse(layout, raw); err == nil {
				if t.After(best) {
					best = t
				}
				break
			}
		}
	}
	if best.IsZero() {
		return best, false
	}
	return best, time.Since(best) > staleAfter
}

// outboundCitations counts links to other hosts.
func outboundCitations(doc *goquery.Document, pageURL string) int {
	page, err := url.Parse(pageURL)
	if err != nil {
		return 0
	}
	count := 0
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil || u.Host == "" {
			return
		}
		if !strings.EqualFold(u.Hostname(), page.Hostname()) {
			count++
		}
	})
	return count
}

// trustPageShare is the fraction of about/contact/privacy pages the
// page links to.
func trustPageShare(doc *goquery.Document) float64 {
	found := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		target := strings.ToLower(href + " " + s.Text())
		for _, kind := range []string{"about", "contact", "privacy"} {
			if strings.Contains(target, kind) {
				found[kind] = true
			}
		}
	})
	return float64(len(found)) / 3
}
