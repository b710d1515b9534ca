package fetch

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/answerlens/answerlens/internal/port"
)

// Robots fetches and parses the site's robots.txt, best-effort: any
// failure yields rules that allow everything.
func (f *HTTPFetcher) Robots(ctx context.Context, siteURL string) *port.RobotsRules {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return &port.RobotsRules{}
	}
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return &port.RobotsRules{}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Debug("robots.txt unreachable", "url", robotsURL, "error", err)
		return &port.RobotsRules{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &port.RobotsRules{}
	}

	return parseRobots(io.LimitReader(resp.Body, f.sizeCap), f.userAgent)
}

// parseRobots extracts Disallow prefixes that apply to our user agent:
// the wildcard group plus any group whose agent token appears in the
// configured user agent string.
func parseRobots(r io.Reader, userAgent string) *port.RobotsRules {
	rules := &port.RobotsRules{}
	uaLower := strings.ToLower(userAgent)

	applies := false
	inAgentRun := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			agent := strings.ToLower(value)
			matches := agent == "*" || (agent != "" && strings.Contains(uaLower, agent))
			if inAgentRun {
				applies = applies || matches // consecutive agent lines form one group
			} else {
				applies = matches
			}
			inAgentRun = true
			continue
		case "disallow":
			if applies && value != "" {
				rules.Disallow = append(rules.Disallow, value)
			}
		case "allow", "sitemap", "crawl-delay":
			// not honored; Disallow prefixes are the contract
		}
		inAgentRun = false
	}
	return rules
}
