package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/answerlens/answerlens/internal/port"
)

const maxRedirects = 10

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	DialTimeout time.Duration
	SizeCap     int64   // max bytes read per response
	HostRPS     float64 // politeness limit per host
}

// HTTPFetcher implements port.Fetcher with a shared transport, a size
// cap and a per-host rate limiter so crawls never hammer one site.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	sizeCap   int64
	hostRPS   float64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates an HTTP fetcher.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.SizeCap == 0 {
		opts.SizeCap = 2 << 20
	}
	if opts.HostRPS == 0 {
		opts.HostRPS = 2
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "answerlens/1.0 (+https://answerlens.dev/bot)"
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		sizeCap:   opts.SizeCap,
		hostRPS:   opts.HostRPS,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Fetch retrieves one URL. It returns port.ErrNonHTMLContent for
// non-HTML responses and an error for non-2xx statuses; both are soft
// failures for callers.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*port.FetchedPage, error) {
	start := time.Now()

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	if err := f.limiter(u.Host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return &port.FetchedPage{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode},
			fmt.Errorf("fetch %s: http status %d", rawURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	isHTML := mediaType == "" || strings.Contains(mediaType, "text/html") || strings.Contains(mediaType, "application/xhtml+xml")

	page := &port.FetchedPage{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		HTML:        isHTML,
	}
	if !isHTML {
		page.Elapsed = time.Since(start)
		return page, port.ErrNonHTMLContent
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.sizeCap))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", rawURL, err)
	}

	page.Body = decodeUTF8(data, contentType)
	page.Elapsed = time.Since(start)
	return page, nil
}

// decodeUTF8 converts the response bytes to UTF-8 using the declared or
// sniffed charset, falling back to the raw bytes when they already look
// like valid UTF-8.
func decodeUTF8(data []byte, contentType string) string {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if utf8.Valid(data) {
			return string(data)
		}
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.hostRPS), 1)
		f.limiters[host] = l
	}
	return l
}
