package crawler

import "testing"

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"HTTP://Example.com/a/", "http://example.com/a"},
		{"https://Example.COM:443/", "https://example.com/"},
		{"http://example.com:80/path", "http://example.com/path"},
		{"http://example.com:8080/path", "http://example.com:8080/path"},
		{"https://example.com", "https://example.com/"},
		{"https://example.com/p?q=1&x=2#frag", "https://example.com/p?q=1&x=2"},
		{"  https://example.com/trim  ", "https://example.com/trim"},
	}
	for _, c := range cases {
		got, err := NormalizeURL(c.in)
		if err != nil {
			t.Fatalf("NormalizeURL(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	first, err := NormalizeURL("HTTP://Example.com:80/a/b/?q=1#x")
	if err != nil {
		t.Fatal(err)
	}
	second, err := NormalizeURL(first)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("normalization not idempotent: %q then %q", first, second)
	}
}

func TestNormalizeURLRejects(t *testing.T) {
	for _, in := range []string{
		"ftp://example.com/file",
		"mailto:someone@example.com",
		"javascript:void(0)",
		"https://",
		"/relative/only",
		"",
	} {
		if _, err := NormalizeURL(in); err == nil {
			t.Errorf("NormalizeURL(%q): expected error", in)
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/page", "example.com"},
		{"https://blog.example.com/", "example.com"},
		{"https://www.example.co.uk/x", "example.co.uk"},
		{"http://localhost:8080/", "localhost"},
	}
	for _, c := range cases {
		if got := RegistrableDomain(c.in); got != c.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSameSite(t *testing.T) {
	if !SameSite("https://example.com/a", "https://www.example.com/b") {
		t.Error("www should not break same-site")
	}
	if !SameSite("https://example.com/", "https://blog.example.com/post") {
		t.Error("subdomains share a registrable domain")
	}
	if SameSite("https://example.com/", "https://other.com/") {
		t.Error("different domains are not same-site")
	}
}

func TestCrawlableLink(t *testing.T) {
	for _, href := range []string{"/about", "https://example.com/x", "page.html", "/doc?id=3"} {
		if !crawlableLink(href) {
			t.Errorf("crawlableLink(%q) = false, want true", href)
		}
	}
	for _, href := range []string{"", "#section", "mailto:a@b.c", "tel:+123", "javascript:void(0)", "/style.css", "/img/logo.png?v=2", "/report.pdf"} {
		if crawlableLink(href) {
			t.Errorf("crawlableLink(%q) = true, want false", href)
		}
	}
}

func TestLikelyHTML(t *testing.T) {
	for _, u := range []string{"https://example.com/", "https://example.com/products", "https://example.com/page.html", "https://example.com/download?file=a.pdf"} {
		if !LikelyHTML(u) {
			t.Errorf("LikelyHTML(%q) = false, want true", u)
		}
	}
	for _, u := range []string{"https://example.com/brochure.pdf", "https://example.com/feed.xml", "https://example.com/app.js", "https://example.com/logo.svg"} {
		if LikelyHTML(u) {
			t.Errorf("LikelyHTML(%q) = true, want false", u)
		}
	}
}
