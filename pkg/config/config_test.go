package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.MaxPages != 25 || cfg.MaxDepth != 3 || cfg.CrawlConcurrency != 4 {
		t.Errorf("crawl defaults wrong: %+v", cfg)
	}
	if cfg.MaxCompetitors != 4 || cfg.ResultsPerQuery != 8 {
		t.Errorf("discovery defaults wrong: %+v", cfg)
	}
	if cfg.StageTimeout != 90*time.Second {
		t.Errorf("stage timeout = %s", cfg.StageTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CRAWL_MAX_PAGES", "5")
	t.Setenv("CRAWL_HOST_RPS", "0.5")
	t.Setenv("STAGE_TIMEOUT", "30s")
	t.Setenv("CRAWL_CONCURRENCY", "bogus") // unparsable falls back

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.MaxPages != 5 {
		t.Errorf("max pages = %d", cfg.MaxPages)
	}
	if cfg.HostRPS != 0.5 {
		t.Errorf("host rps = %f", cfg.HostRPS)
	}
	if cfg.StageTimeout != 30*time.Second {
		t.Errorf("stage timeout = %s", cfg.StageTimeout)
	}
	if cfg.CrawlConcurrency != 4 {
		t.Errorf("unparsable int should fall back: %d", cfg.CrawlConcurrency)
	}
}
