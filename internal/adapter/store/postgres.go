package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, ensures the schema exists and
// returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// --- Audits ---

// CreateAudit inserts a new pending audit.
func (s *PostgresStore) CreateAudit(ctx context.Context, a *domain.Audit) (*domain.Audit, error) {
	query := `INSERT INTO audits (id, target_url, domain, status, progress, sensitive, category, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, target_url, domain, status, progress, sensitive, category, error_message, created_at, started_at, completed_at`

	row := s.db.QueryRowContext(ctx, query,
		a.ID, a.TargetURL, a.Domain, a.Status, a.Progress, a.Sensitive, a.Category, a.CreatedAt,
	)
	return scanAudit(row)
}

// GetAudit retrieves an audit by ID.
func (s *PostgresStore) GetAudit(ctx context.Context, id string) (*domain.Audit, error) {
	query := `SELECT id, target_url, domain, status, progress, sensitive, category, error_message, created_at, started_at, completed_at
	          FROM audits WHERE id = $1`

	audit, err := scanAudit(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrAuditNotFound
	}
	return audit, err
}

// ListAudits returns recent audits, newest first.
func (s *PostgresStore) ListAudits(ctx context.Context, limit int) ([]domain.Audit, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, target_url, domain, status, progress, sensitive, category, error_message, created_at, started_at, completed_at
	          FROM audits ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	var audits []domain.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, *a)
	}
	return audits, rows.Err()
}

// UpdateAuditStatus records a lifecycle transition. Terminal audits
// are never touched and progress never decreases; completion and start
// timestamps are set on the matching transitions.
func (s *PostgresStore) UpdateAuditStatus(ctx context.Context, id, status string, progress int, errMsg string) error {
	query := `UPDATE audits SET
	            status = $2,
	            progress = GREATEST(progress, $3),
	            error_message = $4,
	            started_at = CASE WHEN $2 = 'running' AND started_at IS NULL THEN NOW() ELSE started_at END,
	            completed_at = CASE WHEN $2 IN ('completed', 'failed') THEN NOW() ELSE completed_at END
	          WHERE id = $1 AND status NOT IN ('completed', 'failed')`

	res, err := s.db.ExecContext(ctx, query, id, status, progress, errMsg)
	if err != nil {
		return fmt.Errorf("update audit status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrAuditTerminal
	}
	return nil
}

// UpdateClassification records the classifier stage output. Terminal
// and unknown audits are rejected, same as UpdateAuditStatus.
func (s *PostgresStore) UpdateClassification(ctx context.Context, id string, sensitive bool, category string) error {
	query := `UPDATE audits SET sensitive = $2, category = $3
	          WHERE id = $1 AND status NOT IN ('completed', 'failed')`
	res, err := s.db.ExecContext(ctx, query, id, sensitive, category)
	if err != nil {
		return fmt.Errorf("update classification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrAuditTerminal
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (*domain.Audit, error) {
	var a domain.Audit
	var started, completed sql.NullTime
	err := row.Scan(
		&a.ID, &a.TargetURL, &a.Domain, &a.Status, &a.Progress,
		&a.Sensitive, &a.Category, &a.ErrorMessage, &a.CreatedAt,
		&started, &completed,
	)
	if err != nil {
		return nil, err
	}
	if started.Valid {
		a.StartedAt = &started.Time
	}
	if completed.Valid {
		a.CompletedAt = &completed.Time
	}
	return &a, nil
}

// --- Stage results ---

// SaveCrawledURLs persists one crawl stage output in a single
// transaction (write-after-stage, never per item).
func (s *PostgresStore) SaveCrawledURLs(ctx context.Context, auditID string, urls []domain.CrawledURL) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO crawled_urls (audit_id, url, depth, html, reachable, discovered)
		          VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`
		for _, u := range urls {
			if _, err := tx.ExecContext(ctx, query, auditID, u.URL, u.Depth, u.HTML, u.Reachable, u.Discovered); err != nil {
				return fmt.Errorf("insert crawled url: %w", err)
			}
		}
		return nil
	})
}

// SavePageAudits persists one auditing stage output.
func (s *PostgresStore) SavePageAudits(ctx context.Context, auditID string, pages []domain.PageAudit) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO page_audits (id, audit_id, entity, url, structure, content, authority, schema_score, composite, issues, created_at)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11)`
		for _, p := range pages {
			issues, err := json.Marshal(p.Issues)
			if err != nil {
				return fmt.Errorf("marshal issues: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query,
				p.ID, auditID, p.Entity, p.URL,
				p.Scores.Structure, p.Scores.Content, p.Scores.Authority, p.Scores.Schema,
				p.Composite, string(issues), p.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert page audit: %w", err)
			}
		}
		return nil
	})
}

// SaveCompetitors persists the discovery stage output.
func (s *PostgresStore) SaveCompetitors(ctx context.Context, auditID string, comps []domain.Competitor) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO competitors (audit_id, domain, url, rank, score)
		          VALUES ($1, $2, $3, $4, $5) ON CONFLICT (audit_id, domain) DO NOTHING`
		for _, c := range comps {
			if _, err := tx.ExecContext(ctx, query, auditID, c.Domain, c.URL, c.Rank, c.Score); err != nil {
				return fmt.Errorf("insert competitor: %w", err)
			}
		}
		return nil
	})
}

// SaveComparativeResults replaces the ranking rows for an audit; rows
// are recomputed fully on every scoring pass.
func (s *PostgresStore) SaveComparativeResults(ctx context.Context, auditID string, rows []domain.ComparativeResult) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comparative_results WHERE audit_id = $1`, auditID); err != nil {
			return fmt.Errorf("clear comparative results: %w", err)
		}
		query := `INSERT INTO comparative_results (audit_id, entity, is_target, structure, content, authority, schema_score, composite, rank, strengths, weaknesses)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb)`
		for _, r := range rows {
			strengths, _ := json.Marshal(emptyIfNil(r.Strengths))
			weaknesses, _ := json.Marshal(emptyIfNil(r.Weaknesses))
			if _, err := tx.ExecContext(ctx, query,
				auditID, r.Entity, r.IsTarget,
				r.Scores.Structure, r.Scores.Content, r.Scores.Authority, r.Scores.Schema,
				r.Composite, r.Rank, string(strengths), string(weaknesses),
			); err != nil {
				return fmt.Errorf("insert comparative result: %w", err)
			}
		}
		return nil
	})
}

// SaveFixPlan replaces the fix plan for an audit, preserving order via
// an explicit position column.
func (s *PostgresStore) SaveFixPlan(ctx context.Context, auditID string, items []domain.FixPlanItem) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM fix_plan_items WHERE audit_id = $1`, auditID); err != nil {
			return fmt.Errorf("clear fix plan: %w", err)
		}
		query := `INSERT INTO fix_plan_items (audit_id, title, priority, category, url, description, impact, position)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		for i, item := range items {
			if _, err := tx.ExecContext(ctx, query,
				auditID, item.Title, string(item.Priority), string(item.Category),
				item.URL, item.Description, item.Impact, i,
			); err != nil {
				return fmt.Errorf("insert fix plan item: %w", err)
			}
		}
		return nil
	})
}

// SaveReport upserts the narrative report.
func (s *PostgresStore) SaveReport(ctx context.Context, report *domain.Report) error {
	query := `INSERT INTO reports (audit_id, narrative, degraded, created_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (audit_id) DO UPDATE SET narrative = EXCLUDED.narrative, degraded = EXCLUDED.degraded`
	_, err := s.db.ExecContext(ctx, query, report.AuditID, report.Narrative, report.Degraded, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// --- Results ---

// GetAuditResults assembles the consumer-facing contract for one audit.
func (s *PostgresStore) GetAuditResults(ctx context.Context, id string) (*domain.AuditResults, error) {
	audit, err := s.GetAudit(ctx, id)
	if err != nil {
		return nil, err
	}
	results := &domain.AuditResults{Audit: audit}

	pages, err := s.db.QueryContext(ctx,
		`SELECT id, entity, url, structure, content, authority, schema_score, composite, issues, created_at
		 FROM page_audits WHERE audit_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load page audits: %w", err)
	}
	defer pages.Close()
	for pages.Next() {
		p := domain.PageAudit{AuditID: id}
		var issues []byte
		if err := pages.Scan(&p.ID, &p.Entity, &p.URL,
			&p.Scores.Structure, &p.Scores.Content, &p.Scores.Authority, &p.Scores.Schema,
			&p.Composite, &issues, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan page audit: %w", err)
		}
		if err := json.Unmarshal(issues, &p.Issues); err != nil {
			return nil, fmt.Errorf("decode issues: %w", err)
		}
		results.Pages = append(results.Pages, p)
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}

	comps, err := s.db.QueryContext(ctx,
		`SELECT domain, url, rank, score FROM competitors WHERE audit_id = $1 ORDER BY rank`, id)
	if err != nil {
		return nil, fmt.Errorf("load competitors: %w", err)
	}
	defer comps.Close()
	for comps.Next() {
		c := domain.Competitor{AuditID: id}
		if err := comps.Scan(&c.Domain, &c.URL, &c.Rank, &c.Score); err != nil {
			return nil, fmt.Errorf("scan competitor: %w", err)
		}
		results.Competitors = append(results.Competitors, c)
	}
	if err := comps.Err(); err != nil {
		return nil, err
	}

	ranking, err := s.db.QueryContext(ctx,
		`SELECT entity, is_target, structure, content, authority, schema_score, composite, rank, strengths, weaknesses
		 FROM comparative_results WHERE audit_id = $1 ORDER BY rank`, id)
	if err != nil {
		return nil, fmt.Errorf("load ranking: %w", err)
	}
	defer ranking.Close()
	for ranking.Next() {
		r := domain.ComparativeResult{AuditID: id}
		var strengths, weaknesses []byte
		if err := ranking.Scan(&r.Entity, &r.IsTarget,
			&r.Scores.Structure, &r.Scores.Content, &r.Scores.Authority, &r.Scores.Schema,
			&r.Composite, &r.Rank, &strengths, &weaknesses); err != nil {
			return nil, fmt.Errorf("scan ranking row: %w", err)
		}
		if err := json.Unmarshal(strengths, &r.Strengths); err != nil {
			return nil, fmt.Errorf("decode strengths: %w", err)
		}
		if err := json.Unmarshal(weaknesses, &r.Weaknesses); err != nil {
			return nil, fmt.Errorf("decode weaknesses: %w", err)
		}
		results.Ranking = append(results.Ranking, r)
	}
	if err := ranking.Err(); err != nil {
		return nil, err
	}

	fixes, err := s.db.QueryContext(ctx,
		`SELECT title, priority, category, url, description, impact
		 FROM fix_plan_items WHERE audit_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load fix plan: %w", err)
	}
	defer fixes.Close()
	for fixes.Next() {
		item := domain.FixPlanItem{AuditID: id}
		if err := fixes.Scan(&item.Title, &item.Priority, &item.Category, &item.URL, &item.Description, &item.Impact); err != nil {
			return nil, fmt.Errorf("scan fix plan item: %w", err)
		}
		results.FixPlan = append(results.FixPlan, item)
	}
	if err := fixes.Err(); err != nil {
		return nil, err
	}

	var rep domain.Report
	err = s.db.QueryRowContext(ctx,
		`SELECT audit_id, narrative, degraded, created_at FROM reports WHERE audit_id = $1`, id).
		Scan(&rep.AuditID, &rep.Narrative, &rep.Degraded, &rep.CreatedAt)
	switch {
	case err == nil:
		results.Report = &rep
	case errors.Is(err, sql.ErrNoRows):
		// report not produced yet
	default:
		return nil, fmt.Errorf("load report: %w", err)
	}

	return results, nil
}

// --- Request logs ---

// WriteRequestLog implements middleware.RequestLogWriter.
func (s *PostgresStore) WriteRequestLog(method, path string, status int, details, ip, userAgent string) error {
	query := `INSERT INTO request_logs (method, path, status, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4::jsonb, $5, $6)`
	_, err := s.db.ExecContext(context.Background(), query, method, path, status, details, ip, userAgent)
	return err
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func emptyIfNil(cats []domain.ScoreCategory) []domain.ScoreCategory {
	if cats == nil {
		return []domain.ScoreCategory{}
	}
	return cats
}
