// Package ranking is the comparative scoring engine: a pure,
// deterministic transformation over already-computed page audits.
// It performs no I/O.
package ranking

import (
	"sort"

	"github.com/answerlens/answerlens/internal/domain"
)

// Strength/weakness thresholds, applied per category independently of
// ranking.
const (
	StrengthThreshold = 70.0
	WeaknessThreshold = 50.0
)

// Rank builds the full comparative table: one row for the target plus
// one per competitor with at least one audited page, sorted by
// composite descending. Ties keep entity creation order, so the target
// wins ties against competitors.
func Rank(auditID string, targetPages []domain.PageAudit, comps []domain.Competitor, compPages []domain.PageAudit) []domain.ComparativeResult {
	rows := []domain.ComparativeResult{aggregate(auditID, domain.EntityTarget, true, targetPages)}

	byEntity := map[string][]domain.PageAudit{}
	for _, p := range compPages {
		byEntity[p.Entity] = append(byEntity[p.Entity], p)
	}
	for _, comp := range comps {
		pages := byEntity[comp.Domain]
		if len(pages) == 0 {
			continue // unreachable competitor, excluded from scoring
		}
		rows = append(rows, aggregate(auditID, comp.Domain, false, pages))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Composite > rows[j].Composite
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// aggregate averages category scores across an entity's pages; the
// entity composite is the mean of the page composites. Both round to
// one decimal.
func aggregate(auditID, entity string, isTarget bool, pages []domain.PageAudit) domain.ComparativeResult {
	row := domain.ComparativeResult{
		AuditID:  auditID,
		Entity:   entity,
		IsTarget: isTarget,
	}
	if len(pages) == 0 {
		row.Weaknesses = classify(row.Scores).weaknesses
		return row
	}

	var composite float64
	for _, p := range pages {
		row.Scores.Structure += p.Scores.Structure
		row.Scores.Content += p.Scores.Content
		row.Scores.Authority += p.Scores.Authority
		row.Scores.Schema += p.Scores.Schema
		composite += p.Composite
	}
	n := float64(len(pages))
	row.Scores.Structure = domain.Round1(row.Scores.Structure / n)
	row.Scores.Content = domain.Round1(row.Scores.Content / n)
	row.Scores.Authority = domain.Round1(row.Scores.Authority / n)
	row.Scores.Schema = domain.Round1(row.Scores.Schema / n)
	row.Composite = domain.Round1(composite / n)

	c := classify(row.Scores)
	row.Strengths = c.strengths
	row.Weaknesses = c.weaknesses
	return row
}

type classified struct {
	strengths  []domain.ScoreCategory
	weaknesses []domain.ScoreCategory
}

// classify applies the fixed thresholds per category in their standard
// order.
func classify(scores domain.CategoryScores) classified {
	var c classified
	for _, cat := range domain.ScoreCategories {
		switch score := scores.Get(cat); {
		case score >= StrengthThreshold:
			c.strengths = append(c.strengths, cat)
		case score < WeaknessThreshold:
			c.weaknesses = append(c.weaknesses, cat)
		}
	}
	return c
}
