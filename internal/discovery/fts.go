package discovery

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"archscope/internal/ontology"
)

// FTSBackend is an optional SQLite FTS5 discovery backend. It indexes the
// catalog into a content table plus an fts5 virtual table and resolves each
// term with per-column MATCH queries, falling back to LIKE for substrings
// the tokenizer cannot reach. The weighted-signal ranking contract is the
// same as CatalogSearch; ties keep catalog insertion order (rowid order).
type FTSBackend struct {
	db      *sql.DB
	catalog *ontology.Catalog
	weights Weights
}

// NewFTSBackend creates an FTS backend over an open SQLite connection.
func NewFTSBackend(db *sql.DB, catalog *ontology.Catalog, weights Weights) *FTSBackend {
	return &FTSBackend{db: db, catalog: catalog, weights: weights}
}

// InitSchema creates the FTS content and virtual tables
func (b *FTSBackend) InitSchema() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS components_fts_content (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			domain TEXT NOT NULL,
			type TEXT,
			fragments TEXT,
			indexed_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create components_fts_content table: %w", err)
	}

	_, err = b.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS components_fts USING fts5(
			name,
			domain,
			fragments,
			content='components_fts_content',
			content_rowid='rowid'
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create components_fts table: %w", err)
	}
	return nil
}

// Sync replaces the index with the current catalog contents. Rowids follow
// catalog insertion order, which the ranking uses for tie breaks.
func (b *FTSBackend) Sync(ctx context.Context) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM components_fts_content"); err != nil {
		return fmt.Errorf("failed to clear content: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO components_fts_content (name, domain, type, fragments)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, comp := range b.catalog.Snapshot() {
		fragments := make([]string, 0, len(comp.APIs)+len(comp.PublishedEvents)+len(comp.ConsumedEvents))
		fragments = append(fragments, comp.APIs...)
		fragments = append(fragments, comp.PublishedEvents...)
		fragments = append(fragments, comp.ConsumedEvents...)
		// Newline-joined so fragment boundaries survive for per-fragment
		// hit counting; the FTS tokenizer treats it as a separator anyway.
		if _, err := stmt.ExecContext(ctx, comp.Name, comp.Domain, string(comp.Type), strings.Join(fragments, "\n")); err != nil {
			return fmt.Errorf("failed to index component %s: %w", comp.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO components_fts(components_fts) VALUES('rebuild')"); err != nil {
		return fmt.Errorf("failed to rebuild FTS: %w", err)
	}

	return tx.Commit()
}

// Discover implements Backend. Each term is matched against the three
// indexed columns separately so the signal weights stay explicit instead of
// being folded into bm25.
func (b *FTSBackend) Discover(ctx context.Context, terms []string) ([]Match, error) {
	matches := make([]Match, 0)
	if len(terms) == 0 {
		return matches, nil
	}

	type hit struct {
		rowid     int64
		score     int
		breakdown map[string]int
	}
	hits := make(map[string]*hit)
	get := func(rowid int64, name string) *hit {
		h, ok := hits[name]
		if !ok {
			h = &hit{rowid: rowid, breakdown: map[string]int{"name": 0, "domain": 0, "fragment": 0}}
			hits[name] = h
		}
		return h
	}

	columns := []struct {
		column string
		signal string
		weight int
	}{
		{"name", "name", b.weights.Name},
		{"domain", "domain", b.weights.Domain},
		{"fragments", "fragment", b.weights.Fragment},
	}

	for _, raw := range terms {
		term := ontology.NormalizeTerm(raw)
		if term == "" {
			continue
		}
		for _, col := range columns {
			names, err := b.matchColumn(ctx, col.column, term)
			if err != nil {
				return nil, fmt.Errorf("fts lookup for %q failed: %w", term, err)
			}
			for _, n := range names {
				h := get(n.rowid, n.name)
				h.score += col.weight * n.count
				h.breakdown[col.signal] += n.count
			}
		}
	}

	ordered := make([]*hit, 0, len(hits))
	byName := make(map[*hit]string, len(hits))
	for name, h := range hits {
		ordered = append(ordered, h)
		byName[h] = name
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].rowid < ordered[j].rowid
	})

	for _, h := range ordered {
		comp, ok := b.catalog.Get(byName[h])
		if !ok {
			continue
		}
		matches = append(matches, Match{Component: comp, Score: h.score, Breakdown: h.breakdown})
	}
	return matches, nil
}

type ftsRow struct {
	rowid     int64
	name      string
	fragments string
	count     int
}

// matchColumn resolves one term against one column: prefix MATCH first, then
// a LIKE fallback for mid-word substrings FTS tokenization cannot see.
// Name and domain hits count once per term; fragment hits count once per
// matching fragment, the same accounting CatalogSearch uses.
func (b *FTSBackend) matchColumn(ctx context.Context, column, term string) ([]ftsRow, error) {
	seen := make(map[string]bool)
	var out []ftsRow

	ftsQuery := fmt.Sprintf(`%s:"%s"*`, column, escapeFTSQuery(term))
	rows, err := b.db.QueryContext(ctx, `
		SELECT c.rowid, c.name, c.fragments
		FROM components_fts f
		JOIN components_fts_content c ON f.rowid = c.rowid
		WHERE components_fts MATCH ?
		ORDER BY c.rowid
	`, ftsQuery)
	if err != nil {
		return nil, err
	}
	if err := collectFTSRows(rows, seen, &out); err != nil {
		return nil, err
	}

	pattern := "%" + term + "%"
	rows, err = b.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT rowid, name, fragments FROM components_fts_content WHERE %s LIKE ? ORDER BY rowid`, column),
		pattern)
	if err != nil {
		return nil, err
	}
	if err := collectFTSRows(rows, seen, &out); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].count = 1
		if column == "fragments" {
			if n := countFragmentHits(out[i].fragments, term); n > out[i].count {
				out[i].count = n
			}
		}
	}
	return out, nil
}

func collectFTSRows(rows *sql.Rows, seen map[string]bool, out *[]ftsRow) error {
	defer rows.Close()
	for rows.Next() {
		var r ftsRow
		if err := rows.Scan(&r.rowid, &r.name, &r.fragments); err != nil {
			return err
		}
		if !seen[r.name] {
			seen[r.name] = true
			*out = append(*out, r)
		}
	}
	return rows.Err()
}

// countFragmentHits counts the newline-separated fragments containing the
// already-normalized term.
func countFragmentHits(fragments, term string) int {
	n := 0
	for _, f := range strings.Split(fragments, "\n") {
		if strings.Contains(strings.ToLower(f), term) {
			n++
		}
	}
	return n
}

// escapeFTSQuery escapes double quotes inside an FTS5 phrase query
func escapeFTSQuery(q string) string {
	return strings.ReplaceAll(q, `"`, `""`)
}
