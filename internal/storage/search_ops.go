package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// hitColumns is the SELECT list shared by all search queries
const hitColumns = `
	SELECT v.video_id, v.title, v.year, s.start_time, s.end_time, s.text, s.sequence_number
`

// searchTextWithQuerier executes an FTS5 match joined to the videos table.
// The match expression is expected to already be well-formed FTS5 syntax
// (quoted terms, AND/NEAR operators); a malformed expression surfaces as a
// query error the caller can skip.
func searchTextWithQuerier(ctx context.Context, q querier, match string, limit int, filters *SearchFilters) ([]SegmentHit, error) {
	if strings.TrimSpace(match) == "" {
		return nil, fmt.Errorf("empty match expression")
	}

	sqlQuery := hitColumns + `
		FROM segments_fts
		INNER JOIN segments s ON segments_fts.rowid = s.id
		INNER JOIN videos v ON s.video_id = v.video_id
		WHERE segments_fts MATCH ?
	`
	args := []interface{}{match}

	sqlQuery, args = applyHitFilters(sqlQuery, args, filters)

	// bm25 scores are negative, lower is better
	sqlQuery += " ORDER BY bm25(segments_fts) LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectHits(rows)
}

func (s *SQLiteStore) SearchText(ctx context.Context, match string, limit int, filters *SearchFilters) ([]SegmentHit, error) {
	return searchTextWithQuerier(ctx, s.querier(), match, limit, filters)
}

// searchKeywordWithQuerier executes a substring search: every keyword must
// appear in the segment text (AND of LIKE clauses).
func searchKeywordWithQuerier(ctx context.Context, q querier, keywords []string, limit int, filters *SearchFilters) ([]SegmentHit, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords given")
	}

	sqlQuery := hitColumns + `
		FROM segments s
		INNER JOIN videos v ON s.video_id = v.video_id
		WHERE 1=1
	`
	var args []interface{}
	for _, kw := range keywords {
		sqlQuery += ` AND s.text LIKE ? ESCAPE '\'`
		args = append(args, "%"+EscapeLike(kw)+"%")
	}

	sqlQuery, args = applyHitFilters(sqlQuery, args, filters)

	sqlQuery += " ORDER BY v.episode, s.start_time LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute keyword search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectHits(rows)
}

func (s *SQLiteStore) SearchKeyword(ctx context.Context, keywords []string, limit int, filters *SearchFilters) ([]SegmentHit, error) {
	return searchKeywordWithQuerier(ctx, s.querier(), keywords, limit, filters)
}

// applyHitFilters adds WHERE clause filters shared by text and keyword search
func applyHitFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}

	// Year filters only apply to videos whose year is known
	if filters.YearStart > 0 {
		query += " AND v.year >= ?"
		args = append(args, filters.YearStart)
	}
	if filters.YearEnd > 0 {
		query += " AND v.year > 0 AND v.year <= ?"
		args = append(args, filters.YearEnd)
	}

	if filters.Exclude != "" {
		query += ` AND s.text NOT LIKE ? ESCAPE '\'`
		args = append(args, "%"+EscapeLike(filters.Exclude)+"%")
	}

	if len(filters.VideoIDs) > 0 {
		query += " AND v.video_id IN ("
		for i, id := range filters.VideoIDs {
			if i > 0 {
				query += ","
			}
			query += "?"
			args = append(args, id)
		}
		query += ")"
	}

	return query, args
}

func collectHits(rows *sql.Rows) ([]SegmentHit, error) {
	var hits []SegmentHit
	for rows.Next() {
		var hit SegmentHit
		if err := rows.Scan(&hit.VideoID, &hit.Title, &hit.Year,
			&hit.StartTime, &hit.EndTime, &hit.Text, &hit.SequenceNumber); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// EscapeLike escapes LIKE wildcards so user terms match literally
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// QuoteFTSTerm wraps a term in double quotes for safe use inside an FTS5
// match expression, escaping embedded quotes by doubling them.
func QuoteFTSTerm(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}
