// Package search implements the multi-strategy caption search pipeline.
//
// A query flows through six stages:
//
//	normalize -> generate strategies -> execute ladder -> rank -> diversify/expand -> format
//
// The executor runs candidate FTS5 expressions in priority order with a
// per-expression cap and an overall result budget, deduplicating across
// expressions by (video, start time). When the indexed ladder finds
// nothing, a fallback ladder takes over: plain keyword substring search,
// a curated contextual-hint table, then fuzzy stem variants.
//
// # Usage
//
//	engine, err := search.NewEngine(store, search.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp := engine.Search(ctx, "microscope christmas before 1920", nil)
//	for _, r := range resp.Results {
//	    fmt.Println(r.Timestamp, r.Title, r.ExternalURL)
//	}
//
// Responses are always well-formed. A query matching nothing reports
// status "no_results" with an empty list; only an unreachable store sets
// the Error field.
package search
