package search

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/transcripta/capsearch/internal/query"
	"github.com/transcripta/capsearch/internal/rank"
	"github.com/transcripta/capsearch/internal/result"
	"github.com/transcripta/capsearch/internal/storage"
	"github.com/transcripta/capsearch/internal/strategy"
	"github.com/transcripta/capsearch/pkg/types"
)

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	PerStrategyLimit int
	Budget           int
	DistinctVideos   int
	CacheSize        int
	CacheTTL         time.Duration
	Platform         string
	Boosts           rank.BoostTable
	Hints            HintTable
	Templates        []result.ExplanationTemplate
}

func (c *Config) applyDefaults() {
	if c.PerStrategyLimit <= 0 {
		c.PerStrategyLimit = DefaultPerStrategyLimit
	}
	if c.Budget <= 0 {
		c.Budget = DefaultBudget
	}
	if c.DistinctVideos <= 0 {
		c.DistinctVideos = rank.DefaultDistinctVideos
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 1000
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
}

// cacheEntry is a cached response with its expiration time
type cacheEntry struct {
	response  *types.SearchResponse
	expiresAt time.Time
}

// Engine ties the pipeline together: normalize, generate strategies,
// execute the ladder, rank, diversify, expand context, format. It owns a
// best-effort LRU response cache with an explicit clear operation.
type Engine struct {
	store      storage.Store
	normalizer *query.Normalizer
	generator  *strategy.Generator
	executor   *Executor
	ranker     *rank.Ranker
	expander   *rank.ContextExpander
	formatter  *result.Formatter
	cfg        Config

	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
	cacheTTL time.Duration
}

// NewEngine creates an Engine over the given store. The store's synonym
// table is merged into the normalizer's; a failure to read it degrades to
// the built-in synonyms only.
func NewEngine(store storage.Store, cfg Config) (*Engine, error) {
	cfg.applyDefaults()

	extraSynonyms, err := store.ListSynonyms(context.Background())
	if err != nil {
		extraSynonyms = nil
	}

	cache, err := lru.New[[32]byte, *cacheEntry](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}

	return &Engine{
		store:      store,
		normalizer: query.NewNormalizer(extraSynonyms),
		generator:  strategy.NewGenerator(),
		executor:   NewExecutor(store).WithLimits(cfg.PerStrategyLimit, cfg.Budget),
		ranker:     rank.NewRanker(cfg.Boosts),
		expander:   rank.NewContextExpander(store),
		formatter:  result.NewFormatter(cfg.Platform, cfg.Templates),
		cfg:        cfg,
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
	}, nil
}

// Search runs the full pipeline. The response is always well-formed: query
// errors and infrastructure failures are reported in the Status and Error
// fields, never as a panic or a half-built result list. A query that
// matches nothing is not an error.
func (e *Engine) Search(ctx context.Context, rawQuery string, filters *types.SearchFilters) *types.SearchResponse {
	rawQuery = strings.TrimSpace(rawQuery)
	if rawQuery == "" {
		return &types.SearchResponse{
			Query:   rawQuery,
			Status:  types.StatusNoQuery,
			Results: []types.SearchResult{},
		}
	}

	hash := e.queryHash(rawQuery, filters)
	if cached := e.checkCache(hash); cached != nil {
		return cached
	}

	norm := e.normalizer.Normalize(rawQuery)
	storeFilters := mergeFilters(norm, filters)
	strategies := e.generator.Generate(norm)

	method := types.MethodStrategyLadder
	results, _, err := e.executor.Execute(ctx, strategies, norm, storeFilters)
	if err != nil {
		return &types.SearchResponse{
			Query:   rawQuery,
			Method:  method,
			Status:  types.StatusError,
			Error:   err.Error(),
			Results: []types.SearchResult{},
		}
	}

	// Fallback ladder: keyword substring, curated hints, fuzzy stems.
	// Each rung's failure is recoverable; the next rung still runs.
	if len(results) == 0 {
		results, method = e.runFallbacks(ctx, norm, storeFilters)
	}

	if len(results) == 0 {
		resp := &types.SearchResponse{
			Query:   rawQuery,
			Method:  method,
			Status:  types.StatusNoResults,
			Results: []types.SearchResult{},
		}
		e.storeInCache(hash, resp)
		return resp
	}

	ranked := e.ranker.Rank(results, norm)
	diverse := rank.Diversify(ranked, e.cfg.DistinctVideos, e.cfg.Budget)
	expanded := e.expander.Expand(ctx, diverse)
	formatted := e.formatter.Format(expanded)

	resp := &types.SearchResponse{
		Query:   rawQuery,
		Method:  method,
		Count:   len(formatted),
		Status:  types.StatusOK,
		Results: formatted,
	}
	e.storeInCache(hash, resp)
	return resp
}

func (e *Engine) runFallbacks(ctx context.Context, norm query.Normalized, filters *storage.SearchFilters) ([]rank.Result, string) {
	if results, err := e.executor.keywordFallback(ctx, norm, filters); err == nil && len(results) > 0 {
		return results, types.MethodKeywordFallback
	}
	if results, err := e.executor.hintFallback(ctx, norm, e.cfg.Hints, filters); err == nil && len(results) > 0 {
		return results, types.MethodContextualHints
	}
	if results, err := e.executor.fuzzyFallback(ctx, norm, filters); err == nil && len(results) > 0 {
		return results, types.MethodFuzzyStem
	}
	return nil, types.MethodStrategyLadder
}

// mergeFilters combines directives parsed from the query with the caller's
// filters, taking the tighter bound on each side.
func mergeFilters(norm query.Normalized, filters *types.SearchFilters) *storage.SearchFilters {
	out := &storage.SearchFilters{Exclude: norm.Exclude}

	if norm.Date != nil {
		out.YearStart = norm.Date.YearStart
		out.YearEnd = norm.Date.YearEnd
	}
	if filters != nil {
		if filters.YearStart > out.YearStart {
			out.YearStart = filters.YearStart
		}
		if filters.YearEnd > 0 && (out.YearEnd == 0 || filters.YearEnd < out.YearEnd) {
			out.YearEnd = filters.YearEnd
		}
	}
	return out
}

// ClearCache drops every cached response. Callers use this after ingesting
// new captions; the cache is otherwise best-effort and may serve stale
// results until it expires.
func (e *Engine) ClearCache() {
	e.cacheMu.Lock()
	e.cache.Purge()
	e.cacheMu.Unlock()
}

// Stats reports store statistics for the status surfaces
func (e *Engine) Stats(ctx context.Context) (*storage.StoreStats, error) {
	return e.store.Stats(ctx)
}

// queryHash builds the cache key from the query and filters
func (e *Engine) queryHash(rawQuery string, filters *types.SearchFilters) [32]byte {
	var data strings.Builder
	data.WriteString(rawQuery)
	if filters != nil {
		fmt.Fprintf(&data, "|%d|%d", filters.YearStart, filters.YearEnd)
	}
	return sha256.Sum256([]byte(data.String()))
}

// checkCache returns a deep copy of a live cache entry, or nil. The write
// lock covers the whole lookup: dropping a read lock before removing an
// expired entry would let a concurrent storeInCache land a fresh entry in
// the gap, only for the Remove to evict it.
func (e *Engine) checkCache(hash [32]byte) *types.SearchResponse {
	now := time.Now()

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	entry, found := e.cache.Get(hash)
	if !found {
		return nil
	}
	if now.After(entry.expiresAt) {
		e.cache.Remove(hash)
		return nil
	}
	return copyResponse(entry.response)
}

// storeInCache saves a deep copy of the response with the configured TTL
func (e *Engine) storeInCache(hash [32]byte, resp *types.SearchResponse) {
	entry := &cacheEntry{
		response:  copyResponse(resp),
		expiresAt: time.Now().Add(e.cacheTTL),
	}
	e.cacheMu.Lock()
	e.cache.Add(hash, entry)
	e.cacheMu.Unlock()
}

// copyResponse creates a deep copy so cached responses can't be mutated by
// callers after the fact.
func copyResponse(src *types.SearchResponse) *types.SearchResponse {
	if src == nil {
		return nil
	}
	dst := *src
	dst.Results = make([]types.SearchResult, len(src.Results))
	copy(dst.Results, src.Results)
	return &dst
}
