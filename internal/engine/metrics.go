package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	RankRequests        atomic.Int64
	ScoreRequests       atomic.Int64
	RelevanceRequests   atomic.Int64
	SearchRequests      atomic.Int64
	LLMCalls            atomic.Int64
	LLMErrors           atomic.Int64
	ClassifierFallbacks atomic.Int64
	FetchRequests       atomic.Int64
	FetchErrors         atomic.Int64
	DataAPIRequests     atomic.Int64
	InnertubeRequests   atomic.Int64
	ScrapeRequests      atomic.Int64
	DetailFetches       atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"rank_requests":        metrics.RankRequests.Load(),
		"score_requests":       metrics.ScoreRequests.Load(),
		"relevance_requests":   metrics.RelevanceRequests.Load(),
		"search_requests":      metrics.SearchRequests.Load(),
		"llm_calls":            metrics.LLMCalls.Load(),
		"llm_errors":           metrics.LLMErrors.Load(),
		"classifier_fallbacks": metrics.ClassifierFallbacks.Load(),
		"fetch_requests":       metrics.FetchRequests.Load(),
		"fetch_errors":         metrics.FetchErrors.Load(),
		"dataapi_requests":     metrics.DataAPIRequests.Load(),
		"innertube_requests":   metrics.InnertubeRequests.Load(),
		"scrape_requests":      metrics.ScrapeRequests.Load(),
		"detail_fetches":       metrics.DetailFetches.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"rank_requests", "score_requests", "relevance_requests", "search_requests",
		"llm_calls", "llm_errors", "classifier_fallbacks",
		"fetch_requests", "fetch_errors",
		"dataapi_requests", "innertube_requests", "scrape_requests", "detail_fetches",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for tool handlers.
func IncrRankRequests()      { metrics.RankRequests.Add(1) }
func IncrScoreRequests()     { metrics.ScoreRequests.Add(1) }
func IncrRelevanceRequests() { metrics.RelevanceRequests.Add(1) }
func IncrSearchRequests()    { metrics.SearchRequests.Add(1) }

// Incrementors for the LLM layer and rank/ sub-package.
func IncrLLMCall()            { metrics.LLMCalls.Add(1) }
func IncrLLMError()           { metrics.LLMErrors.Add(1) }
func IncrClassifierFallback() { metrics.ClassifierFallbacks.Add(1) }

// Incrementors for sources/ sub-package.
func IncrFetch()       { metrics.FetchRequests.Add(1) }
func IncrFetchError()  { metrics.FetchErrors.Add(1) }
func IncrDataAPI()     { metrics.DataAPIRequests.Add(1) }
func IncrInnertube()   { metrics.InnertubeRequests.Add(1) }
func IncrScrape()      { metrics.ScrapeRequests.Add(1) }
func IncrDetailFetch() { metrics.DetailFetches.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
