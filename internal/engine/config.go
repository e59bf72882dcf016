package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int

	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string

	FetchTimeout        time.Duration
	PlaylistMaxVideos   int           // hard ceiling on videos fetched per playlist
	PlaylistMaxPages    int           // max pagination rounds per playlist
	PlaylistFetchBudget time.Duration // soft deadline for a single playlist fetch

	SearchLimit int // playlists pulled from search per ranking run
	EvalLimit   int // candidates actually fetched and scored
	RankWorkers int // concurrent scoring workers

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = page scraping uses plain HTTP client
	LLMPool       *KeyPool       // nil = relevance falls back to rules
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, rank).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
