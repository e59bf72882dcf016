// go_playlist — YouTube educational playlist ranking MCP server.
//
// Finds, classifies and scores YouTube playlists for how well they teach a
// technology. Exposes six MCP tools: find_best_playlist, score_playlist,
// check_relevance, search_playlists, playlist_videos, video_details.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/anatolykoptev/go_playlist/internal/playlistserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_playlist",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_playlist",
		Version: version,
	}, nil)

	playlistserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 6))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_playlist",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env")
	}

	c := engine.Config{
		LLMAPIKey:          env.Str("LLM_API_KEY", env.Str("GROQ_API_KEY", "")),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://api.groq.com/openai/v1"),
		LLMModel:           env.Str("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 2048),

		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),

		FetchTimeout:        env.Duration("FETCH_TIMEOUT", 10*time.Second),
		PlaylistMaxVideos:   env.Int("PLAYLIST_MAX_VIDEOS", 500),
		PlaylistMaxPages:    env.Int("PLAYLIST_MAX_PAGES", 20),
		PlaylistFetchBudget: env.Duration("PLAYLIST_FETCH_BUDGET", 60*time.Second),

		SearchLimit: env.Int("SEARCH_LIMIT", 12),
		EvalLimit:   env.Int("EVAL_LIMIT", 6),
		RankWorkers: env.Int("RANK_WORKERS", 3),

		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),

		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	keys := append([]string{c.LLMAPIKey}, c.LLMAPIKeyFallbacks...)
	c.LLMPool = engine.NewKeyPool(c.LLMAPIBase, c.LLMModel, keys, c.LLMTemperature, c.LLMMaxTokens)
	if c.LLMPool.Size() == 0 {
		slog.Warn("no LLM API keys configured, relevance checks fall back to rules")
	} else {
		slog.Info("llm key pool ready", slog.Int("keys", c.LLMPool.Size()))
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
