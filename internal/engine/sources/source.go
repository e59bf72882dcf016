// Package sources fetches YouTube playlist and video data through a chain
// of degrading tiers: Data API v3 (when a key is configured), the Innertube
// web API, and finally raw page scraping.
package sources

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

// ErrUnsupported marks an operation a provider cannot serve; the chain
// silently moves on to the next tier.
var ErrUnsupported = errors.New("operation not supported by this source")

// Provider is one tier of the video source chain.
type Provider interface {
	Name() string
	FetchVideo(ctx context.Context, videoID string) (engine.VideoRecord, error)
	FetchPlaylist(ctx context.Context, playlistID string, maxVideos int) (engine.PlaylistRecord, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]engine.PlaylistSummary, error)
}

// Chain tries providers in order and degrades to an empty-but-valid record
// when every tier fails, so callers never have to nil-check.
type Chain struct {
	providers []Provider
}

// NewChain builds a chain over the given providers, tried in order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

var defaultChain = sync.OnceValue(func() *Chain {
	var ps []Provider
	if engine.Cfg.YouTubeAPIKey != "" {
		ps = append(ps, NewDataAPI(engine.Cfg.YouTubeAPIKey, engine.Cfg.YouTubeAPIKeyFallback))
	}
	ps = append(ps, &Innertube{}, &Scrape{})
	return NewChain(ps...)
})

// Default returns the process-wide chain assembled from engine config.
func Default() *Chain {
	return defaultChain()
}

// FetchVideo resolves a video through the chain. Never returns an error:
// when all tiers fail the record carries source "none" and an error marker.
func (c *Chain) FetchVideo(ctx context.Context, videoID string) (engine.VideoRecord, error) {
	var lastErr error
	for _, p := range c.providers {
		v, err := p.FetchVideo(ctx, videoID)
		if err == nil {
			v.Source = p.Name()
			if v.URL == "" {
				v.URL = WatchURL(videoID)
			}
			return v, nil
		}
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		lastErr = err
		slog.Debug("sources: video tier failed",
			slog.String("tier", p.Name()), slog.String("id", videoID), slog.Any("error", err))
	}
	return emptyVideo(videoID, lastErr), nil
}

// FetchPlaylist resolves a playlist through the chain, then normalizes the
// title, backfills the aggregate view count from the playlist page, and
// enriches the first video with per-video detail. When all tiers fail the
// returned record is empty but valid, with source "none".
func (c *Chain) FetchPlaylist(ctx context.Context, playlistID string, maxVideos int) (engine.PlaylistRecord, error) {
	var lastErr error
	for _, p := range c.providers {
		pl, err := p.FetchPlaylist(ctx, playlistID, maxVideos)
		if err == nil {
			pl.Source = p.Name()
			c.finishPlaylist(ctx, &pl)
			return pl, nil
		}
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		lastErr = err
		slog.Debug("sources: playlist tier failed",
			slog.String("tier", p.Name()), slog.String("id", playlistID), slog.Any("error", err))
	}
	return emptyPlaylist(playlistID, lastErr), nil
}

// SearchPlaylists returns playlist search hits from the first tier that
// produces any. An empty result set from a healthy tier is final.
func (c *Chain) SearchPlaylists(ctx context.Context, query string, limit int) ([]engine.PlaylistSummary, error) {
	var lastErr error
	for _, p := range c.providers {
		hits, err := p.SearchPlaylists(ctx, query, limit)
		if err == nil {
			return hits, nil
		}
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		lastErr = err
		slog.Debug("sources: search tier failed",
			slog.String("tier", p.Name()), slog.Any("error", err))
	}
	if lastErr == nil {
		lastErr = errors.New("no search-capable source configured")
	}
	return nil, lastErr
}

func (c *Chain) finishPlaylist(ctx context.Context, pl *engine.PlaylistRecord) {
	pl.Title = engine.NormalizeTitle(pl.Title)
	if pl.VideoCount == 0 {
		pl.VideoCount = len(pl.Videos)
	}
	if pl.URL == "" {
		pl.URL = PlaylistURL(pl.ID)
	}

	// Aggregate view count shows only on the playlist page itself.
	if pl.DirectViews == nil {
		if views := DirectPlaylistViews(ctx, pl.ID); views != nil {
			pl.DirectViews = views
		}
	}

	// Per-video statistics are expensive; the first video stands in for the
	// playlist when scoring recency, likes and draw.
	if len(pl.Videos) > 0 && needsDetail(pl.Videos[0]) {
		engine.IncrDetailFetch()
		detail, err := c.FetchVideo(ctx, pl.Videos[0].ID)
		if err == nil && detail.Source != "none" {
			pl.Videos[0] = pl.Videos[0].Merged(detail)
		}
	}
}

func needsDetail(v engine.VideoRecord) bool {
	return v.Views == nil || v.DurationSeconds == nil || v.PublishedAt == ""
}

func emptyVideo(videoID string, err error) engine.VideoRecord {
	v := engine.VideoRecord{
		ID:     videoID,
		URL:    WatchURL(videoID),
		Source: "none",
	}
	if err != nil {
		v.Error = err.Error()
	} else {
		v.Error = "all sources failed"
	}
	return v
}

func emptyPlaylist(playlistID string, err error) engine.PlaylistRecord {
	pl := engine.PlaylistRecord{
		ID:     playlistID,
		URL:    PlaylistURL(playlistID),
		Videos: []engine.VideoRecord{},
		Source: "none",
	}
	if err != nil {
		pl.Error = err.Error()
	} else {
		pl.Error = "all sources failed"
	}
	return pl
}
