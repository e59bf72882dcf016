package playlistserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/anatolykoptev/go_playlist/internal/engine/sources"
	"github.com/anatolykoptev/go_playlist/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerPlaylistVideos(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "playlist_videos",
		Description: "Fetch a YouTube playlist's video list with available metadata (titles, durations, view counts where exposed). Falls through Data API, Innertube and page scraping; large playlists are paged up to 500 videos.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.PlaylistVideosInput) (*mcp.CallToolResult, engine.PlaylistVideosOutput, error) {
		playlistID := sources.ExtractPlaylistID(input.URL)
		if playlistID == "" {
			return nil, engine.PlaylistVideosOutput{}, fmt.Errorf("no playlist ID in %q", input.URL)
		}

		cacheKey := engine.CacheKey("playlist", playlistID, fmt.Sprint(input.Limit))
		if out, ok := toolutil.CacheLoadJSON[engine.PlaylistVideosOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		pl, err := sources.Default().FetchPlaylist(ctx, playlistID, input.Limit)
		if err != nil {
			return nil, engine.PlaylistVideosOutput{}, fmt.Errorf("fetch playlist: %w", err)
		}

		out := engine.PlaylistVideosOutput{Playlist: pl}
		if pl.Source != "none" {
			toolutil.CacheStoreJSON(ctx, cacheKey, input.URL, out)
		}
		return nil, out, nil
	})
}

func registerVideoDetails(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_details",
		Description: "Fetch metadata for a single YouTube video: title, channel, views, likes, duration and publish date, from the best available source tier.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.VideoDetailsInput) (*mcp.CallToolResult, engine.VideoDetailsOutput, error) {
		videoID := sources.ExtractVideoID(input.URL)
		if videoID == "" {
			return nil, engine.VideoDetailsOutput{}, fmt.Errorf("no video ID in %q", input.URL)
		}

		cacheKey := engine.CacheKey("video", videoID)
		if out, ok := toolutil.CacheLoadJSON[engine.VideoDetailsOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		v, err := sources.Default().FetchVideo(ctx, videoID)
		if err != nil {
			return nil, engine.VideoDetailsOutput{}, fmt.Errorf("fetch video: %w", err)
		}

		out := engine.VideoDetailsOutput{Video: v}
		if v.Source != "none" {
			toolutil.CacheStoreJSON(ctx, cacheKey, input.URL, out)
		}
		return nil, out, nil
	})
}
