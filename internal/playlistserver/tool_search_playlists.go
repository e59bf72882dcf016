package playlistserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/anatolykoptev/go_playlist/internal/engine/sources"
	"github.com/anatolykoptev/go_playlist/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSearchPlaylists(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_playlists",
		Description: "Search YouTube for playlists matching a query. Returns lightweight summaries (title, channel, URL) without fetching playlist contents.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.SearchPlaylistsInput) (*mcp.CallToolResult, engine.SearchPlaylistsOutput, error) {
		if input.Query == "" {
			return nil, engine.SearchPlaylistsOutput{}, fmt.Errorf("query is required")
		}
		engine.IncrSearchRequests()

		limit := input.Limit
		if limit <= 0 || limit > engine.Cfg.SearchLimit {
			limit = engine.Cfg.SearchLimit
		}

		cacheKey := engine.CacheKey("search", input.Query, fmt.Sprint(limit))
		if out, ok := toolutil.CacheLoadJSON[engine.SearchPlaylistsOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		hits, err := sources.Default().SearchPlaylists(ctx, input.Query, limit)
		if err != nil {
			return nil, engine.SearchPlaylistsOutput{}, fmt.Errorf("playlist search: %w", err)
		}

		out := engine.SearchPlaylistsOutput{
			Query:     input.Query,
			Total:     len(hits),
			Playlists: hits,
		}
		toolutil.CacheStoreJSON(ctx, cacheKey, input.Query, out)
		return nil, out, nil
	})
}
