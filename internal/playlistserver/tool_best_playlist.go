package playlistserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/anatolykoptev/go_playlist/internal/engine/rank"
	"github.com/anatolykoptev/go_playlist/internal/engine/sources"
	"github.com/anatolykoptev/go_playlist/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerFindBestPlaylist(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_best_playlist",
		Description: "Find the best educational YouTube playlist for a technology. Searches playlists, checks each title's relevance with an LLM, scores candidates on video count, views, duration, recency and engagement, and returns them ranked. Stops early when an exceptional playlist (score >= 8.0) is found.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.BestPlaylistInput) (*mcp.CallToolResult, engine.BestPlaylistOutput, error) {
		if input.Query == "" {
			return nil, engine.BestPlaylistOutput{}, fmt.Errorf("query is required")
		}
		engine.IncrRankRequests()

		cacheKey := engine.CacheKey("best", input.Query, fmt.Sprint(input.Limit))
		if out, ok := toolutil.CacheLoadJSON[engine.BestPlaylistOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		var out engine.BestPlaylistOutput
		err := engine.TrackOperation(ctx, "find_best_playlist", func(ctx context.Context) error {
			var err error
			out, err = rank.FindBest(ctx, sources.Default(), input.Query, input.Limit)
			return err
		})
		if err != nil {
			return nil, engine.BestPlaylistOutput{}, fmt.Errorf("ranking failed: %w", err)
		}

		toolutil.CacheStoreJSON(ctx, cacheKey, input.Query, out)
		return nil, out, nil
	})
}
