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

func registerScorePlaylist(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "score_playlist",
		Description: "Score a single YouTube playlist's educational quality (0-10) with a per-signal breakdown. Pass a query to also gate on topic relevance: an off-topic playlist is rejected with score 0.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ScorePlaylistInput) (*mcp.CallToolResult, engine.ScorePlaylistOutput, error) {
		playlistID := sources.ExtractPlaylistID(input.URL)
		if playlistID == "" {
			return nil, engine.ScorePlaylistOutput{}, fmt.Errorf("no playlist ID in %q", input.URL)
		}
		engine.IncrScoreRequests()

		cacheKey := engine.CacheKey("score", playlistID, input.Query)
		if out, ok := toolutil.CacheLoadJSON[engine.ScorePlaylistOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		chain := sources.Default()
		pl, err := chain.FetchPlaylist(ctx, playlistID, engine.Cfg.PlaylistMaxVideos)
		if err != nil {
			return nil, engine.ScorePlaylistOutput{}, fmt.Errorf("fetch playlist: %w", err)
		}
		if pl.Source == "none" {
			return nil, engine.ScorePlaylistOutput{}, fmt.Errorf("playlist %s unavailable: %s", playlistID, pl.Error)
		}

		var verdict *engine.RelevanceVerdict
		if input.Query != "" {
			verdicts, _ := rank.ClassifyTitles(ctx, []string{pl.Title}, input.Query)
			verdict = &verdicts[0]
		}

		res := rank.Score(ctx, pl, verdict, chain)
		out := engine.ScorePlaylistOutput{
			URL:       pl.URL,
			Title:     pl.Title,
			Score:     res.Score,
			Verdict:   res.Verdict,
			Breakdown: res.Breakdown,
			Relevance: res.Relevance,
		}

		toolutil.CacheStoreJSON(ctx, cacheKey, input.URL, out)
		return nil, out, nil
	})
}
