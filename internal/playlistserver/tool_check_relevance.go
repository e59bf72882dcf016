package playlistserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/anatolykoptev/go_playlist/internal/engine/rank"
	"github.com/anatolykoptev/go_playlist/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxRelevanceBatch = 50

func registerCheckRelevance(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_relevance",
		Description: "Judge whether playlist titles are educational content about a technology. One batched LLM call for all titles, with a rule-based fallback when the LLM is unavailable. Returns per-title relevance, confidence and reasoning.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.CheckRelevanceInput) (*mcp.CallToolResult, engine.CheckRelevanceOutput, error) {
		if len(input.Titles) == 0 {
			return nil, engine.CheckRelevanceOutput{}, fmt.Errorf("titles are required")
		}
		if input.Technology == "" {
			return nil, engine.CheckRelevanceOutput{}, fmt.Errorf("technology is required")
		}
		if len(input.Titles) > maxRelevanceBatch {
			return nil, engine.CheckRelevanceOutput{}, fmt.Errorf("at most %d titles per call", maxRelevanceBatch)
		}
		engine.IncrRelevanceRequests()

		cacheKey := engine.CacheKey("relevance", input.Technology, strings.Join(input.Titles, "\x00"))
		if out, ok := toolutil.CacheLoadJSON[engine.CheckRelevanceOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		verdicts, method := rank.ClassifyTitles(ctx, input.Titles, input.Technology)
		out := engine.CheckRelevanceOutput{
			Technology: input.Technology,
			Method:     method,
			Results:    verdicts,
		}

		toolutil.CacheStoreJSON(ctx, cacheKey, input.Technology, out)
		return nil, out, nil
	})
}
