package rank

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

// Source is what ranking needs from the video source layer.
// *sources.Chain satisfies it.
type Source interface {
	SearchPlaylists(ctx context.Context, query string, limit int) ([]engine.PlaylistSummary, error)
	FetchPlaylist(ctx context.Context, playlistID string, maxVideos int) (engine.PlaylistRecord, error)
	FetchVideo(ctx context.Context, videoID string) (engine.VideoRecord, error)
}

// FindBest searches for playlists about query, classifies every hit's title
// in one batch, then fetches and scores the surviving candidates
// concurrently. Hits that fail the relevance gate are recorded as rejects
// without ever being fetched and do not consume the evaluation budget. When
// any worker lands an exceptional score the remaining unstarted candidates
// are skipped; scores already in flight finish and still count, so the best
// exceptional playlist found wins, not merely the first.
//
// A failed search is a no-candidates outcome, not a caller error: the only
// error FindBest returns is context cancellation.
func FindBest(ctx context.Context, src Source, query string, evalLimit int) (engine.BestPlaylistOutput, error) {
	out := engine.BestPlaylistOutput{Query: query}

	searchLimit := engine.Cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = 12
	}
	if evalLimit <= 0 {
		evalLimit = engine.Cfg.EvalLimit
	}
	if evalLimit <= 0 {
		evalLimit = 6
	}

	hits, err := src.SearchPlaylists(ctx, query, searchLimit)
	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		slog.Warn("rank: playlist search failed",
			slog.String("query", query), slog.Any("error", err))
		return out, nil
	}
	if len(hits) == 0 {
		return out, nil
	}

	titles := make([]string, len(hits))
	for i, h := range hits {
		titles[i] = h.Title
	}
	verdicts, method := ClassifyTitles(ctx, titles, query)
	slog.Info("rank: candidates classified",
		slog.String("query", query), slog.Int("count", len(hits)), slog.String("method", method))

	type task struct {
		idx     int
		hit     engine.PlaylistSummary
		verdict *engine.RelevanceVerdict
	}
	// ranked keeps the search position so equal scores resolve to the
	// earlier hit, independent of worker completion order.
	type ranked struct {
		idx int
		res engine.CandidateResult
	}

	var queue []task
	var results []ranked
	for i, h := range hits {
		v := &verdicts[i]
		if !v.Relevant {
			results = append(results, ranked{idx: i, res: engine.CandidateResult{
				Playlist:  engine.PlaylistRecord{ID: h.ID, Title: h.Title, Channel: h.Channel, URL: h.URL},
				Relevance: v,
				Verdict:   engine.VerdictReject,
			}})
			continue
		}
		if len(queue) < evalLimit {
			queue = append(queue, task{idx: i, hit: h, verdict: v})
		}
	}

	workers := engine.Cfg.RankWorkers
	if workers <= 0 {
		workers = 3
	}
	if workers > len(queue) {
		workers = len(queue)
	}

	tasks := make(chan task)

	var (
		mu          sync.Mutex
		evaluated   int
		exceptional atomic.Bool
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				// Skip candidates not yet started once an exceptional
				// playlist is on the board. In-flight scores still land.
				if exceptional.Load() || ctx.Err() != nil {
					continue
				}
				pl, err := src.FetchPlaylist(ctx, t.hit.ID, engine.Cfg.PlaylistMaxVideos)
				if err != nil {
					slog.Warn("rank: playlist fetch failed",
						slog.String("id", t.hit.ID), slog.Any("error", err))
					continue
				}
				res := Score(ctx, pl, t.verdict, src)

				mu.Lock()
				evaluated++
				results = append(results, ranked{idx: t.idx, res: res})
				mu.Unlock()

				if res.Verdict == engine.VerdictExceptional {
					exceptional.Store(true)
					slog.Info("rank: exceptional playlist found, stopping early",
						slog.String("id", pl.ID), slog.Float64("score", res.Score))
				}
			}
		}()
	}

	for _, t := range queue {
		tasks <- t
	}
	close(tasks)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].res.Score != results[j].res.Score {
			return results[i].res.Score > results[j].res.Score
		}
		return results[i].idx < results[j].idx
	})

	out.Candidates = make([]engine.CandidateResult, len(results))
	for i, r := range results {
		out.Candidates[i] = r.res
	}
	out.Evaluated = evaluated
	out.Exceptional = exceptional.Load()
	for i := range out.Candidates {
		if out.Candidates[i].Verdict != engine.VerdictReject {
			out.Best = &out.Candidates[i]
			break
		}
	}
	return out, nil
}
