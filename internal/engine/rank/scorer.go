package rank

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

// DetailFetcher supplies per-video detail for the first-video enrichment.
// *sources.Chain satisfies it.
type DetailFetcher interface {
	FetchVideo(ctx context.Context, videoID string) (engine.VideoRecord, error)
}

// Score rates a playlist on seven weighted signals. The gates come first:
// a playlist judged not relevant, or one with no videos at all, is rejected
// outright with a zero breakdown. Total is exactly the sum of the sub-scores.
func Score(ctx context.Context, pl engine.PlaylistRecord, relevance *engine.RelevanceVerdict, details DetailFetcher) engine.CandidateResult {
	res := engine.CandidateResult{
		Playlist:  pl,
		Relevance: relevance,
	}

	if relevance != nil && !relevance.Relevant {
		res.Verdict = engine.VerdictReject
		return res
	}
	if videoCount(pl) == 0 {
		res.Verdict = engine.VerdictReject
		return res
	}

	first := firstVideo(ctx, pl, details)

	b := engine.ScoreBreakdown{
		VideoCount: videoCountScore(videoCount(pl)),
		TotalViews: totalViewsScore(totalViews(pl)),
		AvgViews:   avgViewsScore(pl),
		Duration:   durationScore(pl),
		Recency:    recencyScore(first, time.Now()),
		LikeRatio:  likeRatioScore(first),
		FirstVideo: firstVideoScore(first),
	}
	b.Total = b.VideoCount + b.TotalViews + b.AvgViews + b.Duration + b.Recency + b.LikeRatio + b.FirstVideo

	res.Breakdown = b
	res.Score = b.Total
	res.Verdict = VerdictFor(b.Total)
	return res
}

// VerdictFor maps a total score onto its verdict label.
func VerdictFor(total float64) string {
	switch {
	case total >= 8.0:
		return engine.VerdictExceptional
	case total >= 7.0:
		return engine.VerdictGood
	case total >= 5.0:
		return engine.VerdictAverage
	default:
		return engine.VerdictReject
	}
}

// firstVideo returns the playlist's first video, enriched with detail data
// when its statistics are missing. The playlist itself is never mutated.
func firstVideo(ctx context.Context, pl engine.PlaylistRecord, details DetailFetcher) *engine.VideoRecord {
	if len(pl.Videos) == 0 {
		return nil
	}
	v := pl.Videos[0]
	if details != nil && (v.Views == nil || v.PublishedAt == "" || v.Likes == nil) {
		engine.IncrDetailFetch()
		if detail, err := details.FetchVideo(ctx, v.ID); err == nil {
			v = v.Merged(detail)
		}
	}
	return &v
}

func videoCount(pl engine.PlaylistRecord) int {
	if pl.VideoCount > 0 {
		return pl.VideoCount
	}
	return len(pl.Videos)
}

func videoCountScore(n int) float64 {
	switch {
	case n >= 10:
		return 1.5
	case n >= 5:
		return 1.0
	default:
		return 0.5
	}
}

// totalViews prefers the aggregate scraped from the playlist page and falls
// back to summing per-video counts. The first video may be counted in both
// worlds on different candidates; the comparison stays fair because every
// candidate goes through the same path.
func totalViews(pl engine.PlaylistRecord) int64 {
	if pl.DirectViews != nil {
		return *pl.DirectViews
	}
	var sum int64
	for _, v := range pl.Videos {
		if v.Views != nil {
			sum += *v.Views
		}
	}
	return sum
}

func totalViewsScore(views int64) float64 {
	switch {
	case views >= 1_000_000:
		return 1.8
	case views >= 500_000:
		return 1.5
	case views >= 100_000:
		return 1.0
	default:
		return 0.5
	}
}

// avgViewsScore is average views per video. Unlike totalViews, an absence
// of any view data contributes nothing rather than landing in the lowest
// bracket.
func avgViewsScore(pl engine.PlaylistRecord) float64 {
	n := videoCount(pl)
	if n == 0 {
		return 0
	}

	var total int64
	haveData := false
	if pl.DirectViews != nil {
		total = *pl.DirectViews
		haveData = true
	} else {
		for _, v := range pl.Videos {
			if v.Views != nil {
				total += *v.Views
				haveData = true
			}
		}
	}
	if !haveData {
		return 0
	}

	avg := total / int64(n)
	switch {
	case avg >= 100_000:
		return 1.4
	case avg >= 50_000:
		return 1.0
	case avg >= 10_000:
		return 0.7
	default:
		return 0.3
	}
}

// durationScore compares total known runtime against what a thorough course
// of this length would run: 45, 30 or 15 minutes per video.
func durationScore(pl engine.PlaylistRecord) float64 {
	n := int64(videoCount(pl))
	if n == 0 {
		return 0
	}
	var total int64
	for _, v := range pl.Videos {
		if v.DurationSeconds != nil {
			total += *v.DurationSeconds
		}
	}
	if total == 0 {
		return 0
	}

	const minute = 60
	switch {
	case total >= n*45*minute:
		return 2.0
	case total >= n*30*minute:
		return 1.5
	case total >= n*15*minute:
		return 1.0
	default:
		return 0
	}
}

func recencyScore(first *engine.VideoRecord, now time.Time) float64 {
	if first == nil {
		return 0.1
	}
	year := parsePublishYear(first.PublishedAt, now)
	if year == 0 {
		return 0.1
	}
	switch age := now.Year() - year; {
	case age <= 1:
		return 0.5
	case age <= 2:
		return 0.3
	default:
		return 0.1
	}
}

func likeRatioScore(first *engine.VideoRecord) float64 {
	if first == nil || first.Likes == nil || first.Views == nil || *first.Views == 0 {
		return 0
	}
	ratio := float64(*first.Likes) / float64(*first.Views)
	switch {
	case ratio >= 0.02:
		return 0.8
	case ratio >= 0.01:
		return 0.5
	default:
		return 0.2
	}
}

func firstVideoScore(first *engine.VideoRecord) float64 {
	if first == nil || first.Views == nil {
		return 0
	}
	switch {
	case *first.Views >= 500_000:
		return 1.0
	case *first.Views >= 100_000:
		return 0.7
	default:
		return 0.3
	}
}

var (
	isoDateRE  = regexp.MustCompile(`^(\d{4})-\d{2}(-\d{2})?`)
	compactRE  = regexp.MustCompile(`^(\d{4})\d{4}$`)
	bareYearRE = regexp.MustCompile(`^(\d{4})$`)
	relativeRE = regexp.MustCompile(`(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago`)
)

// parsePublishYear extracts a publish year from the formats sources emit:
// ISO dates ("2023-05-10", RFC3339 timestamps), compact dates ("20230510"),
// bare years, and relative UI text ("2 years ago", "Streamed 3 months ago").
// Returns 0 when the year cannot be determined.
func parsePublishYear(raw string, now time.Time) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if m := isoDateRE.FindStringSubmatch(raw); m != nil {
		y, _ := strconv.Atoi(m[1])
		return plausibleYear(y)
	}
	if m := compactRE.FindStringSubmatch(raw); m != nil {
		y, _ := strconv.Atoi(m[1])
		return plausibleYear(y)
	}
	if m := bareYearRE.FindStringSubmatch(raw); m != nil {
		y, _ := strconv.Atoi(m[1])
		return plausibleYear(y)
	}
	if m := relativeRE.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "year":
			return now.AddDate(-n, 0, 0).Year()
		case "month":
			return now.AddDate(0, -n, 0).Year()
		default:
			return now.Year()
		}
	}
	return 0
}

// plausibleYear rejects garbage like the "1234" in a stray numeric match.
func plausibleYear(y int) int {
	if y < 2005 || y > time.Now().Year()+1 {
		return 0
	}
	return y
}
