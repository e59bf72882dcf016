package sources

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// DataAPI is the tier-1 provider: YouTube Data API v3. Cheapest in latency
// and the only tier with reliable like counts, but burns daily quota.
// A fallback key takes over when the primary is quota-exhausted.
type DataAPI struct {
	keys []string
}

// NewDataAPI builds the provider over the given keys; empty keys are dropped.
func NewDataAPI(keys ...string) *DataAPI {
	d := &DataAPI{}
	for _, k := range keys {
		if k != "" {
			d.keys = append(d.keys, k)
		}
	}
	return d
}

func (d *DataAPI) Name() string { return "dataapi" }

func (d *DataAPI) service(ctx context.Context, key string) (*youtube.Service, error) {
	return youtube.NewService(ctx, option.WithAPIKey(key))
}

// quotaExhausted reports whether err is a 403 quota error worth key rotation.
func quotaExhausted(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 403 || gerr.Code == 429
	}
	return false
}

// withKeys runs fn per key until one succeeds, rotating on quota errors.
func withKeys[T any](ctx context.Context, d *DataAPI, fn func(svc *youtube.Service) (T, error)) (T, error) {
	var zero T
	if len(d.keys) == 0 {
		return zero, ErrUnsupported
	}
	var lastErr error
	for _, key := range d.keys {
		svc, err := d.service(ctx, key)
		if err != nil {
			lastErr = err
			continue
		}
		out, err := fn(svc)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !quotaExhausted(err) {
			break
		}
	}
	return zero, lastErr
}

func (d *DataAPI) FetchVideo(ctx context.Context, videoID string) (engine.VideoRecord, error) {
	engine.IncrDataAPI()
	return withKeys(ctx, d, func(svc *youtube.Service) (engine.VideoRecord, error) {
		resp, err := svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Id(videoID).Context(ctx).Do()
		if err != nil {
			return engine.VideoRecord{}, fmt.Errorf("videos.list: %w", err)
		}
		if len(resp.Items) == 0 {
			return engine.VideoRecord{}, fmt.Errorf("video %s not found", videoID)
		}
		return dataAPIVideo(resp.Items[0]), nil
	})
}

func dataAPIVideo(item *youtube.Video) engine.VideoRecord {
	v := engine.VideoRecord{
		ID:  item.Id,
		URL: WatchURL(item.Id),
	}
	if item.Snippet != nil {
		v.Title = engine.NormalizeTitle(item.Snippet.Title)
		v.Channel = item.Snippet.ChannelTitle
		v.PublishedAt = item.Snippet.PublishedAt
	}
	if item.Statistics != nil {
		views := int64(item.Statistics.ViewCount)
		v.Views = &views
		// Hidden like counts come back as zero; treat them as unknown.
		if item.Statistics.LikeCount > 0 {
			likes := int64(item.Statistics.LikeCount)
			v.Likes = &likes
		}
	}
	if item.ContentDetails != nil {
		if secs := parseISODuration(item.ContentDetails.Duration); secs >= 0 {
			v.DurationSeconds = &secs
		}
	}
	return v
}

func (d *DataAPI) FetchPlaylist(ctx context.Context, playlistID string, maxVideos int) (engine.PlaylistRecord, error) {
	engine.IncrDataAPI()
	return withKeys(ctx, d, func(svc *youtube.Service) (engine.PlaylistRecord, error) {
		pl := engine.PlaylistRecord{
			ID:  playlistID,
			URL: PlaylistURL(playlistID),
		}

		meta, err := svc.Playlists.List([]string{"snippet", "contentDetails"}).
			Id(playlistID).Context(ctx).Do()
		if err != nil {
			return pl, fmt.Errorf("playlists.list: %w", err)
		}
		if len(meta.Items) == 0 {
			return pl, fmt.Errorf("playlist %s not found", playlistID)
		}
		pl.Title = meta.Items[0].Snippet.Title
		pl.Channel = meta.Items[0].Snippet.ChannelTitle
		if meta.Items[0].ContentDetails != nil {
			pl.VideoCount = int(meta.Items[0].ContentDetails.ItemCount)
		}

		ceiling := playlistCeiling(maxVideos)
		deadline := time.Now().Add(engine.Cfg.PlaylistFetchBudget)
		pageToken := ""
		for page := 0; page < engine.Cfg.PlaylistMaxPages; page++ {
			items, err := svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
				PlaylistId(playlistID).MaxResults(50).PageToken(pageToken).Context(ctx).Do()
			if err != nil {
				if len(pl.Videos) > 0 {
					break // keep the partial result
				}
				return pl, fmt.Errorf("playlistItems.list: %w", err)
			}
			for _, it := range items.Items {
				if skipPlaylistItem(it) {
					continue
				}
				pl.Videos = append(pl.Videos, engine.VideoRecord{
					ID:      it.ContentDetails.VideoId,
					Title:   engine.NormalizeTitle(it.Snippet.Title),
					Channel: it.Snippet.VideoOwnerChannelTitle,
					URL:     WatchURL(it.ContentDetails.VideoId),
				})
				if len(pl.Videos) >= ceiling {
					return pl, nil
				}
			}
			pageToken = items.NextPageToken
			if pageToken == "" || time.Now().After(deadline) {
				break
			}
		}
		return pl, nil
	})
}

// skipPlaylistItem drops private and deleted entries, which carry no video data.
func skipPlaylistItem(it *youtube.PlaylistItem) bool {
	if it.ContentDetails == nil || it.ContentDetails.VideoId == "" {
		return true
	}
	switch it.Snippet.Title {
	case "Private video", "Deleted video":
		return true
	}
	return false
}

func (d *DataAPI) SearchPlaylists(ctx context.Context, query string, limit int) ([]engine.PlaylistSummary, error) {
	engine.IncrDataAPI()
	return withKeys(ctx, d, func(svc *youtube.Service) ([]engine.PlaylistSummary, error) {
		resp, err := svc.Search.List([]string{"snippet"}).
			Q(query).Type("playlist").MaxResults(int64(limit)).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("search.list: %w", err)
		}
		hits := make([]engine.PlaylistSummary, 0, len(resp.Items))
		for _, it := range resp.Items {
			if it.Id == nil || it.Id.PlaylistId == "" {
				continue
			}
			hits = append(hits, engine.PlaylistSummary{
				ID:      it.Id.PlaylistId,
				Title:   engine.NormalizeTitle(it.Snippet.Title),
				Channel: it.Snippet.ChannelTitle,
				URL:     PlaylistURL(it.Id.PlaylistId),
			})
		}
		return hits, nil
	})
}

// playlistCeiling bounds how many videos a single fetch may accumulate.
func playlistCeiling(maxVideos int) int {
	hard := engine.Cfg.PlaylistMaxVideos
	if hard <= 0 {
		hard = 500
	}
	if maxVideos <= 0 || maxVideos > hard {
		return hard
	}
	return maxVideos
}

var isoDurationRE = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration parses ISO 8601 durations as used by the Data API
// ("PT1H2M3S") into seconds. Returns -1 when unparseable.
func parseISODuration(s string) int64 {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return -1
	}
	var total int64
	for i, mult := range []int64{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return -1
		}
		total += n * mult
	}
	return total
}
