package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

// Innertube is the tier-2 provider: YouTube's internal web API. No key, no
// quota, and the only non-API way to page through playlists past the first
// hundred videos via continuation tokens.
type Innertube struct{}

const (
	ytBrowseURL      = "https://www.youtube.com/youtubei/v1/browse"
	ytPlayerURL      = "https://www.youtube.com/youtubei/v1/player"
	ytWebVersion     = "2.20250222.10.00"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

func (in *Innertube) Name() string { return "innertube" }

// --- client contexts ---

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type ytWebClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

type ytWebUser struct {
	EnableSafetyMode bool `json:"enableSafetyMode"`
}

type ytWebReqCtx struct {
	UseSsl bool `json:"useSsl"`
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

// ytWebContext builds the standard WEB client context for Innertube payloads.
func ytWebContext(visitorData string) map[string]any {
	return map[string]any{
		"client": ytWebClientCtx{
			ClientName:    "WEB",
			ClientVersion: ytWebVersion,
			VisitorData:   visitorData,
			Hl:            "en",
			Gl:            "US",
		},
		"user":    ytWebUser{EnableSafetyMode: false},
		"request": ytWebReqCtx{UseSsl: true},
	}
}

// postInnerTubeWEB POSTs to a YouTube Innertube endpoint with WEB client headers.
// Uses engine.Cfg.HTTPClient and engine.RetryHTTP for consistent retry/timeout behavior.
func postInnerTubeWEB(ctx context.Context, endpoint string, payload any, visitorData string) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?prettyPrint=false", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("X-Youtube-Client-Name", "1")
		req.Header.Set("X-Youtube-Client-Version", ytWebVersion)
		req.Header.Set("X-Goog-Visitor-Id", visitorData)
		req.Header.Set("Origin", "https://www.youtube.com")
		req.Header.Set("Referer", "https://www.youtube.com/")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("innertube WEB [%s]: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 3*1024*1024))
}

// postInnerTubeAndroid POSTs with ANDROID client headers. The /player
// endpoint serves unthrottled video details to the Android client.
func postInnerTubeAndroid(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?prettyPrint=false", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("innertube ANDROID [%s]: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 3*1024*1024))
}

// --- video details via /player ---

type innertubePlayerResp struct {
	VideoDetails *struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		Author        string `json:"author"`
		ViewCount     string `json:"viewCount"`
		LengthSeconds string `json:"lengthSeconds"`
	} `json:"videoDetails"`
	Microformat *struct {
		PlayerMicroformatRenderer struct {
			PublishDate string `json:"publishDate"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

func (in *Innertube) FetchVideo(ctx context.Context, videoID string) (engine.VideoRecord, error) {
	engine.IncrInnertube()

	payload := map[string]any{
		"videoId": videoID,
		"context": map[string]any{
			"client": innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		"racyCheckOk":    true,
		"contentCheckOk": true,
	}

	body, err := postInnerTubeAndroid(ctx, ytPlayerURL, payload)
	if err != nil {
		return engine.VideoRecord{}, err
	}

	var pr innertubePlayerResp
	if err := json.Unmarshal(body, &pr); err != nil {
		return engine.VideoRecord{}, fmt.Errorf("decode player response: %w", err)
	}
	if pr.VideoDetails == nil {
		reason := "no video details"
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Reason != "" {
			reason = pr.PlayabilityStatus.Reason
		}
		return engine.VideoRecord{}, fmt.Errorf("player: %s", reason)
	}

	v := engine.VideoRecord{
		ID:      pr.VideoDetails.VideoID,
		Title:   engine.NormalizeTitle(pr.VideoDetails.Title),
		Channel: pr.VideoDetails.Author,
		URL:     WatchURL(videoID),
	}
	if n, err := strconv.ParseInt(pr.VideoDetails.ViewCount, 10, 64); err == nil {
		v.Views = &n
	}
	if n, err := strconv.ParseInt(pr.VideoDetails.LengthSeconds, 10, 64); err == nil {
		v.DurationSeconds = &n
	}
	if pr.Microformat != nil {
		v.PublishedAt = pr.Microformat.PlayerMicroformatRenderer.PublishDate
	}
	return v, nil
}

// --- playlist paging via ytInitialData + /browse continuations ---

func (in *Innertube) FetchPlaylist(ctx context.Context, playlistID string, maxVideos int) (engine.PlaylistRecord, error) {
	engine.IncrInnertube()

	pl := engine.PlaylistRecord{
		ID:  playlistID,
		URL: PlaylistURL(playlistID),
	}

	page, err := engine.FetchPage(ctx, pl.URL)
	if err != nil {
		return pl, err
	}
	data := extractInitialData(page)
	if data == nil {
		return pl, fmt.Errorf("ytInitialData not found on playlist page")
	}

	header := extractPlaylistHeader(data)
	pl.Title = header.title
	pl.Channel = header.channel

	ceiling := playlistCeiling(maxVideos)
	deadline := time.Now().Add(engine.Cfg.PlaylistFetchBudget)

	videos, token := extractPlaylistItems(data, ceiling)
	pl.Videos = videos

	visitorData := generateVisitorData()
	for round := 1; round < engine.Cfg.PlaylistMaxPages; round++ {
		if token == "" || len(pl.Videos) >= ceiling || time.Now().After(deadline) {
			break
		}
		payload := map[string]any{
			"context":      ytWebContext(visitorData),
			"continuation": token,
		}
		body, err := postInnerTubeWEB(ctx, ytBrowseURL, payload, visitorData)
		if err != nil {
			break // keep the partial result
		}
		more, next := extractPlaylistItems(body, ceiling-len(pl.Videos))
		if len(more) == 0 {
			break
		}
		pl.Videos = append(pl.Videos, more...)
		token = next
	}

	if len(pl.Videos) == 0 {
		return pl, fmt.Errorf("no videos extracted for playlist %s", playlistID)
	}
	return pl, nil
}

type playlistHeader struct {
	title   string
	channel string
}

// extractPlaylistHeader walks ytInitialData for the playlist title and owner.
func extractPlaylistHeader(data []byte) playlistHeader {
	var h playlistHeader
	walkJSON(data, func(obj map[string]json.RawMessage) bool {
		if raw, ok := obj["playlistHeaderRenderer"]; ok {
			var hdr struct {
				Title     runsText `json:"title"`
				OwnerText runsText `json:"ownerText"`
			}
			if json.Unmarshal(raw, &hdr) == nil {
				h.title = hdr.Title.String()
				h.channel = hdr.OwnerText.String()
				return false
			}
		}
		// Newer layout nests the title in a pageHeaderRenderer.
		if raw, ok := obj["pageHeaderRenderer"]; ok {
			var hdr struct {
				PageTitle string `json:"pageTitle"`
			}
			if json.Unmarshal(raw, &hdr) == nil && hdr.PageTitle != "" && h.title == "" {
				h.title = hdr.PageTitle
			}
		}
		return true
	})
	return h
}

// ytPlaylistVideo mirrors the playlistVideoRenderer fields we keep.
type ytPlaylistVideo struct {
	VideoID         string   `json:"videoId"`
	Title           runsText `json:"title"`
	ShortBylineText runsText `json:"shortBylineText"`
	LengthSeconds   string   `json:"lengthSeconds"`
	LengthText      runsText `json:"lengthText"`
	VideoInfo       runsText `json:"videoInfo"`
}

// extractPlaylistItems walks a ytInitialData or /browse continuation blob,
// collecting playlistVideoRenderer entries and the next continuation token.
func extractPlaylistItems(data []byte, limit int) ([]engine.VideoRecord, string) {
	var videos []engine.VideoRecord
	var token string

	walkJSON(data, func(obj map[string]json.RawMessage) bool {
		if raw, ok := obj["playlistVideoRenderer"]; ok && len(videos) < limit {
			var pv ytPlaylistVideo
			if json.Unmarshal(raw, &pv) == nil && pv.VideoID != "" {
				videos = append(videos, playlistVideoRecord(pv))
			}
		}
		if raw, ok := obj["continuationCommand"]; ok && token == "" {
			var cc struct {
				Token string `json:"token"`
			}
			if json.Unmarshal(raw, &cc) == nil {
				token = cc.Token
			}
		}
		return true
	})
	return videos, token
}

func playlistVideoRecord(pv ytPlaylistVideo) engine.VideoRecord {
	v := engine.VideoRecord{
		ID:      pv.VideoID,
		Title:   engine.NormalizeTitle(pv.Title.String()),
		Channel: pv.ShortBylineText.String(),
		URL:     WatchURL(pv.VideoID),
	}
	if n, err := strconv.ParseInt(pv.LengthSeconds, 10, 64); err == nil && n >= 0 {
		v.DurationSeconds = &n
	} else if n := parseClockDuration(pv.LengthText.String()); n >= 0 {
		// Some web layouts ship only the "12:34" badge text.
		v.DurationSeconds = &n
	}
	// videoInfo runs carry "1.2M views • 2 years ago" on the web layout.
	for _, run := range pv.VideoInfo.Runs {
		if n := parseApproxCount(run.Text); n >= 0 && v.Views == nil {
			v.Views = &n
			continue
		}
		if v.PublishedAt == "" && isRelativeDate(run.Text) {
			v.PublishedAt = run.Text
		}
	}
	return v
}

// isRelativeDate matches UI phrasing like "2 years ago" or "Streamed 3 months ago".
func isRelativeDate(s string) bool {
	return len(s) > 4 && s[len(s)-3:] == "ago"
}

func (in *Innertube) SearchPlaylists(ctx context.Context, query string, limit int) ([]engine.PlaylistSummary, error) {
	// Search goes through the Data API or the scraper; Innertube adds
	// nothing over the scraped results page here.
	return nil, ErrUnsupported
}
