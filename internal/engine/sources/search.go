package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

// Playlist search by scraping the results page with the playlists-only
// filter applied, same as clicking Filters → Playlist in the UI.
const ytPlaylistFilter = "EgIQAw=="

func (s *Scrape) SearchPlaylists(ctx context.Context, query string, limit int) ([]engine.PlaylistSummary, error) {
	engine.IncrScrape()

	searchURL := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query) +
		"&sp=" + url.QueryEscape(ytPlaylistFilter)

	page, err := engine.FetchPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	data := extractInitialData(page)
	if data == nil {
		return nil, fmt.Errorf("ytInitialData not found in search results")
	}

	hits := extractSearchPlaylists(data, limit)
	if len(hits) == 0 {
		return nil, fmt.Errorf("no playlists found for %q", query)
	}
	return hits, nil
}

// ytPlaylistRenderer is the classic search result shape.
type ytPlaylistRenderer struct {
	PlaylistID      string   `json:"playlistId"`
	Title           runsText `json:"title"`
	ShortBylineText runsText `json:"shortBylineText"`
	VideoCount      string   `json:"videoCount"`
}

// extractSearchPlaylists walks search-results ytInitialData for playlist
// entries. YouTube ships two layouts: the classic playlistRenderer and the
// newer lockupViewModel; both appear in the wild depending on bucketing.
func extractSearchPlaylists(data []byte, limit int) []engine.PlaylistSummary {
	var hits []engine.PlaylistSummary
	seen := make(map[string]bool)

	add := func(h engine.PlaylistSummary) {
		if h.ID == "" || seen[h.ID] || len(hits) >= limit {
			return
		}
		seen[h.ID] = true
		h.Title = engine.NormalizeTitle(h.Title)
		if h.URL == "" {
			h.URL = PlaylistURL(h.ID)
		}
		hits = append(hits, h)
	}

	walkJSON(data, func(obj map[string]json.RawMessage) bool {
		if raw, ok := obj["playlistRenderer"]; ok {
			var pr ytPlaylistRenderer
			if json.Unmarshal(raw, &pr) == nil {
				count := pr.VideoCount
				if count != "" {
					count += " videos"
				}
				add(engine.PlaylistSummary{
					ID:             pr.PlaylistID,
					Title:          pr.Title.String(),
					Channel:        pr.ShortBylineText.String(),
					VideoCountText: count,
				})
			}
		}
		if raw, ok := obj["lockupViewModel"]; ok {
			var lv struct {
				ContentID   string `json:"contentId"`
				ContentType string `json:"contentType"`
				Metadata    struct {
					LockupMetadataViewModel struct {
						Title struct {
							Content string `json:"content"`
						} `json:"title"`
					} `json:"lockupMetadataViewModel"`
				} `json:"metadata"`
			}
			if json.Unmarshal(raw, &lv) == nil && lv.ContentType == "LOCKUP_CONTENT_TYPE_PLAYLIST" {
				add(engine.PlaylistSummary{
					ID:    lv.ContentID,
					Title: lv.Metadata.LockupMetadataViewModel.Title.Content,
				})
			}
		}
		return len(hits) < limit
	})
	return hits
}
