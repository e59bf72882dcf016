package sources

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_playlist/internal/engine"
	"golang.org/x/net/html"
)

// Scrape is the tier-3 provider: raw HTML pages. Slowest and most fragile,
// but works with no key and no Innertube access. Playlist fetches see only
// the first ~100 videos the page ships with.
type Scrape struct{}

func (s *Scrape) Name() string { return "scrape" }

func (s *Scrape) FetchPlaylist(ctx context.Context, playlistID string, maxVideos int) (engine.PlaylistRecord, error) {
	engine.IncrScrape()

	pl := engine.PlaylistRecord{
		ID:  playlistID,
		URL: PlaylistURL(playlistID),
	}

	page, err := engine.FetchPage(ctx, pl.URL)
	if err != nil {
		return pl, err
	}

	pl.Title, pl.Channel = scrapePageMeta(page)
	pl.DirectViews = directViewsFromPage(page)

	ceiling := playlistCeiling(maxVideos)
	if data := extractInitialData(page); data != nil {
		pl.Videos, _ = extractPlaylistItems(data, ceiling)
	}
	if len(pl.Videos) == 0 {
		pl.Videos = regexPlaylistVideos(page, ceiling)
	}
	if len(pl.Videos) == 0 {
		return pl, fmt.Errorf("no videos extracted for playlist %s", playlistID)
	}
	return pl, nil
}

// scrapePageMeta reads the playlist title and owner from page metadata.
func scrapePageMeta(page []byte) (title, channel string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", ""
	}
	title = doc.Find(`meta[name="title"]`).AttrOr("content", "")
	if title == "" {
		title = strings.TrimSuffix(doc.Find("title").Text(), " - YouTube")
	}
	channel = doc.Find(`link[itemprop="name"]`).AttrOr("content", "")
	return title, channel
}

var scrapeVideoRE = regexp.MustCompile(`"playlistVideoRenderer":\{"videoId":"([a-zA-Z0-9_-]{11})"`)

// regexPlaylistVideos is the last-ditch extraction when the ytInitialData
// blob cannot be parsed as JSON. IDs only; titles come from detail fetches.
func regexPlaylistVideos(page []byte, limit int) []engine.VideoRecord {
	var videos []engine.VideoRecord
	seen := make(map[string]bool)
	for _, m := range scrapeVideoRE.FindAllSubmatch(page, -1) {
		id := string(m[1])
		if seen[id] {
			continue
		}
		seen[id] = true
		videos = append(videos, engine.VideoRecord{ID: id, URL: WatchURL(id)})
		if len(videos) >= limit {
			break
		}
	}
	return videos
}

// Aggregate playlist view count as rendered on the playlist page, in the
// order the layouts appeared. Later layouts first.
var directViewPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"viewCountText":\{"simpleText":"([\d,.KMB]+) views?"`),
	regexp.MustCompile(`"stats":\[[^\]]*?"simpleText":"([\d,]+) views?"`),
	regexp.MustCompile(`([\d,]{4,}) views`),
}

// directViewsFromPage picks the aggregate view count out of playlist page
// HTML. Pages repeat the number in several widgets; when a pattern matches
// more than once the most frequent value wins, which shakes off per-video
// counts caught by the looser patterns.
func directViewsFromPage(page []byte) *int64 {
	for _, re := range directViewPatterns {
		matches := re.FindAllSubmatch(page, -1)
		if len(matches) == 0 {
			continue
		}
		freq := make(map[string]int)
		order := make([]string, 0, len(matches))
		for _, m := range matches {
			s := string(m[1])
			if freq[s] == 0 {
				order = append(order, s)
			}
			freq[s]++
		}
		best := order[0]
		for _, s := range order {
			if freq[s] > freq[best] {
				best = s
			}
		}
		n := parseApproxCount(best)
		if n < 0 {
			n = parseDigits(best)
		}
		if n >= 0 {
			return &n
		}
	}
	return nil
}

// DirectPlaylistViews fetches the playlist page just for its aggregate view
// count. Best-effort: nil on any failure.
func DirectPlaylistViews(ctx context.Context, playlistID string) *int64 {
	page, err := engine.FetchPage(ctx, PlaylistURL(playlistID))
	if err != nil {
		return nil
	}
	return directViewsFromPage(page)
}

// --- video details from the watch page ---

var (
	watchViewsRE   = regexp.MustCompile(`"viewCount":"(\d+)"`)
	watchLengthRE  = regexp.MustCompile(`"lengthSeconds":"(\d+)"`)
	watchDateRE    = regexp.MustCompile(`"publishDate":"([^"]+)"`)
	watchChannelRE = regexp.MustCompile(`"ownerChannelName":"([^"]+)"`)
	watchLikesREs  = []*regexp.Regexp{
		regexp.MustCompile(`"label":"([\d,]+) likes"`),
		regexp.MustCompile(`likeCount":"?(\d+)`),
	}
)

func (s *Scrape) FetchVideo(ctx context.Context, videoID string) (engine.VideoRecord, error) {
	engine.IncrScrape()

	page, err := engine.FetchPage(ctx, WatchURL(videoID))
	if err != nil {
		return engine.VideoRecord{}, err
	}

	v := engine.VideoRecord{
		ID:    videoID,
		URL:   WatchURL(videoID),
		Title: engine.NormalizeTitle(metaContent(page, "title")),
	}
	if v.Title == "" {
		return v, fmt.Errorf("watch page for %s has no title metadata", videoID)
	}

	if m := watchViewsRE.FindSubmatch(page); m != nil {
		if n := parseDigits(string(m[1])); n >= 0 {
			v.Views = &n
		}
	}
	for _, re := range watchLikesREs {
		if m := re.FindSubmatch(page); m != nil {
			if n := parseDigits(string(m[1])); n >= 0 {
				v.Likes = &n
				break
			}
		}
	}
	if m := watchLengthRE.FindSubmatch(page); m != nil {
		if n := parseDigits(string(m[1])); n >= 0 {
			v.DurationSeconds = &n
		}
	}
	if m := watchDateRE.FindSubmatch(page); m != nil {
		v.PublishedAt = string(m[1])
	}
	if m := watchChannelRE.FindSubmatch(page); m != nil {
		v.Channel = string(m[1])
	}
	return v, nil
}

// metaContent walks the parsed HTML tree for <meta name=X content=...>.
// Watch pages are too mangled for CSS selectors once consent interstitials
// inject themselves, so this works on the raw node tree.
func metaContent(page []byte, name string) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var metaName, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "name", "property":
					metaName = a.Val
				case "content":
					content = a.Val
				}
			}
			if (metaName == name || metaName == "og:"+name) && content != "" {
				found = content
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}
