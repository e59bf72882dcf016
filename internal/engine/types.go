package engine

// --- Core playlist domain types ---

// VideoRecord is a single video as seen by any source tier.
// Count fields are pointers: nil means the source simply did not expose
// the value, which scoring treats differently from an actual zero.
type VideoRecord struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Channel         string `json:"channel,omitempty"`
	URL             string `json:"url"`
	Views           *int64 `json:"views,omitempty"`
	Likes           *int64 `json:"likes,omitempty"`
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
	PublishedAt     string `json:"published_at,omitempty"` // ISO date, YYYYMMDD, bare year, or relative ("2 years ago")
	Source          string `json:"source,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Merged returns a copy of v with missing fields filled from detail.
// Fields already present on v win; records are never mutated in place.
func (v VideoRecord) Merged(detail VideoRecord) VideoRecord {
	out := v
	if out.Title == "" {
		out.Title = detail.Title
	}
	if out.Channel == "" {
		out.Channel = detail.Channel
	}
	if out.Views == nil {
		out.Views = detail.Views
	}
	if out.Likes == nil {
		out.Likes = detail.Likes
	}
	if out.DurationSeconds == nil {
		out.DurationSeconds = detail.DurationSeconds
	}
	if out.PublishedAt == "" {
		out.PublishedAt = detail.PublishedAt
	}
	return out
}

// PlaylistRecord is a fully fetched playlist with its videos.
type PlaylistRecord struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Channel     string        `json:"channel,omitempty"`
	URL         string        `json:"url"`
	VideoCount  int           `json:"video_count"`
	Videos      []VideoRecord `json:"videos"`
	DirectViews *int64        `json:"direct_views,omitempty"` // aggregate view count scraped from the playlist page
	Source      string        `json:"source,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// PlaylistSummary is a lightweight search hit, before the playlist is fetched.
type PlaylistSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Channel        string `json:"channel,omitempty"`
	URL            string `json:"url"`
	VideoCountText string `json:"video_count_text,omitempty"` // as shown in search results, e.g. "150 videos"
}

// RelevanceVerdict is the classifier's judgement for one playlist title.
type RelevanceVerdict struct {
	Title        string   `json:"title"`
	Relevant     bool     `json:"is_relevant"`
	Confidence   float64  `json:"confidence"` // always clamped to [0,1]
	Reason       string   `json:"reason,omitempty"`
	Technologies []string `json:"technologies,omitempty"` // canonical tech tags detected in the title
}

// ScoreBreakdown holds the seven weighted quality sub-scores.
// Total is always the exact sum of the seven components.
type ScoreBreakdown struct {
	VideoCount float64 `json:"video_count"`
	TotalViews float64 `json:"total_views"`
	AvgViews   float64 `json:"avg_views"`
	Duration   float64 `json:"duration"`
	Recency    float64 `json:"recency"`
	LikeRatio  float64 `json:"like_ratio"`
	FirstVideo float64 `json:"first_video"`
	Total      float64 `json:"total"`
}

// Verdict labels mapped from the total score.
const (
	VerdictExceptional = "EXCEPTIONAL" // >= 8.0, ranking may stop early
	VerdictGood        = "GOOD"        // >= 7.0
	VerdictAverage     = "AVERAGE"     // >= 5.0
	VerdictReject      = "REJECT"
)

// CandidateResult is one scored playlist in a ranking run.
type CandidateResult struct {
	Playlist  PlaylistRecord    `json:"playlist"`
	Relevance *RelevanceVerdict `json:"relevance,omitempty"`
	Breakdown ScoreBreakdown    `json:"breakdown"`
	Score     float64           `json:"score"`
	Verdict   string            `json:"verdict"`
}

// --- MCP tool inputs ---

type BestPlaylistInput struct {
	Query string `json:"query" jsonschema:"Technology or topic to find the best educational playlist for, e.g. 'python' or 'react hooks'"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max candidates to evaluate (default: 6)"`
}

type ScorePlaylistInput struct {
	URL   string `json:"url" jsonschema:"YouTube playlist URL or bare playlist ID"`
	Query string `json:"query,omitempty" jsonschema:"Technology the playlist is expected to teach; enables the relevance gate"`
}

type CheckRelevanceInput struct {
	Titles     []string `json:"titles" jsonschema:"Playlist titles to judge"`
	Technology string   `json:"technology" jsonschema:"Target technology, e.g. 'javascript'"`
}

type SearchPlaylistsInput struct {
	Query string `json:"query" jsonschema:"Search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max playlists to return (default: 12)"`
}

type PlaylistVideosInput struct {
	URL   string `json:"url" jsonschema:"YouTube playlist URL or bare playlist ID"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max videos to fetch (default: all, capped at 500)"`
}

type VideoDetailsInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL or bare 11-char video ID"`
}

// --- MCP tool outputs ---

type BestPlaylistOutput struct {
	Query       string            `json:"query"`
	Best        *CandidateResult  `json:"best,omitempty"`
	Candidates  []CandidateResult `json:"candidates"`
	Evaluated   int               `json:"evaluated"`
	Exceptional bool              `json:"exceptional"` // true when ranking stopped early on an exceptional score
}

type ScorePlaylistOutput struct {
	URL       string            `json:"url"`
	Title     string            `json:"title"`
	Score     float64           `json:"score"`
	Verdict   string            `json:"verdict"`
	Breakdown ScoreBreakdown    `json:"breakdown"`
	Relevance *RelevanceVerdict `json:"relevance,omitempty"`
}

type CheckRelevanceOutput struct {
	Technology string             `json:"technology"`
	Method     string             `json:"method"` // "llm", "rules", or "mixed"
	Results    []RelevanceVerdict `json:"results"`
}

type SearchPlaylistsOutput struct {
	Query     string            `json:"query"`
	Total     int               `json:"total"`
	Playlists []PlaylistSummary `json:"playlists"`
}

type PlaylistVideosOutput struct {
	Playlist PlaylistRecord `json:"playlist"`
}

type VideoDetailsOutput struct {
	Video VideoRecord `json:"video"`
}
