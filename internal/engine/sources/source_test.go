package sources

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

func init() {
	engine.Init(engine.Config{
		HTTPClient:          &http.Client{Timeout: time.Second},
		PlaylistMaxVideos:   500,
		PlaylistMaxPages:    20,
		PlaylistFetchBudget: 60 * time.Second,
	})
}

// fakeProvider scripts per-operation outcomes for chain tests.
type fakeProvider struct {
	name        string
	video       engine.VideoRecord
	videoErr    error
	playlist    engine.PlaylistRecord
	playlistErr error
	calls       int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) FetchVideo(ctx context.Context, id string) (engine.VideoRecord, error) {
	f.calls++
	return f.video, f.videoErr
}

func (f *fakeProvider) FetchPlaylist(ctx context.Context, id string, maxVideos int) (engine.PlaylistRecord, error) {
	f.calls++
	return f.playlist, f.playlistErr
}

func (f *fakeProvider) SearchPlaylists(ctx context.Context, q string, limit int) ([]engine.PlaylistSummary, error) {
	f.calls++
	return nil, ErrUnsupported
}

func intp(n int64) *int64 { return &n }

func TestChainFetchVideoFallback(t *testing.T) {
	broken := &fakeProvider{name: "dataapi", videoErr: errors.New("quota exceeded")}
	working := &fakeProvider{name: "innertube", video: engine.VideoRecord{ID: "dQw4w9WgXcQ", Title: "Video", Views: intp(100)}}

	chain := NewChain(broken, working)
	v, err := chain.FetchVideo(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Source != "innertube" {
		t.Errorf("source = %q, want innertube", v.Source)
	}
	if broken.calls != 1 || working.calls != 1 {
		t.Errorf("call counts: broken=%d working=%d", broken.calls, working.calls)
	}
}

func TestChainSkipsUnsupported(t *testing.T) {
	unsupported := &fakeProvider{name: "dataapi", videoErr: ErrUnsupported}
	working := &fakeProvider{name: "scrape", video: engine.VideoRecord{ID: "dQw4w9WgXcQ"}}

	chain := NewChain(unsupported, working)
	v, err := chain.FetchVideo(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Source != "scrape" {
		t.Errorf("source = %q, want scrape", v.Source)
	}
}

func TestChainAllFailedYieldsEmptyValidVideo(t *testing.T) {
	chain := NewChain(
		&fakeProvider{name: "a", videoErr: errors.New("down")},
		&fakeProvider{name: "b", videoErr: errors.New("also down")},
	)
	v, err := chain.FetchVideo(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("chain must not fail outright: %v", err)
	}
	if v.Source != "none" {
		t.Errorf("source = %q, want none", v.Source)
	}
	if v.Error == "" {
		t.Error("expected error marker on empty record")
	}
	if v.ID != "dQw4w9WgXcQ" || v.URL == "" {
		t.Errorf("empty record should keep identity: %+v", v)
	}
	if v.Views != nil {
		t.Error("empty record must not carry view data")
	}
}

func TestChainAllFailedYieldsEmptyValidPlaylist(t *testing.T) {
	chain := NewChain(&fakeProvider{name: "a", playlistErr: errors.New("down")})
	pl, err := chain.FetchPlaylist(context.Background(), "PLabc123456789", 50)
	if err != nil {
		t.Fatalf("chain must not fail outright: %v", err)
	}
	if pl.Source != "none" || pl.Error == "" {
		t.Errorf("expected marked empty playlist, got %+v", pl)
	}
	if pl.Videos == nil || len(pl.Videos) != 0 {
		t.Errorf("expected empty (non-nil) video list, got %v", pl.Videos)
	}
}

func TestChainNormalizesPlaylistTitle(t *testing.T) {
	p := &fakeProvider{name: "dataapi", playlist: engine.PlaylistRecord{
		ID:    "PLabc123456789",
		Title: "Python\n\nCourse   2025",
		Videos: []engine.VideoRecord{
			{ID: "aaaaaaaaaaa", Title: "Intro", Views: intp(10), DurationSeconds: intp(60), PublishedAt: "2025-01-01"},
		},
		DirectViews: intp(1000),
	}}
	chain := NewChain(p)
	pl, err := chain.FetchPlaylist(context.Background(), "PLabc123456789", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pl.Title != "Python Course 2025" {
		t.Errorf("title = %q, want normalized", pl.Title)
	}
	if pl.VideoCount != 1 {
		t.Errorf("video count = %d, want 1", pl.VideoCount)
	}
}

func TestExtractIDs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		vid  string
		pid  string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", ""},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", ""},
		{"watch with list", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLillGF-RfqbbnEGy3ROiLWk7JMCuSyQtX", "dQw4w9WgXcQ", "PLillGF-RfqbbnEGy3ROiLWk7JMCuSyQtX"},
		{"playlist url", "https://www.youtube.com/playlist?list=PLillGF-RfqbbnEGy3ROiLWk7JMCuSyQtX", "", "PLillGF-RfqbbnEGy3ROiLWk7JMCuSyQtX"},
		{"bare video id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", ""},
		{"bare playlist id", "PLillGF-RfqbbnEGy3ROiLWk7JMCuSyQtX", "", "PLillGF-RfqbbnEGy3ROiLWk7JMCuSyQtX"},
		{"garbage", "not a url at all", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVideoID(tt.in); got != tt.vid {
				t.Errorf("ExtractVideoID = %q, want %q", got, tt.vid)
			}
			if got := ExtractPlaylistID(tt.in); got != tt.pid {
				t.Errorf("ExtractPlaylistID = %q, want %q", got, tt.pid)
			}
		})
	}
}
