// Package playlistserver wires the playlist evaluation engine into MCP
// tools: ranking, scoring, relevance checking, and the raw fetch surface.
package playlistserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all playlist evaluation tools on the given MCP
// server: find_best_playlist, score_playlist, check_relevance,
// search_playlists, playlist_videos, video_details.
func RegisterTools(server *mcp.Server) {
	registerFindBestPlaylist(server)
	registerScorePlaylist(server)
	registerCheckRelevance(server)
	registerSearchPlaylists(server)
	registerPlaylistVideos(server)
	registerVideoDetails(server)
}
