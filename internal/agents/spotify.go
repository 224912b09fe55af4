// Spotify agent: maps each declared tool onto one declarative upstream call.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/services"
)

// Variable names the Spotify agent requires in every execution request.
const (
	VarAccessToken  = "spotify-access"
	VarRefreshToken = "spotify-refresh"
)

// SpotifyAgent implements [Handler] for the Spotify Web API.
//
// Every tool reduces to a {method, path, body} triple fed through
// [services.Client.CallWithRefresh], so the refresh-then-retry-once policy
// is applied uniformly instead of being repeated per tool.
type SpotifyAgent struct {
	client *services.Client
	logger *log.Logger
}

// NewSpotifyAgent creates a SpotifyAgent backed by the given API client.
func NewSpotifyAgent(client *services.Client, logger *log.Logger) *SpotifyAgent {
	if logger == nil {
		logger = log.Default()
	}
	return &SpotifyAgent{client: client, logger: logger}
}

func (s *SpotifyAgent) Tools() []Tool {
	return spotifyTools
}

func (s *SpotifyAgent) Info() Info {
	return Info{
		Tools:     spotifyTools,
		OAuth:     []string{},
		Variables: []string{VarAccessToken, VarRefreshToken},
	}
}

// toolCall is the declarative form of a tool: the upstream request plus an
// optional message replacing the response body for write operations whose
// success payload is empty.
type toolCall struct {
	req  services.Request
	done string
}

// ExecuteTool dispatches by tool name, re-checks credential values, and
// performs the upstream call with transparent token renewal.
func (s *SpotifyAgent) ExecuteTool(ctx context.Context, name string, params map[string]any, creds Credentials) services.Outcome {
	access := creds.Variables[VarAccessToken]
	refresh := creds.Variables[VarRefreshToken]
	if access == "" || refresh == "" {
		return services.Fail(http.StatusBadRequest, "Need spotify token to be able to connect to spotify")
	}

	call, fail := s.resolve(name, params)
	if fail != nil {
		return *fail
	}

	s.logger.Debug("executing tool", "tool", name, "method", call.req.Method, "path", call.req.Path)

	out := s.client.CallWithRefresh(ctx, call.req, access, refresh)
	if out.Success && call.done != "" {
		out.Data = map[string]any{"message": call.done, "status": http.StatusOK}
	}
	return out
}

// resolve maps a tool name and parameter map to its upstream call. The
// switch is exhaustive over the declared catalog; adding a tool means adding
// a descriptor in tools.go and a case here.
func (s *SpotifyAgent) resolve(name string, params map[string]any) (toolCall, *services.Outcome) {
	switch name {
	case "search_tracks":
		return s.searchCall(params, "track")

	case "search_artists":
		return s.searchCall(params, "artist")

	case "create_playlist":
		playlistName, ok := stringParam(params, "name")
		if !ok {
			return missingParam("name")
		}
		description, ok := stringParam(params, "description")
		if !ok {
			description = "Created by the Spotify agent"
		}
		public, _ := boolParam(params, "public")
		return jsonCall(http.MethodPost, "/me/playlists", map[string]any{
			"name":        playlistName,
			"description": description,
			"public":      public,
		}, "")

	case "add_tracks_to_playlist":
		playlistID, ok := stringParam(params, "playlist_id")
		if !ok {
			return missingParam("playlist_id")
		}
		trackIDs, ok := stringSliceParam(params, "track_ids")
		if !ok {
			return missingParam("track_ids")
		}
		position, _ := intParam(params, "position")
		uris := make([]string, len(trackIDs))
		for i, id := range trackIDs {
			uris[i] = "spotify:track:" + id
		}
		return jsonCall(http.MethodPost, "/playlists/"+url.PathEscape(playlistID)+"/tracks", map[string]any{
			"uris":     uris,
			"position": position,
		}, "")

	case "remove_tracks_from_playlist":
		playlistID, ok := stringParam(params, "playlist_id")
		if !ok {
			return missingParam("playlist_id")
		}
		trackIDs, ok := stringSliceParam(params, "track_ids")
		if !ok {
			return missingParam("track_ids")
		}
		tracks := make([]map[string]string, len(trackIDs))
		for i, id := range trackIDs {
			tracks[i] = map[string]string{"uri": "spotify:track:" + id}
		}
		return jsonCall(http.MethodDelete, "/playlists/"+url.PathEscape(playlistID)+"/tracks", map[string]any{
			"tracks": tracks,
		}, "")

	case "get_playlist_items":
		playlistID, ok := stringParam(params, "playlist_id")
		if !ok {
			return missingParam("playlist_id")
		}
		q := url.Values{}
		addInt(q, params, "limit")
		addInt(q, params, "offset")
		return getCall("/playlists/"+url.PathEscape(playlistID)+"/tracks", q)

	case "get_current_playback":
		return getCall("/me/player", nil)

	case "get_recommendations":
		genres, ok := stringSliceParam(params, "seed_genres")
		if !ok {
			return missingParam("seed_genres")
		}
		q := url.Values{}
		q.Set("seed_genres", strings.Join(genres, ","))
		addInt(q, params, "limit")
		addString(q, params, "market")
		return getCall("/recommendations", q)

	case "get_recently_played":
		q := url.Values{}
		addInt(q, params, "limit")
		return getCall("/me/player/recently-played", q)

	case "get_user_profile":
		return getCall("/me", nil)

	case "get_current_user_playlists":
		q := url.Values{}
		addInt(q, params, "limit")
		addInt(q, params, "offset")
		return getCall("/me/playlists", q)

	case "add_custom_playlist_cover_image":
		playlistID, ok := stringParam(params, "playlist_id")
		if !ok {
			return missingParam("playlist_id")
		}
		image, ok := stringParam(params, "image_base64")
		if !ok {
			return missingParam("image_base64")
		}
		return toolCall{
			req: services.Request{
				Method:      http.MethodPut,
				Path:        "/playlists/" + url.PathEscape(playlistID) + "/images",
				Body:        []byte(image),
				ContentType: "image/jpeg",
			},
			done: "Image uploaded",
		}, nil

	case "get_available_genre_seeds":
		return getCall("/recommendations/available-genre-seeds", nil)

	case "save_track_for_user":
		trackIDs, ok := stringSliceParam(params, "track_ids")
		if !ok {
			return missingParam("track_ids")
		}
		q := url.Values{}
		q.Set("ids", strings.Join(trackIDs, ","))
		return toolCall{
			req:  services.Request{Method: http.MethodPut, Path: "/me/tracks?" + q.Encode()},
			done: "Tracks saved",
		}, nil

	case "check_user_saved_tracks":
		trackIDs, ok := stringSliceParam(params, "track_ids")
		if !ok {
			return missingParam("track_ids")
		}
		q := url.Values{}
		q.Set("ids", strings.Join(trackIDs, ","))
		return getCall("/me/tracks/contains", q)

	case "get_user_saved_tracks":
		q := url.Values{}
		addInt(q, params, "limit")
		addInt(q, params, "offset")
		addString(q, params, "market")
		return getCall("/me/tracks", q)

	case "get_new_releases":
		q := url.Values{}
		addString(q, params, "country")
		addInt(q, params, "limit")
		addInt(q, params, "offset")
		return getCall("/browse/new-releases", q)

	case "save_album_for_user":
		albumIDs, ok := stringSliceParam(params, "album_ids")
		if !ok {
			return missingParam("album_ids")
		}
		q := url.Values{}
		q.Set("ids", strings.Join(albumIDs, ","))
		return toolCall{
			req:  services.Request{Method: http.MethodPut, Path: "/me/albums?" + q.Encode()},
			done: "Albums saved",
		}, nil

	case "get_artist_albums":
		artistID, ok := stringParam(params, "artist_id")
		if !ok {
			return missingParam("artist_id")
		}
		q := url.Values{}
		addString(q, params, "include_groups")
		addString(q, params, "market")
		addInt(q, params, "limit")
		addInt(q, params, "offset")
		return getCall("/artists/"+url.PathEscape(artistID)+"/albums", q)

	case "get_artist_top_tracks":
		artistID, ok := stringParam(params, "artist_id")
		if !ok {
			return missingParam("artist_id")
		}
		market, ok := stringParam(params, "market")
		if !ok {
			return missingParam("market")
		}
		q := url.Values{}
		q.Set("market", market)
		return getCall("/artists/"+url.PathEscape(artistID)+"/top-tracks", q)

	default:
		fail := services.Fail(http.StatusNotFound, fmt.Sprintf("Tool %s not implemented", name))
		return toolCall{}, &fail
	}
}

// searchCall builds the shared /search request used by the track and artist
// search tools.
func (s *SpotifyAgent) searchCall(params map[string]any, kind string) (toolCall, *services.Outcome) {
	query, ok := stringParam(params, "query")
	if !ok {
		return missingParam("query")
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", kind)
	addInt(q, params, "limit")
	addInt(q, params, "offset")
	return getCall("/search", q)
}

func getCall(path string, q url.Values) (toolCall, *services.Outcome) {
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return toolCall{req: services.Request{Method: http.MethodGet, Path: path}}, nil
}

func jsonCall(method, path string, body map[string]any, done string) (toolCall, *services.Outcome) {
	data, err := json.Marshal(body)
	if err != nil {
		fail := services.Fail(http.StatusInternalServerError, err.Error())
		return toolCall{}, &fail
	}
	return toolCall{req: services.Request{Method: method, Path: path, Body: data}, done: done}, nil
}

func missingParam(name string) (toolCall, *services.Outcome) {
	fail := services.Fail(http.StatusBadRequest, fmt.Sprintf("Missing required parameter: %s", name))
	return toolCall{}, &fail
}

func addInt(q url.Values, params map[string]any, key string) {
	if v, ok := intParam(params, key); ok {
		q.Set(key, strconv.Itoa(v))
	}
}

func addString(q url.Values, params map[string]any, key string) {
	if v, ok := stringParam(params, key); ok {
		q.Set(key, v)
	}
}
