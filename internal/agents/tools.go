// Tool catalog for the Spotify agent.
//
// Descriptions and parameter schemas follow the Spotify Web API reference:
// https://developer.spotify.com/documentation/web-api/reference/
package agents

func objectSchema(props map[string]Property, required ...string) Schema {
	if required == nil {
		required = []string{}
	}
	return Schema{Type: "object", Properties: props, Required: required}
}

func stringArray(desc string) Property {
	return Property{Type: "array", Description: desc, Items: &Property{Type: "string"}}
}

// spotifyTools is the Spotify agent's declared catalog, served verbatim by
// the tool discovery endpoint.
var spotifyTools = []Tool{
	{
		Name:        "search_tracks",
		Description: "Search for tracks matching a query",
		Parameters: objectSchema(map[string]Property{
			"query":  {Type: "string", Description: "Search query text"},
			"limit":  {Type: "number", Description: "Number of items to return (1-50)"},
			"offset": {Type: "number", Description: "Index of the first result to return"},
		}, "query"),
	},
	{
		Name:        "search_artists",
		Description: "Search for artists matching a query",
		Parameters: objectSchema(map[string]Property{
			"query":  {Type: "string", Description: "Search query text"},
			"limit":  {Type: "number", Description: "Number of items to return (1-50)"},
			"offset": {Type: "number", Description: "Index of the first result to return"},
		}, "query"),
	},
	{
		Name:        "create_playlist",
		Description: "Create a playlist for the current user",
		Parameters: objectSchema(map[string]Property{
			"name":        {Type: "string", Description: "Playlist name"},
			"description": {Type: "string", Description: "Playlist description"},
			"public":      {Type: "boolean", Description: "Whether playlist is public"},
		}, "name"),
	},
	{
		Name:        "add_tracks_to_playlist",
		Description: "Add tracks to a playlist",
		Parameters: objectSchema(map[string]Property{
			"playlist_id": {Type: "string", Description: "Playlist ID"},
			"track_ids":   stringArray("Array of track IDs (max 100) to add"),
			"position":    {Type: "number", Description: "Insert position (optional)"},
		}, "playlist_id", "track_ids"),
	},
	{
		Name:        "remove_tracks_from_playlist",
		Description: "Remove tracks from a playlist",
		Parameters: objectSchema(map[string]Property{
			"playlist_id": {Type: "string", Description: "Playlist ID"},
			"track_ids":   stringArray("Array of track IDs to remove"),
		}, "playlist_id", "track_ids"),
	},
	{
		Name:        "get_playlist_items",
		Description: "Get items in a playlist",
		Parameters: objectSchema(map[string]Property{
			"playlist_id": {Type: "string", Description: "Playlist ID"},
			"limit":       {Type: "number", Description: "Number of items to return (1-100)"},
			"offset":      {Type: "number", Description: "Offset for paging"},
		}, "playlist_id"),
	},
	{
		Name:        "get_current_playback",
		Description: "Get current playback state",
		Parameters:  objectSchema(map[string]Property{}),
	},
	{
		Name:        "get_recommendations",
		Description: "Get track recommendations based on genres",
		Parameters: objectSchema(map[string]Property{
			"seed_genres": stringArray("Seed genres (1-5)"),
			"limit":       {Type: "number", Description: "Number of recommendations (1-100)"},
			"market":      {Type: "string", Description: "Market code (optional)"},
		}, "seed_genres"),
	},
	{
		Name:        "get_recently_played",
		Description: "Get user's recently played tracks",
		Parameters: objectSchema(map[string]Property{
			"limit": {Type: "number", Description: "Number of items to return (1-50)"},
		}),
	},
	{
		Name:        "get_user_profile",
		Description: "Get current user's profile information",
		Parameters:  objectSchema(map[string]Property{}),
	},
	{
		Name:        "get_current_user_playlists",
		Description: "Get playlists owned or followed by the current user",
		Parameters: objectSchema(map[string]Property{
			"limit":  {Type: "number", Description: "Number of playlists to return (1-50)"},
			"offset": {Type: "number", Description: "Offset for paging, multiple of limit"},
		}),
	},
	{
		Name:        "add_custom_playlist_cover_image",
		Description: "Upload a custom JPEG image (Base64 encoded) as a playlist cover",
		Parameters: objectSchema(map[string]Property{
			"playlist_id":  {Type: "string", Description: "Target playlist ID"},
			"image_base64": {Type: "string", Description: "Base64-encoded JPEG image data (no data URI prefix)"},
		}, "playlist_id", "image_base64"),
	},
	{
		Name:        "get_available_genre_seeds",
		Description: "Retrieve the list of available genre seeds for recommendations",
		Parameters:  objectSchema(map[string]Property{}),
	},
	{
		Name:        "save_track_for_user",
		Description: "Save one or more tracks to the current user's library",
		Parameters: objectSchema(map[string]Property{
			"track_ids": stringArray("Array of track IDs to save (max 50)"),
		}, "track_ids"),
	},
	{
		Name:        "check_user_saved_tracks",
		Description: "Check if the current user has saved particular tracks",
		Parameters: objectSchema(map[string]Property{
			"track_ids": stringArray("Array of track IDs to check (max 50)"),
		}, "track_ids"),
	},
	{
		Name:        "get_user_saved_tracks",
		Description: "Retrieve tracks saved in the user's library",
		Parameters: objectSchema(map[string]Property{
			"limit":  {Type: "number", Description: "Number of items to return (1-50)"},
			"offset": {Type: "number", Description: "Offset for paging"},
			"market": {Type: "string", Description: "Market code (optional)"},
		}),
	},
	{
		Name:        "get_new_releases",
		Description: "Get a list of new album releases featured on Spotify",
		Parameters: objectSchema(map[string]Property{
			"limit":   {Type: "number", Description: "Number of items to return (1-50)"},
			"offset":  {Type: "number", Description: "Offset for paging"},
			"country": {Type: "string", Description: "Country code (optional)"},
		}),
	},
	{
		Name:        "save_album_for_user",
		Description: "Save one or more albums to the user's library",
		Parameters: objectSchema(map[string]Property{
			"album_ids": stringArray("Array of album IDs to save (max 50)"),
		}, "album_ids"),
	},
	{
		Name:        "get_artist_albums",
		Description: "Get an artist's albums",
		Parameters: objectSchema(map[string]Property{
			"artist_id":      {Type: "string", Description: "Spotify artist ID"},
			"include_groups": {Type: "string", Description: "Filter by album groups, comma separated"},
			"market":         {Type: "string", Description: "Market code"},
			"limit":          {Type: "number", Description: "Number of items (1-50)"},
			"offset":         {Type: "number", Description: "Offset for paging"},
		}, "artist_id"),
	},
	{
		Name:        "get_artist_top_tracks",
		Description: "Get an artist's top tracks by market",
		Parameters: objectSchema(map[string]Property{
			"artist_id": {Type: "string", Description: "Spotify artist ID"},
			"market":    {Type: "string", Description: "Market code (required by Spotify)"},
		}, "artist_id", "market"),
	},
}
