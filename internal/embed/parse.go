// Package embed turns a pasted URL into the payload stored on a tile.
// Parse never fails: anything it cannot recognize becomes a plain link.
package embed

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"footprint-app/internal/domain/tiles"
)

const (
	TypeLink    = "link"
	TypeImage   = "image"
	TypeYouTube = "youtube"
	TypeVimeo   = "vimeo"
	TypeSpotify = "spotify"
)

var (
	youtubeID  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	vimeoID    = regexp.MustCompile(`^[0-9]+$`)
	spotifyID  = regexp.MustCompile(`^[A-Za-z0-9]{10,40}$`)
	imageExts  = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".avif": true}
	spotifyTyp = map[string]bool{"track": true, "album": true, "playlist": true, "episode": true, "show": true, "artist": true}
)

// Parse classifies raw and fills the embed fields it can derive from the URL alone.
func Parse(raw string) tiles.Embed {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if !strings.Contains(raw, "://") && raw != "" {
			if u2, err2 := url.Parse("https://" + raw); err2 == nil && u2.Host != "" {
				u, err = u2, nil
				raw = u2.String()
			}
		}
	}
	if err != nil || u == nil || u.Host == "" {
		return tiles.Embed{URL: raw, Type: TypeLink, Title: raw}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	switch {
	case host == "youtube.com" || host == "music.youtube.com" || host == "youtu.be":
		if e, ok := parseYouTube(raw, host, u); ok {
			return e
		}
	case host == "vimeo.com" || host == "player.vimeo.com":
		if e, ok := parseVimeo(raw, u); ok {
			return e
		}
	case host == "open.spotify.com":
		if e, ok := parseSpotify(raw, u); ok {
			return e
		}
	}

	if imageExts[strings.ToLower(path.Ext(u.Path))] {
		return tiles.Embed{URL: raw, Type: TypeImage, Title: path.Base(u.Path), ThumbnailURL: raw}
	}
	return tiles.Embed{URL: raw, Type: TypeLink, Title: host}
}

func parseYouTube(raw, host string, u *url.URL) (tiles.Embed, bool) {
	var id string
	segs := segments(u.Path)
	switch {
	case host == "youtu.be" && len(segs) > 0:
		id = segs[0]
	case len(segs) >= 2 && (segs[0] == "shorts" || segs[0] == "embed" || segs[0] == "live"):
		id = segs[1]
	default:
		id = u.Query().Get("v")
	}
	if !youtubeID.MatchString(id) {
		return tiles.Embed{}, false
	}
	return tiles.Embed{
		URL:          raw,
		Type:         TypeYouTube,
		Title:        "YouTube video",
		ThumbnailURL: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", id),
		EmbedHTML:    fmt.Sprintf(`<iframe src="https://www.youtube.com/embed/%s" allow="autoplay; encrypted-media" allowfullscreen></iframe>`, id),
		ExternalID:   id,
	}, true
}

func parseVimeo(raw string, u *url.URL) (tiles.Embed, bool) {
	segs := segments(u.Path)
	if len(segs) == 0 {
		return tiles.Embed{}, false
	}
	id := segs[len(segs)-1]
	if !vimeoID.MatchString(id) {
		return tiles.Embed{}, false
	}
	return tiles.Embed{
		URL:        raw,
		Type:       TypeVimeo,
		Title:      "Vimeo video",
		EmbedHTML:  fmt.Sprintf(`<iframe src="https://player.vimeo.com/video/%s" allow="autoplay; fullscreen" allowfullscreen></iframe>`, id),
		ExternalID: id,
	}, true
}

func parseSpotify(raw string, u *url.URL) (tiles.Embed, bool) {
	segs := segments(u.Path)
	// locale prefix, e.g. /intl-de/track/<id>
	if len(segs) > 0 && strings.HasPrefix(segs[0], "intl-") {
		segs = segs[1:]
	}
	if len(segs) < 2 || !spotifyTyp[segs[0]] || !spotifyID.MatchString(segs[1]) {
		return tiles.Embed{}, false
	}
	kind, id := segs[0], segs[1]
	return tiles.Embed{
		URL:        raw,
		Type:       TypeSpotify,
		Title:      "Spotify " + kind,
		EmbedHTML:  fmt.Sprintf(`<iframe src="https://open.spotify.com/embed/%s/%s" allow="encrypted-media"></iframe>`, kind, id),
		ExternalID: kind + ":" + id,
	}, true
}

func segments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
