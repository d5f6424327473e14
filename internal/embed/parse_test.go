package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantType string
		wantID   string
	}{
		{"youtube watch", "https://youtube.com/watch?v=abc123xyz", TypeYouTube, "abc123xyz"},
		{"youtube short id", "https://youtube.com/watch?v=abc", TypeYouTube, "abc"},
		{"youtube www", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10", TypeYouTube, "dQw4w9WgXcQ"},
		{"youtu.be", "https://youtu.be/dQw4w9WgXcQ", TypeYouTube, "dQw4w9WgXcQ"},
		{"youtube shorts", "https://www.youtube.com/shorts/abcdefgh", TypeYouTube, "abcdefgh"},
		{"vimeo", "https://vimeo.com/76979871", TypeVimeo, "76979871"},
		{"spotify track", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", TypeSpotify, "track:4uLU6hMCjMI75M1A2tKUQC"},
		{"spotify intl", "https://open.spotify.com/intl-de/album/4uLU6hMCjMI75M1A2tKUQC", TypeSpotify, "album:4uLU6hMCjMI75M1A2tKUQC"},
		{"image", "https://cdn.example.com/a/b/cat.PNG", TypeImage, ""},
		{"plain link", "https://example.com/about", TypeLink, ""},
		{"youtube without id", "https://youtube.com/feed/trending", TypeLink, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			assert.Equal(t, tt.in, got.URL)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantID, got.ExternalID)
			assert.NotEmpty(t, got.Title)
		})
	}
}

func TestParse_EmbedMarkup(t *testing.T) {
	got := Parse("https://youtube.com/watch?v=abc123xyz")
	assert.Contains(t, got.EmbedHTML, "https://www.youtube.com/embed/abc123xyz")
	assert.Equal(t, "https://i.ytimg.com/vi/abc123xyz/hqdefault.jpg", got.ThumbnailURL)
}

func TestParse_DegradesInsteadOfFailing(t *testing.T) {
	got := Parse("example.com/page")
	assert.Equal(t, TypeLink, got.Type)
	assert.Equal(t, "https://example.com/page", got.URL)
	assert.Equal(t, "example.com", got.Title)

	got = Parse("%%%not a url")
	assert.Equal(t, TypeLink, got.Type)
	assert.Equal(t, "%%%not a url", got.URL)

	got = Parse("")
	assert.Equal(t, TypeLink, got.Type)
}
