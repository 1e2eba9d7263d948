package source

import (
	"net/url"
	"regexp"
	"strings"
)

var youtubeRE = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// YouTubeID extracts the video id from a YouTube URL.
func YouTubeID(s string) (string, bool) {
	m := youtubeRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || m[2] == "" {
		return "", false
	}
	return m[2], true
}

// IsURL reports whether s is an absolute http(s) URL.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// LooksLikeYouTube reports whether s points at a YouTube host, with or without a usable id.
func LooksLikeYouTube(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	h := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	h = strings.TrimPrefix(h, "m.")
	return h == "youtube.com" || h == "youtu.be" || h == "music.youtube.com"
}
