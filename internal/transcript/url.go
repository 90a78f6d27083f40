package transcript

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// ParseVideoID extracts the video identifier from the supported URL
// forms: watch?v=, youtu.be/, embed/ and shorts/.
func ParseVideoID(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", &InvalidURLError{URL: rawURL}
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return "", &InvalidURLError{URL: rawURL}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
		if i := strings.Index(id, "/"); i >= 0 {
			id = id[:i]
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		path := strings.Trim(u.Path, "/")
		switch {
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "embed/"):
			id = strings.TrimPrefix(path, "embed/")
		case strings.HasPrefix(path, "shorts/"):
			id = strings.TrimPrefix(path, "shorts/")
		}
	default:
		return "", &InvalidURLError{URL: rawURL}
	}

	if !videoIDPattern.MatchString(id) {
		return "", &InvalidURLError{URL: rawURL}
	}
	return id, nil
}
