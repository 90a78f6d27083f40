package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vidsage/vidsage/pkg/observability"
)

// Segment is one caption cue: its text and where it starts in the video.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Fetcher retrieves the caption track for a video.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) ([]Segment, error)
}

// HTTPFetcher fetches caption tracks over the public timedtext endpoint.
type HTTPFetcher struct {
	client    *http.Client
	baseURL   string
	languages []string
	logger    observability.Logger
}

// FetcherConfig configures the HTTP caption fetcher.
type FetcherConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Languages []string      `mapstructure:"languages"`
}

// DefaultFetcherConfig returns the standard fetcher settings with
// English preferred.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		BaseURL:   "https://video.google.com/timedtext",
		Timeout:   15 * time.Second,
		Languages: []string{"en", "en-US", "en-GB"},
	}
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(cfg FetcherConfig, logger observability.Logger) *HTTPFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://video.google.com/timedtext"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"en"}
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		languages: cfg.Languages,
		logger:    logger.WithPrefix("transcript-fetcher"),
	}
}

type timedTextDoc struct {
	XMLName xml.Name       `xml:"transcript"`
	Texts   []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Body     string  `xml:",chardata"`
}

// Fetch tries each configured language in order and returns the first
// non-empty caption track.
func (f *HTTPFetcher) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	for _, lang := range f.languages {
		segments, err := f.fetchLanguage(ctx, videoID, lang)
		if err != nil {
			return nil, err
		}
		if len(segments) > 0 {
			return segments, nil
		}
		f.logger.Debug("No captions for language", map[string]interface{}{
			"video_id": videoID,
			"language": lang,
		})
	}
	return nil, &TranscriptUnavailableError{VideoID: videoID, Reason: "no captions in configured languages"}
}

func (f *HTTPFetcher) fetchLanguage(ctx context.Context, videoID, lang string) ([]Segment, error) {
	endpoint := fmt.Sprintf("%s?lang=%s&v=%s", f.baseURL, url.QueryEscape(lang), url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &TranscriptUnavailableError{VideoID: videoID, Reason: "captions not found"}
	case resp.StatusCode >= 500:
		return nil, &NetworkError{Err: fmt.Errorf("upstream returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &TranscriptUnavailableError{VideoID: videoID, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	// An empty body means the track does not exist for this language.
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, &TranscriptUnavailableError{VideoID: videoID, Reason: "malformed caption track"}
	}

	segments := make([]Segment, 0, len(doc.Texts))
	for _, cue := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(cue.Body))
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Text:     text,
			Start:    cue.Start,
			Duration: cue.Duration,
		})
	}
	return segments, nil
}

// FullText joins segment texts with spaces.
func FullText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
