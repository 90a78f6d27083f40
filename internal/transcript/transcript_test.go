package transcript

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidsage/vidsage/pkg/observability"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url with extra params", "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"short url with query", "https://youtu.be/dQw4w9WgXcQ?si=xyz", "dQw4w9WgXcQ", false},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"empty", "", "", true},
		{"not a url", "not a url at all", "", true},
		{"wrong host", "https://vimeo.com/12345678", "", true},
		{"watch without id", "https://www.youtube.com/watch", "", true},
		{"channel path", "https://www.youtube.com/@somechannel", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVideoID(tt.url)
			if tt.wantErr {
				var invalid *InvalidURLError
				require.Error(t, err)
				assert.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc, languages ...string) *HTTPFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return NewHTTPFetcher(FetcherConfig{
		BaseURL:   srv.URL,
		Languages: languages,
	}, observability.NewNoopLogger())
}

func TestHTTPFetcher(t *testing.T) {
	ctx := context.Background()

	t.Run("parses caption track", func(t *testing.T) {
		f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.4" dur="3.2">hello &amp; welcome</text>
  <text start="3.6" dur="2.0">second cue</text>
</transcript>`))
		})

		segments, err := f.Fetch(ctx, "abc123xyz")
		require.NoError(t, err)
		require.Len(t, segments, 2)
		assert.Equal(t, "hello & welcome", segments[0].Text)
		assert.InDelta(t, 0.4, segments[0].Start, 0.001)
		assert.Equal(t, "second cue", segments[1].Text)
	})

	t.Run("empty body means unavailable", func(t *testing.T) {
		f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		_, err := f.Fetch(ctx, "abc123xyz")
		var unavailable *TranscriptUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	})

	t.Run("404 means unavailable", func(t *testing.T) {
		f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := f.Fetch(ctx, "abc123xyz")
		var unavailable *TranscriptUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	})

	t.Run("5xx maps to network error", func(t *testing.T) {
		f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := f.Fetch(ctx, "abc123xyz")
		var netErr *NetworkError
		assert.ErrorAs(t, err, &netErr)
	})

	t.Run("unreachable host maps to network error", func(t *testing.T) {
		f := NewHTTPFetcher(FetcherConfig{
			BaseURL:   "http://127.0.0.1:1",
			Languages: []string{"en"},
		}, observability.NewNoopLogger())

		_, err := f.Fetch(ctx, "abc123xyz")
		var netErr *NetworkError
		assert.ErrorAs(t, err, &netErr)
	})

	t.Run("falls through languages until captions found", func(t *testing.T) {
		f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("lang") != "en-GB" {
				w.WriteHeader(http.StatusOK)
				return
			}
			_, _ = w.Write([]byte(`<transcript><text start="1" dur="1">cheers</text></transcript>`))
		}, "en", "en-GB")

		segments, err := f.Fetch(ctx, "abc123xyz")
		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, "cheers", segments[0].Text)
	})

	t.Run("error types are distinguishable", func(t *testing.T) {
		var unavailable *TranscriptUnavailableError
		var netErr *NetworkError

		err := error(&TranscriptUnavailableError{VideoID: "x", Reason: "r"})
		assert.True(t, errors.As(err, &unavailable))
		assert.False(t, errors.As(err, &netErr))
	})
}

func TestFullText(t *testing.T) {
	segments := []Segment{
		{Text: "one", Start: 0},
		{Text: "two", Start: 2},
	}
	assert.Equal(t, "one two", FullText(segments))
	assert.Equal(t, "", FullText(nil))
}
