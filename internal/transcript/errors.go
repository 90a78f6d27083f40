// Package transcript fetches and parses video caption tracks.
package transcript

import "fmt"

// InvalidURLError indicates the given URL is not a recognizable video URL.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid video url: %q", e.URL)
}

// TranscriptUnavailableError indicates the video has no usable captions
// (none published, or captions disabled).
type TranscriptUnavailableError struct {
	VideoID string
	Reason  string
}

func (e *TranscriptUnavailableError) Error() string {
	return fmt.Sprintf("transcript unavailable for video %s: %s", e.VideoID, e.Reason)
}

// EmptyTranscriptError indicates a caption track exists but contains no
// usable text.
type EmptyTranscriptError struct {
	VideoID string
}

func (e *EmptyTranscriptError) Error() string {
	return fmt.Sprintf("transcript for video %s is empty", e.VideoID)
}

// NetworkError indicates a transport-level failure while fetching.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching transcript: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
