package types

import "errors"

var (
	// ErrFormat marks a malformed timestamp or source URL.
	ErrFormat = errors.New("format error")
	// ErrMalformedResponse marks model output that could not be repaired into JSON.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrNoTranscript marks a source with no usable transcript entries.
	ErrNoTranscript = errors.New("no transcript")
	// ErrCaptionsDisabled marks a source without native captions; it triggers speech-to-text fallback.
	ErrCaptionsDisabled = errors.New("captions disabled for this source")
	// ErrConfiguration marks missing credentials or settings for a selected component.
	ErrConfiguration = errors.New("configuration error")
)
