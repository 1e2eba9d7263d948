package ports

import (
	"context"

	"github.com/forPelevin/vidarticle/internal/domain/frames"
	"github.com/forPelevin/vidarticle/internal/types"
)

// TextGenerator is the language-model completion boundary.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CaptionSource lists and downloads native caption tracks of a video.
// ListTracks returns types.ErrCaptionsDisabled when the video has none.
type CaptionSource interface {
	ListTracks(ctx context.Context, videoID string) ([]types.CaptionTrack, error)
	Fetch(ctx context.Context, track types.CaptionTrack, translateTo string) ([]types.TranscriptEntry, error)
}

// ASR transcribes a 16 kHz mono wav file.
type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// MediaResolver turns a user-supplied source into something ffmpeg can read.
type MediaResolver interface {
	Resolve(ctx context.Context, src string, kind MediaKind) (string, error)
}

// FrameStream is a decoded video; Close releases the decoder.
type FrameStream interface {
	frames.Stream
	Close() error
}

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, in, outWav string) error
	OpenFrames(ctx context.Context, src string) (FrameStream, error)
}

// ImageHost stores a base64-encoded image and returns its public URL.
type ImageHost interface {
	Upload(ctx context.Context, base64Image string) (string, error)
}

// ArticleStore archives generated articles by source URL.
type ArticleStore interface {
	Save(ctx context.Context, sourceURL string, a types.Article) error
	Get(ctx context.Context, sourceURL string) (types.Article, bool, error)
}
