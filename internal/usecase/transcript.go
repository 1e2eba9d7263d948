package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forPelevin/vidarticle/internal/domain/source"
	"github.com/forPelevin/vidarticle/internal/ports"
	"github.com/forPelevin/vidarticle/internal/types"
)

// DefaultLanguages is the caption preference order after the requested language.
var DefaultLanguages = []string{"en", "es", "fr", "de", "it", "pt", "nl", "sv", "da", "no", "fi", "ru", "ar", "ja", "ko", "zh"}

// TranscriptProvider acquires the transcript of one source.
type TranscriptProvider interface {
	Transcript(ctx context.Context) ([]types.TranscriptEntry, error)
}

type captionsProvider struct {
	captions ports.CaptionSource
	source   string
	lang     string
}

func (p captionsProvider) Transcript(ctx context.Context) ([]types.TranscriptEntry, error) {
	id, ok := source.YouTubeID(p.source)
	if !ok {
		return nil, fmt.Errorf("%s has no native captions: %w", p.source, types.ErrCaptionsDisabled)
	}
	tracks, err := p.captions.ListTracks(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("video %s: %w", id, types.ErrCaptionsDisabled)
	}

	best := BestTrack(tracks, Priorities(p.lang))
	translateTo := ""
	if best.LanguageCode != p.lang && best.CanTranslateTo(p.lang) {
		translateTo = p.lang
	}
	entries, err := p.captions.Fetch(ctx, best, translateTo)
	if err != nil {
		return nil, fmt.Errorf("fetch %s captions: %w", best.LanguageCode, err)
	}
	return entries, nil
}

type speechProvider struct {
	media    ports.MediaResolver
	video    ports.VideoTool
	asr      ports.ASR
	source   string
	cacheDir string
}

func (p speechProvider) Transcript(ctx context.Context) ([]types.TranscriptEntry, error) {
	audio, err := p.media.Resolve(ctx, p.source, ports.MediaAudio)
	if err != nil {
		return nil, err
	}
	wav := filepath.Join(p.cacheDir, "audio.wav")
	if err := p.video.ExtractAudioMono16k(ctx, audio, wav); err != nil {
		return nil, err
	}
	tr, err := p.asr.Transcribe(ctx, wav, p.cacheDir)
	if err != nil {
		return nil, err
	}

	out := make([]types.TranscriptEntry, 0, len(tr.Segments))
	for _, s := range tr.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		out = append(out, types.TranscriptEntry{Text: text, Start: s.Start, Duration: math.Max(0, s.End-s.Start)})
	}
	return out, nil
}

// Priorities puts lang first and removes repeats, keeping the first occurrence.
func Priorities(lang string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(DefaultLanguages)+1)
	for _, l := range append([]string{lang}, DefaultLanguages...) {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// BestTrack ranks tracks by language priority, then prefers authored over
// auto-generated. With no ranked language it returns the first track.
func BestTrack(tracks []types.CaptionTrack, priorities []string) types.CaptionTrack {
	rank := make(map[string]int, len(priorities))
	for i, l := range priorities {
		rank[l] = i
	}
	best, bestRank, found := 0, 0, false
	for i, t := range tracks {
		r, ok := rank[t.LanguageCode]
		if !ok {
			continue
		}
		if !found || r < bestRank || (r == bestRank && tracks[best].IsGenerated && !t.IsGenerated) {
			best, bestRank, found = i, r, true
		}
	}
	return tracks[best]
}

// FilterWindow keeps entries strictly inside (start, end). A zero end is open.
func FilterWindow(entries []types.TranscriptEntry, start, end int) []types.TranscriptEntry {
	out := make([]types.TranscriptEntry, 0, len(entries))
	for _, e := range entries {
		if e.Start <= float64(start) {
			continue
		}
		if end > 0 && e.Start >= float64(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (u Usecase) transcript(ctx context.Context, in Input) ([]types.TranscriptEntry, error) {
	speech := speechProvider{media: u.d.Media, video: u.d.Video, asr: u.d.ASR, source: in.Source, cacheDir: in.CacheDir}

	var entries []types.TranscriptEntry
	var err error
	if in.ForceWhisper {
		u.log().Info("speech-to-text forced", "source", in.Source)
		entries, err = speech.Transcript(ctx)
	} else {
		captions := captionsProvider{captions: u.d.Captions, source: in.Source, lang: in.lang()}
		entries, err = captions.Transcript(ctx)
		if errors.Is(err, types.ErrCaptionsDisabled) {
			u.log().Info("native captions unavailable, falling back to speech-to-text", "source", in.Source, "reason", err)
			entries, err = speech.Transcript(ctx)
		}
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
	if in.Start > 0 || in.End > 0 {
		entries = FilterWindow(entries, in.Start, in.End)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", in.Source, types.ErrNoTranscript)
	}
	return entries, nil
}
