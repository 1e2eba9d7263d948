package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/vidarticle/internal/config"
	"github.com/forPelevin/vidarticle/internal/domain/source"
	"github.com/forPelevin/vidarticle/internal/domain/timecode"
	"github.com/forPelevin/vidarticle/internal/output"
	"github.com/forPelevin/vidarticle/internal/ports"
	"github.com/forPelevin/vidarticle/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/vidarticle/internal/ports/adapters/gemini"
	"github.com/forPelevin/vidarticle/internal/ports/adapters/imgur"
	"github.com/forPelevin/vidarticle/internal/ports/adapters/openai"
	"github.com/forPelevin/vidarticle/internal/ports/adapters/postgres"
	"github.com/forPelevin/vidarticle/internal/ports/adapters/whisperasr"
	"github.com/forPelevin/vidarticle/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/vidarticle/internal/ports/adapters/youtube"
	"github.com/forPelevin/vidarticle/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/vidarticle/internal/types"
	"github.com/forPelevin/vidarticle/internal/usecase"
)

const (
	providerOpenAI = "openai"
	providerGemini = "gemini"

	asrWhisperCpp = "whispercpp"
	asrWhisperASR = "whisperasr"
	asrOpenAI     = "openai"
)

type Config struct {
	// Source is a YouTube URL, a direct media URL or a local media path.
	Source  string
	OutDir  string
	Formats []output.Format

	Paragraphs   int
	Screenshots  int
	Selector     types.SelectorType
	ImageFormat  types.ImageFormat
	Person       types.Person
	Lang         string
	ForceWhisper bool
	// ReuseArchived writes the archived article for Source, when one exists,
	// instead of generating a new one.
	ReuseArchived bool
	// Start and End are optional "h:mm:ss" bounds of the transcript.
	Start string
	End   string

	Logger *slog.Logger

	// Settings carries collaborator credentials and binaries.
	Settings config.Config
}

func (c Config) Validate() error {
	src := strings.TrimSpace(c.Source)
	if src == "" {
		return errors.New("source is empty")
	}
	switch {
	case source.LooksLikeYouTube(src):
		if _, ok := source.YouTubeID(src); !ok {
			return fmt.Errorf("%w: no video id in %q", types.ErrFormat, src)
		}
	case source.IsURL(src):
	default:
		if _, err := os.Stat(src); err != nil {
			return fmt.Errorf("stat source: %w", err)
		}
	}

	if c.Paragraphs <= 0 {
		return fmt.Errorf("paragraphs must be > 0")
	}
	if c.Screenshots < 0 {
		return fmt.Errorf("screenshots must be >= 0")
	}
	if !c.Selector.Valid() {
		return fmt.Errorf("unknown selector %q", c.Selector)
	}
	if !c.ImageFormat.Valid() {
		return fmt.Errorf("unknown image format %q", c.ImageFormat)
	}
	if !c.Person.Valid() {
		return fmt.Errorf("unknown person %q", c.Person)
	}
	for _, f := range c.Formats {
		if !f.Valid() {
			return fmt.Errorf("unknown output format %q", f)
		}
	}
	if _, _, err := c.window(); err != nil {
		return err
	}

	s := c.Settings
	switch s.LLM.Provider {
	case providerOpenAI:
		if s.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required (set it in .env)", types.ErrConfiguration)
		}
		if err := openai.ValidateBaseURL(s.OpenAI.BaseURL, s.OpenAI.AllowedHosts); err != nil {
			return err
		}
	case providerGemini:
		if s.Gemini.APIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required (set it in .env)", types.ErrConfiguration)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", s.LLM.Provider)
	}

	switch s.ASR.Backend {
	case asrWhisperCpp:
		if s.ASR.WhisperModel == "" {
			return fmt.Errorf("whisper model path is required")
		}
	case asrWhisperASR:
		if !source.IsURL(s.ASR.URL) {
			return fmt.Errorf("invalid WHISPER_ASR_URL %q", s.ASR.URL)
		}
	case asrOpenAI:
		if s.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for the openai speech backend", types.ErrConfiguration)
		}
		if err := openai.ValidateBaseURL(s.OpenAI.BaseURL, s.OpenAI.AllowedHosts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown asr backend %q", s.ASR.Backend)
	}
	return nil
}

// window returns the truncation bounds in seconds; zero means unset.
func (c Config) window() (int, int, error) {
	var start, end int
	var err error
	if c.Start != "" {
		if start, err = timecode.Parse(c.Start); err != nil {
			return 0, 0, fmt.Errorf("start: %w", err)
		}
	}
	if c.End != "" {
		if end, err = timecode.Parse(c.End); err != nil {
			return 0, 0, fmt.Errorf("end: %w", err)
		}
	}
	if c.Start != "" && c.End != "" && start >= end {
		return 0, 0, fmt.Errorf("%w: start %s must be before end %s", types.ErrFormat, c.Start, c.End)
	}
	return start, end, nil
}

func Run(ctx context.Context, cfg Config) error {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := cfg.Settings

	// adapters
	llm, err := newTextGenerator(s)
	if err != nil {
		return err
	}
	asr, err := newASR(s)
	if err != nil {
		return err
	}
	var host ports.ImageHost
	if cfg.ImageFormat == types.ImageImgur {
		h, err := imgur.New(s.Imgur.ClientID, s.Imgur.Token)
		if err != nil {
			return err
		}
		host = h
	}

	deps := usecase.Deps{
		LLM:           llm,
		Captions:      youtube.New(&http.Client{Timeout: 30 * time.Second}),
		ASR:           asr,
		Media:         ytdlp.New(s.Tools.YtDlp),
		Video:         ffmpeg.New(s.Tools.FFmpeg, s.Tools.FFprobe),
		Images:        host,
		Logger:        log.With("component", "usecase"),
		MaxConcurrent: s.MaxConcurrent,
	}
	uc := usecase.New(deps)

	jobID := hash(cfg.Source)
	baseCache := s.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	cacheDir := filepath.Join(baseCache, "runs", jobID)
	log.Info("preparing workspace", "cache", cacheDir)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.Source, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return err
	}
	log.Info("output run dir", "dir", runOutDir)

	start, end, err := cfg.window()
	if err != nil {
		return err
	}

	store := openArchive(ctx, log, s.Database.DSN)
	if store != nil {
		defer store.Close()
	}

	formats := cfg.Formats
	if len(formats) == 0 {
		formats = []output.Format{output.FormatJSON}
	}

	if cfg.ReuseArchived && store != nil {
		if a, ok := lookupArchived(ctx, log, store, cfg.Source); ok {
			paths, err := output.WriteAll(runOutDir, a, formats)
			if err != nil {
				return err
			}
			log.Info("archived article written", "topics", len(a.Topics), "files", strings.Join(paths, ", "))
			return nil
		}
	}

	log.Info("generating article", "source", cfg.Source, "paragraphs", cfg.Paragraphs)
	res, err := uc.Run(ctx, usecase.Input{
		Source:       cfg.Source,
		Paragraphs:   cfg.Paragraphs,
		Screenshots:  cfg.Screenshots,
		Selector:     cfg.Selector,
		ImageFormat:  cfg.ImageFormat,
		Person:       cfg.Person,
		Lang:         cfg.Lang,
		ForceWhisper: cfg.ForceWhisper,
		Start:        start,
		End:          end,
		CacheDir:     cacheDir,
	})
	if err != nil {
		return err
	}

	paths, err := output.WriteAll(runOutDir, res.Article, formats)
	if err != nil {
		return err
	}
	log.Info("article written", "topics", len(res.Article.Topics), "files", strings.Join(paths, ", "))

	if store != nil {
		archive(ctx, log, store, cfg.Source, res.Article)
	}
	return nil
}

// openArchive connects to the article archive when a database is configured.
// A failed connection only warns and disables the archive.
func openArchive(ctx context.Context, log *slog.Logger, dsn string) *postgres.Store {
	if dsn == "" {
		return nil
	}
	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		log.Warn("article archive unavailable", "err", err)
		return nil
	}
	return store
}

// lookupArchived reports a previously generated article for src. Lookup
// errors warn and fall through to generation.
func lookupArchived(ctx context.Context, log *slog.Logger, store ports.ArticleStore, src string) (types.Article, bool) {
	a, ok, err := store.Get(ctx, src)
	if err != nil {
		log.Warn("archive lookup", "err", err)
		return types.Article{}, false
	}
	if !ok {
		log.Debug("no archived article", "source", src)
		return types.Article{}, false
	}
	log.Info("reusing archived article", "source", src)
	return a, true
}

func archive(ctx context.Context, log *slog.Logger, store ports.ArticleStore, src string, a types.Article) {
	if err := store.Save(ctx, src, a); err != nil {
		log.Warn("archive article", "err", err)
		return
	}
	log.Info("article archived", "source", src)
}

func newTextGenerator(s config.Config) (ports.TextGenerator, error) {
	switch s.LLM.Provider {
	case providerGemini:
		return gemini.New(s.Gemini.APIKey, s.Gemini.Model)
	case providerOpenAI:
		return openai.New(s.OpenAI.APIKey, s.OpenAI.Model, s.OpenAI.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.LLM.Provider)
	}
}

func newASR(s config.Config) (ports.ASR, error) {
	switch s.ASR.Backend {
	case asrWhisperCpp:
		return whispercpp.New(s.ASR.WhisperBin, s.ASR.WhisperModel), nil
	case asrWhisperASR:
		return whisperasr.New(s.ASR.URL), nil
	case asrOpenAI:
		return openai.New(s.OpenAI.APIKey, s.OpenAI.Model, s.OpenAI.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown asr backend %q", s.ASR.Backend)
	}
}

func buildRunOutDir(outRoot, src string, now time.Time) string {
	name := runName(src)
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", src, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

// runName picks the video id for YouTube sources and the file stem otherwise.
func runName(src string) string {
	var name string
	if id, ok := source.YouTubeID(src); ok && source.LooksLikeYouTube(src) {
		name = id
	} else {
		base := src
		if i := strings.IndexAny(base, "?#"); i >= 0 && source.IsURL(src) {
			base = base[:i]
		}
		name = strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
	}
	name = normalizePathSegment(name)
	if name == "" {
		name = "video"
	}
	return name
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.MediaResolver = (*ytdlp.Adapter)(nil)
var _ ports.CaptionSource = (*youtube.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.ASR = (*whisperasr.Adapter)(nil)
var _ ports.ASR = (*openai.Adapter)(nil)
var _ ports.TextGenerator = (*openai.Adapter)(nil)
var _ ports.TextGenerator = (*gemini.Adapter)(nil)
var _ ports.ImageHost = (*imgur.Adapter)(nil)
