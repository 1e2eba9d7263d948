package usecase

import (
	"context"
	"image"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/vidarticle/internal/ports"
	"github.com/forPelevin/vidarticle/internal/types"
)

const defaultMaxConcurrent = 4

type Deps struct {
	LLM      ports.TextGenerator
	Captions ports.CaptionSource
	ASR      ports.ASR
	Media    ports.MediaResolver
	Video    ports.VideoTool
	// Images may be nil; the imgur format then fails at construction.
	Images ports.ImageHost
	Logger *slog.Logger
	// MaxConcurrent bounds in-flight model and upload requests.
	MaxConcurrent int
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Source       string
	Paragraphs   int
	Screenshots  int
	Selector     types.SelectorType
	ImageFormat  types.ImageFormat
	Person       types.Person
	Lang         string
	ForceWhisper bool
	// Start and End truncate the transcript in seconds; zero leaves a side open.
	Start    int
	End      int
	CacheDir string
}

func (in Input) lang() string {
	if in.Lang == "" {
		return "en"
	}
	return in.Lang
}

type Result struct {
	Article types.Article
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	started := time.Now()
	post, err := NewPostprocessor(in.ImageFormat, u.d.Images)
	if err != nil {
		return Result{}, err
	}
	log := u.log().With("source", in.Source)
	var gt types.GenerationTime

	log.Info("gathering transcript", "force_whisper", in.ForceWhisper, "lang", in.lang())
	t := time.Now()
	entries, err := u.transcript(ctx, in)
	if err != nil {
		return Result{}, err
	}
	gt.Transcript = since(t)
	log.Debug("transcript ready", "entries", len(entries))

	log.Info("segmenting transcript", "paragraphs", in.Paragraphs)
	t = time.Now()
	o, err := u.segment(ctx, entries, in.Paragraphs)
	if err != nil {
		return Result{}, err
	}
	gt.Title = since(t)

	log.Info("generating content and gathering frames", "topics", len(o.Windows), "screenshots", in.Screenshots, "selector", in.Selector)
	var (
		topics []types.ArticleTopic
		frames [][]image.Image
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.Now()
		var err error
		topics, err = u.writeContent(gctx, entries, o.Windows, in.Person)
		gt.Content = since(t)
		return err
	})
	g.Go(func() error {
		t := time.Now()
		var err error
		frames, err = u.gatherFrames(gctx, in.Source, o.Windows, in.Screenshots, in.Selector)
		gt.Images = since(t)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	topics, frames = u.dropEmpty(topics, frames)

	log.Info("processing images", "format", in.ImageFormat)
	t = time.Now()
	refs, err := u.processImages(ctx, post, frames)
	if err != nil {
		return Result{}, err
	}
	gt.Images += since(t)
	for i := range topics {
		if i < len(refs) && refs[i] != nil {
			topics[i].Images = refs[i]
		}
	}

	gt.Total = since(started)
	art := types.Article{
		Title:          o.Title,
		Description:    o.Description,
		Topics:         topics,
		GenerationTime: gt,
	}
	log.Info("article ready", "topics", len(topics), "total_sec", gt.Total)
	return Result{Article: art}, nil
}

func (u Usecase) log() *slog.Logger {
	if u.d.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return u.d.Logger
}

func (u Usecase) limit() int {
	if u.d.MaxConcurrent <= 0 {
		return defaultMaxConcurrent
	}
	return u.d.MaxConcurrent
}

func since(t time.Time) float64 { return time.Since(t).Seconds() }
