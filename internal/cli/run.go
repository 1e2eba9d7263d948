package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/vidarticle/internal/config"
	"github.com/forPelevin/vidarticle/internal/domain/source"
	"github.com/forPelevin/vidarticle/internal/logging"
	"github.com/forPelevin/vidarticle/internal/output"
	"github.com/forPelevin/vidarticle/internal/pipeline"
	"github.com/forPelevin/vidarticle/internal/types"
)

func run(cmd *cobra.Command, src string) error {
	cfg, err := buildConfig(cmd, src)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
	defer cancel()
	return pipeline.Run(ctx, cfg)
}

func buildConfig(cmd *cobra.Command, src string) (pipeline.Config, error) {
	flags := cmd.Flags()
	paragraphs, _ := flags.GetInt("paragraphs")
	screenshots, _ := flags.GetInt("screenshots")
	selector, _ := flags.GetString("selector")
	imageFormat, _ := flags.GetString("image-format")
	person, _ := flags.GetString("person")
	lang, _ := flags.GetString("lang")
	forceWhisper, _ := flags.GetBool("force-whisper")
	reuseArchived, _ := flags.GetBool("reuse-archive")
	start, _ := flags.GetString("start")
	end, _ := flags.GetString("end")
	outDir, _ := flags.GetString("out")
	format, _ := flags.GetString("format")
	configPath, _ := flags.GetString("config")
	logLevel, _ := flags.GetString("log-level")

	settings, err := config.Load(configPath)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}

	formats, err := output.ParseFormats(format)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}

	if !source.IsURL(src) {
		if src, err = filepath.Abs(src); err != nil {
			return pipeline.Config{}, err
		}
	}

	return pipeline.Config{
		Source:        src,
		OutDir:        outDir,
		Formats:       formats,
		Paragraphs:    paragraphs,
		Screenshots:   screenshots,
		Selector:      types.SelectorType(selector),
		ImageFormat:   types.ImageFormat(imageFormat),
		Person:        types.Person(person),
		Lang:          lang,
		ForceWhisper:  forceWhisper,
		ReuseArchived: reuseArchived,
		Start:         start,
		End:           end,
		Logger:        logging.New(settings.LogLevel),
		Settings:      settings,
	}, nil
}
