package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vidarticle <source>",
		Short:        "Turn a video (YouTube URL, media URL or local file) into an illustrated article",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	f := root.Flags()
	f.Int("paragraphs", 5, "Number of topics in the article")
	f.Int("screenshots", 1, "Screenshots per topic (0 disables frames)")
	f.String("selector", "uniform", "Frame selector: uniform, similarity or shape_density")
	f.String("image-format", "base64", "Image output: base64 or imgur")
	f.String("person", "first", "Narration person: first or third")
	f.String("lang", "en", "Target transcript language")
	f.Bool("force-whisper", false, "Skip native captions and transcribe the audio")
	f.Bool("reuse-archive", false, "Write the archived article for this source instead of regenerating (needs DATABASE_DSN)")
	f.String("start", "", "Only use the transcript from this h:mm:ss")
	f.String("end", "", "Only use the transcript up to this h:mm:ss")
	f.String("out", "out", "Output directory")
	f.String("format", "json", "Comma-separated outputs: json, md, docx")
	f.String("config", "", "Path to a YAML config file")
	f.String("log-level", "", "Log level: debug, info, warn or error")

	return root
}
