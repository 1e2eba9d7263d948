package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/forPelevin/vidarticle/internal/domain/source"
	"github.com/forPelevin/vidarticle/internal/ports"
)

// Adapter resolves YouTube pages to direct media URLs with yt-dlp.
// Other sources are returned unchanged for ffmpeg to open.
type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath}
}

func (a *Adapter) Resolve(ctx context.Context, src string, kind ports.MediaKind) (string, error) {
	if !source.IsURL(src) || !source.LooksLikeYouTube(src) {
		return src, nil
	}

	format := "best[ext=mp4]/best"
	if kind == ports.MediaAudio {
		format = "bestaudio/best"
	}
	cmd := exec.CommandContext(ctx, a.bin, "-g", "-f", format, "--no-playlist", src)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("yt-dlp resolve %s: %w\n%s", kind, err, stderr.String())
	}
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("yt-dlp resolve %s: no media url for %s", kind, src)
}
