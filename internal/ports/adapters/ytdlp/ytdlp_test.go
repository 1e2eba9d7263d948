package ytdlp

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/forPelevin/vidarticle/internal/ports"
)

func TestResolve_PassThrough(t *testing.T) {
	a := New("/nonexistent/yt-dlp")
	for _, src := range []string{"/tmp/talk.mp4", "https://cdn.example.com/talk.mp4"} {
		got, err := a.Resolve(context.Background(), src, ports.MediaVideo)
		if err != nil || got != src {
			t.Fatalf("Resolve(%q) = %q, %v; want pass-through", src, got, err)
		}
	}
}

func TestResolve_YouTube(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "yt-dlp")
	script := "#!/bin/sh\nfor a in \"$@\"; do if [ \"$a\" = \"bestaudio/best\" ]; then echo; echo https://cdn.example.com/audio.m4a; exit 0; fi; done\necho https://cdn.example.com/video.mp4\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	a := New(bin)
	got, err := a.Resolve(context.Background(), "https://www.youtube.com/watch?v=abc", ports.MediaVideo)
	if err != nil || got != "https://cdn.example.com/video.mp4" {
		t.Fatalf("video: got %q, %v", got, err)
	}
	got, err = a.Resolve(context.Background(), "https://youtu.be/abc", ports.MediaAudio)
	if err != nil || got != "https://cdn.example.com/audio.m4a" {
		t.Fatalf("audio: got %q, %v", got, err)
	}
}
