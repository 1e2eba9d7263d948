package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/forPelevin/vidarticle/internal/ports"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, in, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", in,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

type videoInfo struct {
	Width  int
	Height int
	FPS    float64
}

func (a *Adapter) probe(ctx context.Context, src string) (videoInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate",
		"-of", "json",
		src,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return videoInfo{}, fmt.Errorf("ffprobe video stream: %w\n%s", err, string(b))
	}
	return parseProbe(b)
}

func parseProbe(b []byte) (videoInfo, error) {
	var raw struct {
		Streams []struct {
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			RFrameRate   string `json:"r_frame_rate"`
			AvgFrameRate string `json:"avg_frame_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return videoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(raw.Streams) == 0 {
		return videoInfo{}, errors.New("ffprobe: no video stream")
	}
	s := raw.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return videoInfo{}, fmt.Errorf("ffprobe: invalid frame size %dx%d", s.Width, s.Height)
	}
	fps, err := parseRate(s.AvgFrameRate)
	if err != nil || fps <= 0 {
		fps, err = parseRate(s.RFrameRate)
	}
	if err != nil {
		return videoInfo{}, err
	}
	if fps <= 0 {
		return videoInfo{}, fmt.Errorf("ffprobe: invalid frame rate %q", s.RFrameRate)
	}
	return videoInfo{Width: s.Width, Height: s.Height, FPS: fps}, nil
}

// parseRate parses ffprobe rates such as "30000/1001" or "25".
func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	if !ok {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}

// OpenFrames starts a decoder that writes raw RGBA frames to a pipe.
// The caller must Close the stream.
func (a *Adapter) OpenFrames(ctx context.Context, src string) (ports.FrameStream, error) {
	info, err := a.probe(ctx, src)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-v", "error",
		"-i", src,
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start decoder: %w", err)
	}
	return &frameStream{
		cmd:    cmd,
		r:      out,
		stderr: &stderr,
		fps:    info.FPS,
		buf:    image.NewRGBA(image.Rect(0, 0, info.Width, info.Height)),
	}, nil
}

type frameStream struct {
	cmd    *exec.Cmd
	r      io.Reader
	stderr *bytes.Buffer
	fps    float64
	buf    *image.RGBA
	closed bool
}

func (s *frameStream) FrameRate() float64 { return s.fps }

func (s *frameStream) Next() (image.Image, error) {
	return readFrame(s.r, s.buf)
}

func readFrame(r io.Reader, buf *image.RGBA) (image.Image, error) {
	_, err := io.ReadFull(r, buf.Pix)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read raw frame: %w", err)
	}
	return buf, nil
}

func (s *frameStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	err := s.cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("ffmpeg decoder: %w\n%s", err, s.stderr.String())
	}
	return nil
}
