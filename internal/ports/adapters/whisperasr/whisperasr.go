package whisperasr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forPelevin/vidarticle/internal/types"
)

const defaultBaseURL = "http://whisper:9000"

// Adapter talks to a whisper-asr-webservice instance.
type Adapter struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Adapter {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{baseURL: baseURL, client: &http.Client{Timeout: 30 * time.Minute}}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, _ string) (types.Transcript, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return types.Transcript{}, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio_file", filepath.Base(wavPath))
	if err != nil {
		return types.Transcript{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return types.Transcript{}, fmt.Errorf("read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return types.Transcript{}, err
	}

	url := a.baseURL + "/asr?encode=true&output=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return types.Transcript{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper asr request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return types.Transcript{}, fmt.Errorf("whisper asr status %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var tr types.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return types.Transcript{}, fmt.Errorf("decode whisper asr response: %w", err)
	}
	for i := range tr.Segments {
		tr.Segments[i].Text = strings.TrimSpace(tr.Segments[i].Text)
	}
	return tr, nil
}
