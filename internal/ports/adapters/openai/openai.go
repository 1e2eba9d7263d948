package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"github.com/forPelevin/vidarticle/internal/types"
)

const (
	defaultModel   = "gpt-3.5-turbo-16k"
	requestTimeout = 5 * time.Minute
)

// Adapter serves both text generation and speech-to-text through an
// OpenAI-compatible endpoint.
type Adapter struct {
	key    string
	model  string
	client *oai.Client
}

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	cfg := oai.DefaultConfig(apiKey)
	cfg.BaseURL = normalizeBaseURL(baseURL)
	return &Adapter{key: apiKey, model: model, client: oai.NewClientWithConfig(cfg)}
}

// Complete streams a chat completion and returns the concatenated deltas.
func (a *Adapter) Complete(ctx context.Context, system, user string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	stream, err := a.client.CreateChatCompletionStream(reqCtx, oai.ChatCompletionRequest{
		Model: a.model,
		Messages: []oai.ChatCompletionMessage{
			{Role: oai.ChatMessageRoleSystem, Content: system},
			{Role: oai.ChatMessageRoleUser, Content: user},
		},
		Stream: true,
	})
	if err != nil {
		return "", a.wrap(reqCtx, "chat", err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", a.wrap(reqCtx, "chat stream", err)
		}
		for _, c := range resp.Choices {
			sb.WriteString(c.Delta.Content)
		}
	}
	return sb.String(), nil
}

// Transcribe sends the wav file to the hosted whisper model.
func (a *Adapter) Transcribe(ctx context.Context, wavPath, _ string) (types.Transcript, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := a.client.CreateTranscription(reqCtx, oai.AudioRequest{
		Model:    oai.Whisper1,
		FilePath: wavPath,
		Format:   oai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return types.Transcript{}, a.wrap(reqCtx, "transcription", err)
	}

	var tr types.Transcript
	for _, s := range resp.Segments {
		tr.Segments = append(tr.Segments, types.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}
	if len(tr.Segments) == 0 {
		if text := strings.TrimSpace(resp.Text); text != "" {
			tr.Segments = []types.Segment{{Start: 0, End: resp.Duration, Text: text}}
		}
	}
	return tr, nil
}

func (a *Adapter) wrap(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("openai %s timeout after %s (model=%s)", op, requestTimeout, a.model)
	}
	return fmt.Errorf("openai %s (model=%s): %s", op, a.model, truncate(redactSecrets(err.Error(), a.key), 400))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
