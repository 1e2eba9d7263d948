package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

type generateFunc func(ctx context.Context, key, model, system, user string) (string, error)

// Adapter generates text with Gemini. It accepts several API keys and
// rotates to the next one when a key is rate limited.
type Adapter struct {
	model    string
	keys     []string
	mu       sync.Mutex
	cur      int
	generate generateFunc
}

// New splits apiKeys on commas.
func New(apiKeys, model string) (*Adapter, error) {
	var keys []string
	for _, k := range strings.Split(apiKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	if model == "" {
		model = defaultModel
	}
	return &Adapter{model: model, keys: keys, generate: generateContent}, nil
}

func (a *Adapter) Complete(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for range a.keys {
		key, idx := a.key()
		text, err := a.generate(ctx, key, a.model, system, user)
		if err == nil {
			return text, nil
		}
		if !isRateLimited(err) {
			return "", fmt.Errorf("gemini generate content: %w", err)
		}
		a.rotate(idx)
		lastErr = err
	}
	return "", fmt.Errorf("all gemini API keys exhausted: %w", lastErr)
}

func (a *Adapter) key() (string, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keys[a.cur], a.cur
}

// rotate moves past idx unless another caller already did.
func (a *Adapter) rotate(idx int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cur == idx {
		a.cur = (a.cur + 1) % len(a.keys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func generateContent(ctx context.Context, key, model, system, user string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(user), cfg)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("empty response from Gemini")
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
