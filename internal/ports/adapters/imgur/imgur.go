package imgur

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/vidarticle/internal/types"
)

const defaultEndpoint = "https://api.imgur.com/3/upload.json"

type Adapter struct {
	clientID string
	token    string
	endpoint string
	client   *http.Client
}

// New fails with types.ErrConfiguration when either credential is missing.
func New(clientID, token string) (*Adapter, error) {
	clientID, token = strings.TrimSpace(clientID), strings.TrimSpace(token)
	if clientID == "" || token == "" {
		return nil, fmt.Errorf("imgur requires IMGUR_CLIENT_ID and IMGUR_TOKEN: %w", types.ErrConfiguration)
	}
	return &Adapter{
		clientID: clientID,
		token:    token,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Upload(ctx context.Context, base64Image string) (string, error) {
	name := uuid.NewString()
	body, err := json.Marshal(map[string]string{
		"key":   a.token,
		"image": base64Image,
		"type":  "base64",
		"name":  name + ".png",
		"title": name,
	})
	if err != nil {
		return "", fmt.Errorf("marshal upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+a.clientID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("imgur upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.ReplaceAll(string(rb), a.token, "[REDACTED]")
		return "", fmt.Errorf("imgur status %d: %s", resp.StatusCode, strings.TrimSpace(msg))
	}

	var out struct {
		Data struct {
			Link string `json:"link"`
		} `json:"data"`
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode imgur response: %w", err)
	}
	if out.Data.Link == "" {
		return "", fmt.Errorf("imgur response has no link")
	}
	return out.Data.Link, nil
}
