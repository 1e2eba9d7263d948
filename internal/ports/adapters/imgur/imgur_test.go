package imgur

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forPelevin/vidarticle/internal/types"
)

func TestNew_MissingCredentials(t *testing.T) {
	for _, c := range [][2]string{{"", "tok"}, {"id", ""}, {" ", " "}} {
		if _, err := New(c[0], c[1]); !errors.Is(err, types.ErrConfiguration) {
			t.Fatalf("New(%q, %q): expected ErrConfiguration, got %v", c[0], c[1], err)
		}
	}
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Client-ID cid" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req["key"] != "tok" || req["image"] != "aGVsbG8=" || req["type"] != "base64" || !strings.HasSuffix(req["name"], ".png") {
			t.Errorf("unexpected body: %v", req)
		}
		io.WriteString(w, `{"data":{"link":"https://i.imgur.com/xyz.png"},"success":true,"status":200}`)
	}))
	defer srv.Close()

	a, err := New("cid", "tok")
	if err != nil {
		t.Fatal(err)
	}
	a.endpoint = srv.URL

	link, err := a.Upload(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if link != "https://i.imgur.com/xyz.png" {
		t.Fatalf("unexpected link %q", link)
	}
}

func TestUpload_StatusRedactsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"data":{"error":"bad key tok-secret"}}`)
	}))
	defer srv.Close()

	a, _ := New("cid", "tok-secret")
	a.endpoint = srv.URL
	_, err := a.Upload(context.Background(), "x")
	if err == nil || strings.Contains(err.Error(), "tok-secret") {
		t.Fatalf("expected redacted error, got %v", err)
	}
}
