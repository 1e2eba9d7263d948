package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/forPelevin/vidarticle/internal/types"
)

const defaultBaseURL = "https://www.youtube.com"

// Adapter reads native caption tracks from YouTube watch pages.
type Adapter struct {
	baseURL string
	client  *http.Client
}

func New(client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{baseURL: defaultBaseURL, client: client}
}

func (a *Adapter) ListTracks(ctx context.Context, videoID string) ([]types.CaptionTrack, error) {
	doc, err := a.fetchDocument(ctx, a.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, err
	}
	pr, err := playerResponse(doc)
	if err != nil {
		return nil, err
	}
	tracks := pr.tracks()
	if len(tracks) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, types.ErrCaptionsDisabled)
	}
	return tracks, nil
}

func (a *Adapter) Fetch(ctx context.Context, track types.CaptionTrack, translateTo string) ([]types.TranscriptEntry, error) {
	u, err := url.Parse(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("caption url: %w", err)
	}
	if !u.IsAbs() {
		base, _ := url.Parse(a.baseURL)
		u = base.ResolveReference(u)
	}
	q := u.Query()
	q.Del("fmt")
	if translateTo != "" {
		q.Set("tlang", translateTo)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US")
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request captions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube timedtext returned %s", resp.Status)
	}
	return parseTimedText(xml.NewDecoder(resp.Body))
}

func (a *Adapter) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) vidarticle/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}
	return doc, nil
}

type player struct {
	Captions struct {
		Renderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				Name         text   `json:"name"`
				LanguageCode string `json:"languageCode"`
				Kind         string `json:"kind"`
				Translatable bool   `json:"isTranslatable"`
			} `json:"captionTracks"`
			TranslationLanguages []struct {
				LanguageCode string `json:"languageCode"`
			} `json:"translationLanguages"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type text struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t text) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

func (p player) tracks() []types.CaptionTrack {
	r := p.Captions.Renderer
	langs := make([]string, 0, len(r.TranslationLanguages))
	for _, l := range r.TranslationLanguages {
		langs = append(langs, l.LanguageCode)
	}
	out := make([]types.CaptionTrack, 0, len(r.CaptionTracks))
	for _, t := range r.CaptionTracks {
		ct := types.CaptionTrack{
			LanguageCode: t.LanguageCode,
			Name:         t.Name.String(),
			IsGenerated:  t.Kind == "asr",
			BaseURL:      t.BaseURL,
		}
		if t.Translatable {
			ct.TranslationLanguages = langs
		}
		out = append(out, ct)
	}
	return out
}

const playerVar = "ytInitialPlayerResponse"

var errNoPlayer = errors.New("youtube: player response not found")

func playerResponse(doc *goquery.Document) (player, error) {
	var (
		p     player
		found bool
		err   error
	)
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		i := strings.Index(body, playerVar)
		if i < 0 {
			return true
		}
		j := strings.Index(body[i:], "{")
		if j < 0 {
			return true
		}
		// Decode stops after the first complete value, so trailing script is ignored.
		dec := json.NewDecoder(strings.NewReader(body[i+j:]))
		if err = dec.Decode(&p); err != nil {
			err = fmt.Errorf("decode %s: %w", playerVar, err)
			return false
		}
		found = true
		return false
	})
	if err != nil {
		return player{}, err
	}
	if !found {
		return player{}, errNoPlayer
	}
	return p, nil
}

var tagRE = regexp.MustCompile(`<[^>]*>`)

func parseTimedText(dec *xml.Decoder) ([]types.TranscriptEntry, error) {
	var doc struct {
		Texts []struct {
			Start float64 `xml:"start,attr"`
			Dur   float64 `xml:"dur,attr"`
			Body  string  `xml:",chardata"`
		} `xml:"text"`
	}
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}
	out := make([]types.TranscriptEntry, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		s := strings.TrimSpace(tagRE.ReplaceAllString(html.UnescapeString(t.Body), ""))
		if s == "" {
			continue
		}
		out = append(out, types.TranscriptEntry{Text: s, Start: t.Start, Duration: t.Dur})
	}
	return out, nil
}
