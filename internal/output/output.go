package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/vidarticle/internal/types"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatDocx     Format = "docx"
)

func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatMarkdown, FormatDocx:
		return true
	default:
		return false
	}
}

// ParseFormats splits a comma-separated list like "json,md". JSON is always
// included since it is the canonical result.
func ParseFormats(s string) ([]Format, error) {
	out := []Format{FormatJSON}
	seen := map[Format]bool{FormatJSON: true}
	for _, p := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(p)))
		if f == "" {
			continue
		}
		if !f.Valid() {
			return nil, fmt.Errorf("unknown output format %q (want json, md or docx)", p)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// WriteAll renders the article into dir once per format and returns the written paths.
func WriteAll(dir string, a types.Article, formats []Format) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		var (
			path = filepath.Join(dir, "article."+string(f))
			err  error
		)
		switch f {
		case FormatJSON:
			err = WriteJSON(path, a)
		case FormatMarkdown:
			err = os.WriteFile(path, []byte(RenderMarkdown(a)), 0o644)
		case FormatDocx:
			err = WriteDocx(path, a)
		default:
			err = fmt.Errorf("unknown output format %q", f)
		}
		if err != nil {
			return paths, fmt.Errorf("write %s: %w", f, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func WriteJSON(path string, a types.Article) error {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// imageSrc turns a stored image reference into something a document can link to.
func imageSrc(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "data:") {
		return ref
	}
	return "data:image/png;base64," + ref
}
