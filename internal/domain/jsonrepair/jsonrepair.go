// Package jsonrepair recovers the few truncation patterns language models
// emit when asked for a JSON object. It is not a general JSON fixer.
package jsonrepair

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forPelevin/vidarticle/internal/types"
)

// A quote the model wrote right after the dots closes the substituted
// timestamp; the bare form gets its own closing quote.
var placeholderFixes = strings.NewReplacer(
	`, ...`, ``,
	`,...`, ``,
	`"end": ..."`, `"end": "0:00:00"`,
	`"end": ...`, `"end": "0:00:00"`,
	`"end": "end"`, `"end": "00:00:00"`,
)

// Unmarshal decodes s into v, trying in order: s as-is, s with list
// placeholders and unterminated "end" fields replaced, then that text without
// one trailing '}', then without one trailing ']'.
func Unmarshal(s string, v any) error {
	fixed := placeholderFixes.Replace(s)
	trimmed := strings.TrimRight(fixed, " \t\r\n")
	variants := []string{
		s,
		fixed,
		strings.TrimSuffix(trimmed, "}"),
		strings.TrimSuffix(trimmed, "]"),
	}
	for _, c := range variants {
		if !json.Valid([]byte(c)) {
			continue
		}
		if err := json.Unmarshal([]byte(c), v); err != nil {
			return fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
		}
		return nil
	}
	return fmt.Errorf("%w: no repair variant parses: %q", types.ErrMalformedResponse, truncate(s, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
