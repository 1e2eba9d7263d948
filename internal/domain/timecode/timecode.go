package timecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forPelevin/vidarticle/internal/types"
)

// Parse converts "h:mm:ss" into seconds. Every component that compares
// topic boundaries goes through here.
func Parse(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: timestamp %q is not h:mm:ss", types.ErrFormat, s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: timestamp %q has a bad field %q", types.ErrFormat, s, p)
		}
		v[i] = n
	}
	return v[0]*3600 + v[1]*60 + v[2], nil
}

// Format renders seconds as "h:mm:ss"; fractional seconds are truncated.
func Format(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	n := int(sec)
	return fmt.Sprintf("%d:%02d:%02d", n/3600, n/60%60, n%60)
}

// FormatPadded renders seconds as "hh:mm:ss".
func FormatPadded(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	n := int(sec)
	return fmt.Sprintf("%02d:%02d:%02d", n/3600, n/60%60, n%60)
}
