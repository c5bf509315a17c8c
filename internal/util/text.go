package util

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(strings.ReplaceAll(input, "\u00a0", " "), " "))
}

// CellText renders a cell value as trimmed text. Whole floats drop the
// fractional part so a numeric SKU reads as "1200" and not "1200.000000".
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return NormalizeSpaces(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'f', 0, 64)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return NormalizeSpaces(fmt.Sprint(t))
	}
}

// Truncate clips s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
