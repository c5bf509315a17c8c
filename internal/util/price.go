package util

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reGroupedComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	reGroupedDot   = regexp.MustCompile(`^\d{1,3}(?:(?:\.\d{3}){2,}(?:,\d+)?|(?:\.\d{3})+,\d+)$`)
	reDecimalComma = regexp.MustCompile(`^\d+,\d{1,2}$`)
	rePlainNumber  = regexp.MustCompile(`^-?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?$`)
	reCurrencyCode = regexp.MustCompile(`(?i)^(?:usd|eur|gbp|lbp|aed|sar|l\.l\.?|ll)\s*|\s*(?:usd|eur|gbp|lbp|aed|sar|l\.l\.?|ll)$`)
)

// maxPrice is 2^63, the first float64 that no longer fits an int64.
const maxPrice = float64(math.MaxInt64)

// ParsePrice converts a raw cell value into whole currency units.
// Numbers, numeric strings with currency marks and grouped digits all
// round the same way (half away from zero). Negative, non-finite,
// out-of-range and non-numeric values report ok=false.
func ParsePrice(v any) (int64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case bool:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		return ParsePrice(t.String())
	case string:
		parsed, ok := parsePriceText(t)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return ParsePrice(fmt.Sprint(t))
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || math.Round(f) >= maxPrice {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func parsePriceText(input string) (float64, bool) {
	cleaned := CleanPriceText(input)
	if cleaned == "" || !rePlainNumber.MatchString(cleaned) {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// CleanPriceText strips currency marks and thousands separators and leaves a
// dot-decimal number string. A single dot is always a decimal point; dots
// group thousands only when there are several of them or a decimal comma
// follows.
func CleanPriceText(input string) string {
	s := strings.TrimSpace(input)
	s = reCurrencyCode.ReplaceAllString(s, "")

	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) || r == '\'' {
			continue
		}
		b.WriteRune(r)
	}
	compact := b.String()

	switch {
	case reGroupedComma.MatchString(compact):
		return strings.ReplaceAll(compact, ",", "")
	case reGroupedDot.MatchString(compact):
		return strings.ReplaceAll(strings.ReplaceAll(compact, ".", ""), ",", ".")
	case reDecimalComma.MatchString(compact):
		return strings.ReplaceAll(compact, ",", ".")
	default:
		return strings.ReplaceAll(compact, ",", "")
	}
}
