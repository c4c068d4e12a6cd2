// Package textutil holds small text helpers shared by the crawler and the
// API layer. All helpers are rune-aware; listing titles are Korean.
package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	digitsRe     = regexp.MustCompile(`\d+`)
)

// CleanText collapses runs of whitespace (including newlines and tabs) into
// single spaces and trims the result.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// ExtractNumber pulls the digits out of formatted currency text such as
// "1,234,500원" and returns them as one integer. Returns false when the
// text contains no digits.
func ExtractNumber(text string) (int64, bool) {
	if text == "" {
		return 0, false
	}
	groups := digitsRe.FindAllString(strings.ReplaceAll(text, ",", ""), -1)
	if len(groups) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.Join(groups, ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TruncateText limits text to maxLen runes, replacing the tail with "..."
// when it is cut.
func TruncateText(text string, maxLen int) string {
	if text == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// FormatCurrency renders an appraisal value with thousands separators and
// the won suffix. A nil value renders as "미정" (undetermined).
func FormatCurrency(amount *int64) string {
	if amount == nil {
		return "미정"
	}
	s := strconv.FormatInt(*amount, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String() + "원"
	if neg {
		return "-" + out
	}
	return out
}
