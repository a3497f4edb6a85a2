// Package validate holds the pure input validators for the intake flow.
// Each function normalizes raw user text into the canonical string shape
// stored on the form, or reports that the input is unusable. Nothing here
// touches a store or a transport.
package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeNow is a test seam for resolving the "today" shortcut.
var timeNow = time.Now

// dateRE matches the strict YYYY-MM-DD shape before calendar validation.
var dateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate converts user text into an ISO-8601 date string.
//
// Accepted inputs:
//   - "today" or "now" (case-insensitive): resolved against the process
//     clock, UTC, date only.
//   - strict "YYYY-MM-DD": returned verbatim after calendar validation,
//     so "2025-13-01" is rejected even though it matches the shape.
//
// The second return value is false for everything else.
func NormalizeDate(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "today" || t == "now" {
		return timeNow().UTC().Format("2006-01-02"), true
	}
	if !dateRE.MatchString(t) {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", t); err != nil {
		return "", false
	}
	return t, true
}

// currencyRunes are stripped from both ends of an amount before parsing.
const currencyRunes = "$€£¥"

// NormalizeAmount converts user text into a canonical amount string with
// exactly two fraction digits.
//
// Surrounding whitespace and currency symbols are stripped. A comma is
// accepted as the decimal separator; when both comma and dot appear, the
// commas are treated as thousands separators. Anything that does not parse
// as a finite real number is rejected.
func NormalizeAmount(text string) (string, bool) {
	t := strings.TrimSpace(text)
	t = strings.Trim(t, currencyRunes)
	t = strings.TrimSpace(t)
	if t == "" {
		return "", false
	}

	switch {
	case strings.Contains(t, ",") && strings.Contains(t, "."):
		t = strings.ReplaceAll(t, ",", "")
	case strings.Contains(t, ","):
		if strings.Count(t, ",") > 1 {
			t = strings.ReplaceAll(t, ",", "")
		} else {
			t = strings.Replace(t, ",", ".", 1)
		}
	}

	v, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', 2, 64), true
}

// LooksLikeURL reports whether the trimmed input starts with "http://" or
// "https://", case-insensitively. No reachability or DNS checks.
func LooksLikeURL(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://")
}
