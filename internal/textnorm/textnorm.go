// Package textnorm provides Unicode and ISBN normalization helpers shared by
// the catalog client and the candidate matching logic.
//
// All helpers apply NFKC compatibility normalization first so that full-width
// digits, full-width Latin letters, and ideographic spaces compare equal to
// their ASCII counterparts.
package textnorm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidISBN indicates input that does not normalize to 13 ASCII digits.
var ErrInvalidISBN = errors.New("isbn must be 13 digits")

var (
	isbn13Pattern  = regexp.MustCompile(`^[0-9]{13}$`)
	embeddedISBN13 = regexp.MustCompile(`97[89][0-9]{10}`)
	digitRun       = regexp.MustCompile(`[0-9]+`)
	whitespaceRun  = regexp.MustCompile(`\s+`)

	foldCaser = cases.Fold()
)

// Text NFKC-normalizes and trims s. An all-whitespace input yields "".
func Text(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// ISBN normalizes s to the canonical 13-digit storage form: NFKC, trim
// surrounding whitespace, strip hyphens. Interior whitespace is not removed,
// so "9784 088820000" is rejected. Anything that is not exactly 13 ASCII
// digits afterwards fails with ErrInvalidISBN.
func ISBN(s string) (string, error) {
	normalized := strings.TrimSpace(norm.NFKC.String(s))
	normalized = strings.ReplaceAll(normalized, "-", "")
	if !isbn13Pattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidISBN, s)
	}
	return normalized, nil
}

// ForMatch normalizes s for fuzzy comparisons: NFKC, trim, case fold, then
// strip all whitespace. The result is only suitable for equality and
// substring checks, never for storage or display. Empty means absent.
func ForMatch(s string) string {
	normalized := strings.TrimSpace(norm.NFKC.String(s))
	if normalized == "" {
		return ""
	}
	return whitespaceRun.ReplaceAllString(foldCaser.String(normalized), "")
}

// ExtractISBN13 scans s for an embedded ISBN-13 (a 13-digit run starting
// with 978 or 979) after stripping separators. The first match wins; ""
// means none was found. Prefixes like "urn:isbn:" or "ISBN" are tolerated.
func ExtractISBN13(s string) string {
	stripped := whitespaceRun.ReplaceAllString(norm.NFKC.String(s), "")
	stripped = strings.ReplaceAll(stripped, "-", "")
	return embeddedISBN13.FindString(stripped)
}

// LeadingInteger extracts the first run of ASCII digits in s and parses it.
// The second return reports whether a digit run was found.
func LeadingInteger(s string) (int, bool) {
	match := digitRun.FindString(norm.NFKC.String(s))
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
