package ndl

import (
	"regexp"
	"strconv"

	"mangashelf/internal/textnorm"
)

// Ordered trailing-volume-marker patterns. The first pattern that matches
// and leaves a non-empty series segment wins. Full-width digits and spaces
// are already folded by NFKC before matching.
var titleVolumePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.+?)[\s　]*第([0-9]+)巻$`),
	regexp.MustCompile(`^(.+?)[\s　]*([0-9]+)巻$`),
	regexp.MustCompile(`(?i)^(.+?)[\s　]+vol\.?[\s　]*([0-9]+)$`),
	regexp.MustCompile(`^(.+?)[\s　]+([0-9]+)$`),
}

// splitTitleAndVolumeNumber separates a trailing volume marker from a raw
// catalog title. Titles without a recognizable marker come back whole with a
// nil number. The returned series title is normalized and trimmed; it is ""
// only when the input itself normalizes to nothing.
func splitTitleAndVolumeNumber(rawTitle string) (string, *int) {
	title := textnorm.Text(rawTitle)
	if title == "" {
		return "", nil
	}

	for _, pattern := range titleVolumePatterns {
		match := pattern.FindStringSubmatch(title)
		if match == nil {
			continue
		}
		seriesTitle := textnorm.Text(match[1])
		if seriesTitle == "" {
			continue
		}
		number, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		return seriesTitle, &number
	}

	return title, nil
}
