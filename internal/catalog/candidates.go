// Package catalog holds the candidate-resolution logic that turns raw NDL
// search results into the unregistered-volume suggestions shown for a
// series, plus the owned-status assignment used by the generic search and
// lookup responses.
package catalog

import (
	"sort"
	"strings"

	"mangashelf/internal/ndl"
	"mangashelf/internal/textnorm"
)

// TargetSeries is the locally registered series candidates are matched
// against. Author and Publisher may be empty.
type TargetSeries struct {
	Title     string
	Author    string
	Publisher string
}

// Edition-variant noise filtered out of series candidates. Matching happens
// on normalized text, so case and width variants of these are caught too.
var exclusionTerms = []string{
	"特装版",
	"電子版",
	"電子書籍",
	"Kindle",
	"[Kindle版]",
}

func exclusionKeywords() []string {
	keywords := make([]string, 0, len(exclusionTerms))
	seen := make(map[string]struct{}, len(exclusionTerms))
	for _, term := range exclusionTerms {
		normalized := textnorm.ForMatch(term)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		keywords = append(keywords, normalized)
	}
	return keywords
}

// BuildCandidateQuery assembles the upstream keyword query for a series:
// title, then author, then publisher, space separated, skipping fields that
// normalize to nothing.
func BuildCandidateQuery(target TargetSeries) string {
	parts := []string{strings.TrimSpace(target.Title)}
	if textnorm.ForMatch(target.Author) != "" {
		parts = append(parts, strings.TrimSpace(target.Author))
	}
	if textnorm.ForMatch(target.Publisher) != "" {
		parts = append(parts, strings.TrimSpace(target.Publisher))
	}
	return strings.Join(parts, " ")
}

// titlesMatch requires a substring relation in either direction between the
// normalized titles. Both sides must normalize to something.
func titlesMatch(seriesTitle, candidateTitle string) bool {
	a := textnorm.ForMatch(seriesTitle)
	b := textnorm.ForMatch(candidateTitle)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// metadataMatches applies the looser author/publisher rule: an empty side
// matches anything, otherwise substring in either direction.
func metadataMatches(expected, candidate string) bool {
	a := textnorm.ForMatch(expected)
	if a == "" {
		return true
	}
	b := textnorm.ForMatch(candidate)
	if b == "" {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// containsExclusionKeyword checks the candidate's combined normalized
// title/author/publisher text against the exclusion list.
func containsExclusionKeyword(candidate ndl.SearchCandidate, keywords []string) bool {
	parts := make([]string, 0, 3)
	for _, raw := range []string{candidate.Title, candidate.Author, candidate.Publisher} {
		if normalized := textnorm.ForMatch(raw); normalized != "" {
			parts = append(parts, normalized)
		}
	}
	if len(parts) == 0 {
		return false
	}
	searchable := strings.Join(parts, " ")
	for _, keyword := range keywords {
		if strings.Contains(searchable, keyword) {
			return true
		}
	}
	return false
}

// UnregisteredCandidates runs the full series-candidate pipeline: filter
// against registered ISBNs/volume numbers and the target series metadata,
// drop edition variants, deduplicate by ISBN keeping the richer record, and
// return a stably ordered list (volume number ascending, unknown numbers
// last, ties broken by ISBN).
func UnregisteredCandidates(
	target TargetSeries,
	candidates []ndl.SearchCandidate,
	registeredISBNs map[string]struct{},
	registeredVolumeNumbers map[int]struct{},
) []ndl.SearchCandidate {
	keywords := exclusionKeywords()
	byISBN := make(map[string]ndl.SearchCandidate)
	order := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate.ISBN == "" {
			continue
		}
		if _, registered := registeredISBNs[candidate.ISBN]; registered {
			continue
		}
		if candidate.VolumeNumber != nil {
			if _, registered := registeredVolumeNumbers[*candidate.VolumeNumber]; registered {
				continue
			}
		}
		if !titlesMatch(target.Title, candidate.Title) {
			continue
		}
		if !metadataMatches(target.Author, candidate.Author) {
			continue
		}
		if !metadataMatches(target.Publisher, candidate.Publisher) {
			continue
		}
		if containsExclusionKeyword(candidate, keywords) {
			continue
		}

		existing, seen := byISBN[candidate.ISBN]
		if !seen {
			byISBN[candidate.ISBN] = candidate
			order = append(order, candidate.ISBN)
			continue
		}
		byISBN[candidate.ISBN] = ndl.RicherCandidate(existing, candidate)
	}

	result := make([]ndl.SearchCandidate, 0, len(order))
	for _, isbn := range order {
		result = append(result, byISBN[isbn])
	}
	sortCandidates(result)
	return result
}

// sortCandidates orders by volume number ascending with unknown numbers
// sorted last, then by ISBN ascending. An absent ISBN sorts as the empty
// string; the pipeline has already excluded those, but the ordering stays
// total so the function is safe on any input.
func sortCandidates(candidates []ndl.SearchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.VolumeNumber == nil && b.VolumeNumber != nil:
			return false
		case a.VolumeNumber != nil && b.VolumeNumber == nil:
			return true
		case a.VolumeNumber != nil && b.VolumeNumber != nil && *a.VolumeNumber != *b.VolumeNumber:
			return *a.VolumeNumber < *b.VolumeNumber
		}
		return a.ISBN < b.ISBN
	})
}

// AssignOwned resolves the tri-state owned flag for one candidate against
// the set of registered ISBNs.
func AssignOwned(candidate ndl.SearchCandidate, registeredISBNs map[string]struct{}) ndl.SearchCandidate {
	if candidate.ISBN == "" {
		candidate.Owned = ndl.OwnedUnknown
		return candidate
	}
	_, registered := registeredISBNs[candidate.ISBN]
	candidate.Owned = ndl.Owned(registered)
	return candidate
}

// AssignOwnedAll applies AssignOwned across a slice in place-order.
func AssignOwnedAll(candidates []ndl.SearchCandidate, registeredISBNs map[string]struct{}) []ndl.SearchCandidate {
	out := make([]ndl.SearchCandidate, len(candidates))
	for i, candidate := range candidates {
		out[i] = AssignOwned(candidate, registeredISBNs)
	}
	return out
}
