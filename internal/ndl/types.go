package ndl

import "encoding/json"

// VolumeMetadata is the bibliographic record used to register a volume. The
// title is the series-level title with any trailing volume marker removed.
type VolumeMetadata struct {
	Title        string
	Author       string
	Publisher    string
	VolumeNumber *int
	CoverURL     string
}

// SearchCandidate is one prospective record from a keyword or identifier
// search. ISBN is the canonical 13-digit form or "" when the upstream item
// carried none. Owned is assigned by cross-referencing local storage after
// retrieval; the catalog itself never sets it.
type SearchCandidate struct {
	Title        string
	Author       string
	Publisher    string
	ISBN         string
	VolumeNumber *int
	CoverURL     string
	Owned        OwnedStatus
}

// RicherCandidate picks the more complete of two candidates sharing an ISBN:
// a known volume number beats none; between two known numbers the smaller
// wins (differing numbers for one ISBN point at upstream data-quality noise,
// and lower volumes are treated as canonical when that happens); then a known
// cover URL beats none; otherwise the first seen stays.
func RicherCandidate(existing, incoming SearchCandidate) SearchCandidate {
	if existing.VolumeNumber == nil && incoming.VolumeNumber != nil {
		return incoming
	}
	if existing.VolumeNumber != nil && incoming.VolumeNumber != nil &&
		*incoming.VolumeNumber < *existing.VolumeNumber {
		return incoming
	}
	if existing.CoverURL == "" && incoming.CoverURL != "" {
		return incoming
	}
	return existing
}

// OwnedStatus is a closed tri-state: a candidate is owned, not owned, or of
// unknown ownership because it has no ISBN to check against storage.
type OwnedStatus int

const (
	OwnedUnknown OwnedStatus = iota
	OwnedNo
	OwnedYes
)

// Owned maps a known ownership bool onto the tri-state.
func Owned(owned bool) OwnedStatus {
	if owned {
		return OwnedYes
	}
	return OwnedNo
}

// MarshalJSON serializes the tri-state as true, false, or "unknown" so the
// unknown case stays distinct from "not owned" on the wire.
func (s OwnedStatus) MarshalJSON() ([]byte, error) {
	switch s {
	case OwnedYes:
		return json.Marshal(true)
	case OwnedNo:
		return json.Marshal(false)
	default:
		return json.Marshal("unknown")
	}
}

func (s OwnedStatus) String() string {
	switch s {
	case OwnedYes:
		return "true"
	case OwnedNo:
		return "false"
	default:
		return "unknown"
	}
}
