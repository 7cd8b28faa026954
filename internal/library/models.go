package library

// Series is one registered work. Author and Publisher are "" when unknown
// (stored as NULL).
type Series struct {
	ID        int64
	Title     string
	Author    string
	Publisher string
}

// Volume is one registered published unit of a series.
type Volume struct {
	ISBN         string
	VolumeNumber *int
	CoverURL     string
	RegisteredAt string
}

// SeriesDetail is a series with its volumes in display order: volume number
// ascending with unknown numbers last, then registration time, then ISBN.
type SeriesDetail struct {
	Series
	CreatedAt string
	Volumes   []Volume
}

// LibrarySeries is a series row for the library listing, carrying the
// representative cover: volume 1's cover when present, otherwise the oldest
// registered non-empty cover.
type LibrarySeries struct {
	Series
	RepresentativeCoverURL string
}
