package httpapi

import (
	"context"

	"mangashelf/internal/library"
	"mangashelf/internal/ndl"
)

// Store is the storage surface the handlers depend on.
type Store interface {
	Ping(ctx context.Context) error
	CreateSeries(ctx context.Context, title, author, publisher string) (library.Series, error)
	FindOrCreateSeries(ctx context.Context, title, author, publisher string) (library.Series, error)
	ListSeries(ctx context.Context) ([]library.Series, error)
	ListLibrary(ctx context.Context, query string) ([]library.LibrarySeries, error)
	SeriesDetailByID(ctx context.Context, seriesID int64) (library.SeriesDetail, error)
	ExistingVolumeSeriesID(ctx context.Context, isbn string) (int64, error)
	InsertVolume(ctx context.Context, isbn string, seriesID int64, volumeNumber *int, coverURL string) error
	VolumeWithSeries(ctx context.Context, isbn string) (library.Series, library.Volume, error)
	DeleteVolume(ctx context.Context, isbn string) (seriesID int64, remaining int, err error)
	DeleteSeries(ctx context.Context, seriesID int64) (deletedVolumes int, err error)
	RegisteredISBNs(ctx context.Context, isbns []string) (map[string]struct{}, error)
}

// CatalogClient is the upstream catalog surface the handlers depend on.
type CatalogClient interface {
	FetchVolumeMetadata(ctx context.Context, isbn string) (ndl.VolumeMetadata, error)
	SearchByKeyword(ctx context.Context, query string, limit, page int) ([]ndl.SearchCandidate, error)
	LookupByIdentifier(ctx context.Context, rawISBN string) (*ndl.SearchCandidate, error)
}
