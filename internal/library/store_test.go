package library

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := Open(filepath.Join(t.TempDir(), "library.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func intPtr(n int) *int { return &n }

func TestOpenCreatesSchema(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))

	seriesList, err := store.ListSeries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, seriesList)
}

func TestFindOrCreateSeriesIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.FindOrCreateSeries(ctx, "テスト作品", "テスト著者", "テスト出版社")
	require.NoError(t, err)
	second, err := store.FindOrCreateSeries(ctx, "テスト作品", "テスト著者", "テスト出版社")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// A different identity gets its own row.
	other, err := store.FindOrCreateSeries(ctx, "テスト作品", "別の著者", "テスト出版社")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestFindOrCreateSeriesTreatsEmptyAsNull(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.FindOrCreateSeries(ctx, "テスト作品", "", "")
	require.NoError(t, err)
	second, err := store.FindOrCreateSeries(ctx, "テスト作品", "", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.Author)
	assert.Empty(t, second.Publisher)
}

func TestCreateSeriesRejectsDuplicateIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateSeries(ctx, "テスト作品", "テスト著者", "")
	require.NoError(t, err)

	_, err = store.CreateSeries(ctx, "テスト作品", "テスト著者", "")
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestInsertVolumeAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	series, err := store.FindOrCreateSeries(ctx, "テスト作品", "テスト著者", "テスト出版社")
	require.NoError(t, err)

	require.NoError(t, store.InsertVolume(ctx, "9784000000001", series.ID, intPtr(1), "https://example.org/1.jpg"))

	seriesID, err := store.ExistingVolumeSeriesID(ctx, "9784000000001")
	require.NoError(t, err)
	assert.Equal(t, series.ID, seriesID)

	gotSeries, gotVolume, err := store.VolumeWithSeries(ctx, "9784000000001")
	require.NoError(t, err)
	assert.Equal(t, series.ID, gotSeries.ID)
	assert.Equal(t, "9784000000001", gotVolume.ISBN)
	require.NotNil(t, gotVolume.VolumeNumber)
	assert.Equal(t, 1, *gotVolume.VolumeNumber)
	assert.Equal(t, "https://example.org/1.jpg", gotVolume.CoverURL)
	assert.NotEmpty(t, gotVolume.RegisteredAt)

	err = store.InsertVolume(ctx, "9784000000001", series.ID, intPtr(1), "")
	assert.ErrorIs(t, err, ErrVolumeExists)

	_, err = store.ExistingVolumeSeriesID(ctx, "9784999999999")
	assert.ErrorIs(t, err, ErrVolumeNotFound)
}

func TestSeriesDetailOrdersVolumes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	series, err := store.FindOrCreateSeries(ctx, "テスト作品", "", "")
	require.NoError(t, err)

	require.NoError(t, store.InsertVolume(ctx, "9784000000003", series.ID, intPtr(3), ""))
	require.NoError(t, store.InsertVolume(ctx, "9784000000099", series.ID, nil, ""))
	require.NoError(t, store.InsertVolume(ctx, "9784000000001", series.ID, intPtr(1), ""))

	detail, err := store.SeriesDetailByID(ctx, series.ID)
	require.NoError(t, err)
	require.Len(t, detail.Volumes, 3)
	assert.Equal(t, "9784000000001", detail.Volumes[0].ISBN)
	assert.Equal(t, "9784000000003", detail.Volumes[1].ISBN)
	assert.Equal(t, "9784000000099", detail.Volumes[2].ISBN)
	assert.Nil(t, detail.Volumes[2].VolumeNumber)

	_, err = store.SeriesDetailByID(ctx, series.ID+1000)
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}

func TestListLibraryRepresentativeCover(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	series, err := store.FindOrCreateSeries(ctx, "テスト作品", "", "")
	require.NoError(t, err)

	// Volume 2 registered first, but volume 1's cover should win.
	require.NoError(t, store.InsertVolume(ctx, "9784000000002", series.ID, intPtr(2), "https://example.org/2.jpg"))
	require.NoError(t, store.InsertVolume(ctx, "9784000000001", series.ID, intPtr(1), "https://example.org/1.jpg"))

	entries, err := store.ListLibrary(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://example.org/1.jpg", entries[0].RepresentativeCoverURL)
}

func TestListLibraryFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.FindOrCreateSeries(ctx, "ワンピース", "尾田栄一郎", "")
	require.NoError(t, err)
	_, err = store.FindOrCreateSeries(ctx, "ナルト", "岸本斉史", "")
	require.NoError(t, err)

	all, err := store.ListLibrary(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byTitle, err := store.ListLibrary(ctx, "ワンピ")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "ワンピース", byTitle[0].Title)

	byAuthor, err := store.ListLibrary(ctx, "岸本")
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "ナルト", byAuthor[0].Title)

	none, err := store.ListLibrary(ctx, "存在しない")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteVolumeReportsRemaining(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	series, err := store.FindOrCreateSeries(ctx, "テスト作品", "", "")
	require.NoError(t, err)
	require.NoError(t, store.InsertVolume(ctx, "9784000000001", series.ID, intPtr(1), ""))
	require.NoError(t, store.InsertVolume(ctx, "9784000000002", series.ID, intPtr(2), ""))

	seriesID, remaining, err := store.DeleteVolume(ctx, "9784000000001")
	require.NoError(t, err)
	assert.Equal(t, series.ID, seriesID)
	assert.Equal(t, 1, remaining)

	_, _, err = store.DeleteVolume(ctx, "9784000000001")
	assert.ErrorIs(t, err, ErrVolumeNotFound)
}

func TestDeleteSeriesCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	series, err := store.FindOrCreateSeries(ctx, "テスト作品", "", "")
	require.NoError(t, err)
	require.NoError(t, store.InsertVolume(ctx, "9784000000001", series.ID, intPtr(1), ""))
	require.NoError(t, store.InsertVolume(ctx, "9784000000002", series.ID, intPtr(2), ""))

	deleted, err := store.DeleteSeries(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	_, err = store.ExistingVolumeSeriesID(ctx, "9784000000001")
	assert.ErrorIs(t, err, ErrVolumeNotFound)

	_, err = store.DeleteSeries(ctx, series.ID)
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}

func TestRegisteredISBNs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	series, err := store.FindOrCreateSeries(ctx, "テスト作品", "", "")
	require.NoError(t, err)
	require.NoError(t, store.InsertVolume(ctx, "9784000000001", series.ID, intPtr(1), ""))

	registered, err := store.RegisteredISBNs(ctx, []string{
		"9784000000001", "9784000000002", "9784000000001",
	})
	require.NoError(t, err)
	assert.Contains(t, registered, "9784000000001")
	assert.NotContains(t, registered, "9784000000002")

	empty, err := store.RegisteredISBNs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReopenMergesDuplicateSeries(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "library.db")
	ctx := context.Background()

	store, err := Open(path, logger)
	require.NoError(t, err)

	// Simulate a pre-index database with duplicate identities.
	_, err = store.db.Exec("DROP INDEX idx_series_identity")
	require.NoError(t, err)
	first, err := store.CreateSeries(ctx, "テスト作品", "テスト著者", "")
	require.NoError(t, err)
	second, err := store.CreateSeries(ctx, "テスト作品", "テスト著者", "")
	require.NoError(t, err)
	require.NoError(t, store.InsertVolume(ctx, "9784000000001", second.ID, intPtr(1), ""))
	require.NoError(t, store.Close())

	reopened, err := Open(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	seriesList, err := reopened.ListSeries(ctx)
	require.NoError(t, err)
	require.Len(t, seriesList, 1)
	assert.Equal(t, first.ID, seriesList[0].ID)

	seriesID, err := reopened.ExistingVolumeSeriesID(ctx, "9784000000001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, seriesID)
}
