package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// FindOrCreateSeries reuses the series row matching (title, author,
// publisher) or creates it. The INSERT ... ON CONFLICT DO NOTHING against
// the unique identity index keeps concurrent identical calls from creating
// duplicate rows.
func (s *Store) FindOrCreateSeries(ctx context.Context, title, author, publisher string) (Series, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO series (title, author, publisher)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`,
		title, nullIfEmpty(author), nullIfEmpty(publisher)); err != nil {
		return Series{}, classifyConstraintError(err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, publisher
		FROM series
		WHERE title = ?
		  AND COALESCE(author, '') = COALESCE(?, '')
		  AND COALESCE(publisher, '') = COALESCE(?, '')
		ORDER BY id ASC
		LIMIT 1`,
		title, nullIfEmpty(author), nullIfEmpty(publisher))

	series, err := scanSeries(row)
	if err != nil {
		return Series{}, fmt.Errorf("find or create series: %w", err)
	}
	return series, nil
}

// CreateSeries inserts a new series row directly. A duplicate identity
// surfaces as ErrConstraint.
func (s *Store) CreateSeries(ctx context.Context, title, author, publisher string) (Series, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO series (title, author, publisher)
		VALUES (?, ?, ?)`,
		title, nullIfEmpty(author), nullIfEmpty(publisher))
	if err != nil {
		return Series{}, classifyConstraintError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Series{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, publisher
		FROM series
		WHERE id = ?`, id)
	series, err := scanSeries(row)
	if err != nil {
		return Series{}, fmt.Errorf("create series: %w", err)
	}
	return series, nil
}

// ListSeries returns all series, newest first.
func (s *Store) ListSeries(ctx context.Context) ([]Series, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, publisher
		FROM series
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seriesList := make([]Series, 0)
	for rows.Next() {
		var series Series
		var author, publisher sql.NullString
		if err := rows.Scan(&series.ID, &series.Title, &author, &publisher); err != nil {
			return nil, err
		}
		series.Author = emptyIfNull(author)
		series.Publisher = emptyIfNull(publisher)
		seriesList = append(seriesList, series)
	}
	return seriesList, rows.Err()
}

// ListLibrary returns the library listing, optionally filtered by a
// title/author substring. A blank query returns everything.
func (s *Store) ListLibrary(ctx context.Context, query string) ([]LibrarySeries, error) {
	normalized := strings.TrimSpace(query)
	like := "%" + normalized + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s.id,
			s.title,
			s.author,
			s.publisher,
			(
				SELECT v.cover_url
				FROM volume v
				WHERE v.series_id = s.id
				  AND v.cover_url IS NOT NULL
				  AND TRIM(v.cover_url) <> ''
				ORDER BY
					CASE WHEN v.volume_number = 1 THEN 0 ELSE 1 END,
					v.registered_at ASC,
					v.isbn ASC
				LIMIT 1
			) AS representative_cover_url
		FROM series s
		WHERE
			(? = '')
			OR s.title LIKE ?
			OR COALESCE(s.author, '') LIKE ?
		ORDER BY s.created_at DESC, s.id DESC`,
		normalized, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seriesList := make([]LibrarySeries, 0)
	for rows.Next() {
		var series LibrarySeries
		var author, publisher, cover sql.NullString
		if err := rows.Scan(&series.ID, &series.Title, &author, &publisher, &cover); err != nil {
			return nil, err
		}
		series.Author = emptyIfNull(author)
		series.Publisher = emptyIfNull(publisher)
		series.RepresentativeCoverURL = emptyIfNull(cover)
		seriesList = append(seriesList, series)
	}
	return seriesList, rows.Err()
}

// SeriesDetailByID returns the series and its volumes in display order, or
// ErrSeriesNotFound.
func (s *Store) SeriesDetailByID(ctx context.Context, seriesID int64) (SeriesDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, publisher, created_at
		FROM series
		WHERE id = ?`, seriesID)

	var detail SeriesDetail
	var author, publisher sql.NullString
	if err := row.Scan(&detail.ID, &detail.Title, &author, &publisher, &detail.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SeriesDetail{}, ErrSeriesNotFound
		}
		return SeriesDetail{}, err
	}
	detail.Author = emptyIfNull(author)
	detail.Publisher = emptyIfNull(publisher)

	rows, err := s.db.QueryContext(ctx, `
		SELECT isbn, volume_number, cover_url, registered_at
		FROM volume
		WHERE series_id = ?
		ORDER BY
			CASE WHEN volume_number IS NULL THEN 1 ELSE 0 END,
			volume_number ASC,
			registered_at ASC,
			isbn ASC`, seriesID)
	if err != nil {
		return SeriesDetail{}, err
	}
	defer rows.Close()

	detail.Volumes = make([]Volume, 0)
	for rows.Next() {
		volume, err := scanVolume(rows)
		if err != nil {
			return SeriesDetail{}, err
		}
		detail.Volumes = append(detail.Volumes, volume)
	}
	return detail, rows.Err()
}

// ExistingVolumeSeriesID returns the owning series id for a registered
// ISBN, or ErrVolumeNotFound.
func (s *Store) ExistingVolumeSeriesID(ctx context.Context, isbn string) (int64, error) {
	var seriesID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT series_id FROM volume WHERE isbn = ?", isbn).Scan(&seriesID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrVolumeNotFound
	}
	return seriesID, err
}

// InsertVolume registers one volume under a series. A duplicate ISBN
// surfaces as ErrVolumeExists.
func (s *Store) InsertVolume(ctx context.Context, isbn string, seriesID int64, volumeNumber *int, coverURL string) error {
	var number any
	if volumeNumber != nil {
		number = *volumeNumber
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO volume (isbn, series_id, volume_number, cover_url)
		VALUES (?, ?, ?, ?)`,
		isbn, seriesID, number, nullIfEmpty(coverURL))
	return classifyConstraintError(err)
}

// VolumeWithSeries returns a registered volume joined with its series, used
// to build the registration response.
func (s *Store) VolumeWithSeries(ctx context.Context, isbn string) (Series, Volume, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.title, s.author, s.publisher, v.isbn, v.volume_number, v.cover_url, v.registered_at
		FROM volume v
		JOIN series s ON s.id = v.series_id
		WHERE v.isbn = ?`, isbn)

	var series Series
	var volume Volume
	var author, publisher, cover sql.NullString
	var number sql.NullInt64
	err := row.Scan(&series.ID, &series.Title, &author, &publisher,
		&volume.ISBN, &number, &cover, &volume.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Series{}, Volume{}, ErrVolumeNotFound
	}
	if err != nil {
		return Series{}, Volume{}, err
	}
	series.Author = emptyIfNull(author)
	series.Publisher = emptyIfNull(publisher)
	volume.CoverURL = emptyIfNull(cover)
	if number.Valid {
		n := int(number.Int64)
		volume.VolumeNumber = &n
	}
	return series, volume, nil
}

// DeleteVolume removes one volume and reports the owning series id plus the
// number of volumes remaining under it.
func (s *Store) DeleteVolume(ctx context.Context, isbn string) (seriesID int64, remaining int, err error) {
	seriesID, err = s.ExistingVolumeSeriesID(ctx, isbn)
	if err != nil {
		return 0, 0, err
	}

	if _, err = s.db.ExecContext(ctx, "DELETE FROM volume WHERE isbn = ?", isbn); err != nil {
		return 0, 0, err
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM volume WHERE series_id = ?", seriesID).Scan(&remaining)
	return seriesID, remaining, err
}

// DeleteSeries removes a series and (via cascade) its volumes, reporting
// how many volumes were removed. ErrSeriesNotFound when the id is unknown.
func (s *Store) DeleteSeries(ctx context.Context, seriesID int64) (deletedVolumes int, err error) {
	var id int64
	err = s.db.QueryRowContext(ctx, "SELECT id FROM series WHERE id = ?", seriesID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSeriesNotFound
	}
	if err != nil {
		return 0, err
	}

	if err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM volume WHERE series_id = ?", seriesID).Scan(&deletedVolumes); err != nil {
		return 0, err
	}

	if _, err = s.db.ExecContext(ctx, "DELETE FROM series WHERE id = ?", seriesID); err != nil {
		return 0, err
	}
	return deletedVolumes, nil
}

// RegisteredISBNs returns which of the candidate ISBNs are already
// registered as volumes.
func (s *Store) RegisteredISBNs(ctx context.Context, isbns []string) (map[string]struct{}, error) {
	registered := make(map[string]struct{})
	if len(isbns) == 0 {
		return registered, nil
	}

	unique := make([]string, 0, len(isbns))
	seen := make(map[string]struct{}, len(isbns))
	for _, isbn := range isbns {
		if _, ok := seen[isbn]; ok {
			continue
		}
		seen[isbn] = struct{}{}
		unique = append(unique, isbn)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(unique)), ", ")
	args := make([]any, len(unique))
	for i, isbn := range unique {
		args[i] = isbn
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT isbn FROM volume WHERE isbn IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var isbn string
		if err := rows.Scan(&isbn); err != nil {
			return nil, err
		}
		registered[isbn] = struct{}{}
	}
	return registered, rows.Err()
}

func scanSeries(row *sql.Row) (Series, error) {
	var series Series
	var author, publisher sql.NullString
	if err := row.Scan(&series.ID, &series.Title, &author, &publisher); err != nil {
		return Series{}, err
	}
	series.Author = emptyIfNull(author)
	series.Publisher = emptyIfNull(publisher)
	return series, nil
}

func scanVolume(rows *sql.Rows) (Volume, error) {
	var volume Volume
	var cover sql.NullString
	var number sql.NullInt64
	if err := rows.Scan(&volume.ISBN, &number, &cover, &volume.RegisteredAt); err != nil {
		return Volume{}, err
	}
	volume.CoverURL = emptyIfNull(cover)
	if number.Valid {
		n := int(number.Int64)
		volume.VolumeNumber = &n
	}
	return volume, nil
}
