package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/omar251/CinemaTec-sub001/store"
)

func (d *DB) UpsertMovieRecord(ctx context.Context, record *store.MovieRecord) error {
	genres, err := json.Marshal(record.Genres)
	if err != nil {
		return errors.Wrap(err, "failed to marshal genres")
	}

	stmt := `
		INSERT INTO movie_cache (id, title, year, rating, genres, poster_url, overview, cached_ts, last_accessed_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			year = excluded.year,
			rating = excluded.rating,
			genres = excluded.genres,
			poster_url = excluded.poster_url,
			overview = excluded.overview,
			cached_ts = excluded.cached_ts,
			last_accessed_ts = excluded.last_accessed_ts`
	if _, err := d.db.ExecContext(ctx, stmt,
		record.ID,
		record.Title,
		nullableInt(record.Year),
		nullableFloat(record.Rating),
		string(genres),
		record.PosterURL,
		record.Overview,
		record.CachedTs,
		record.LastAccessedTs,
	); err != nil {
		return errors.Wrap(err, "failed to upsert movie record")
	}
	return nil
}

func (d *DB) ListMovieRecords(ctx context.Context) ([]*store.MovieRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, year, rating, genres, poster_url, overview, cached_ts, last_accessed_ts
		FROM movie_cache`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query movie records")
	}
	defer rows.Close()

	list := make([]*store.MovieRecord, 0)
	for rows.Next() {
		var record store.MovieRecord
		var year sql.NullInt64
		var rating sql.NullFloat64
		var genres string
		if err := rows.Scan(
			&record.ID,
			&record.Title,
			&year,
			&rating,
			&genres,
			&record.PosterURL,
			&record.Overview,
			&record.CachedTs,
			&record.LastAccessedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan movie record")
		}
		if year.Valid {
			v := int(year.Int64)
			record.Year = &v
		}
		if rating.Valid {
			v := rating.Float64
			record.Rating = &v
		}
		if err := json.Unmarshal([]byte(genres), &record.Genres); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal genres for movie %s", record.ID)
		}
		list = append(list, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate movie records")
	}
	return list, nil
}

func (d *DB) DeleteAllMovieRecords(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM movie_cache"); err != nil {
		return errors.Wrap(err, "failed to delete movie records")
	}
	return nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
