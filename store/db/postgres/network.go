package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/omar251/CinemaTec-sub001/store"
)

func (d *DB) UpsertNetworkRecord(ctx context.Context, record *store.NetworkRecord) error {
	stmt := `
		INSERT INTO network (id, name, description, seed_id, created_ts, updated_ts, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			seed_id = EXCLUDED.seed_id,
			updated_ts = EXCLUDED.updated_ts,
			payload = EXCLUDED.payload`
	if _, err := d.db.ExecContext(ctx, stmt,
		record.ID,
		record.Name,
		record.Description,
		record.SeedID,
		record.CreatedTs,
		record.UpdatedTs,
		record.Payload,
	); err != nil {
		return errors.Wrap(err, "failed to upsert network record")
	}
	return nil
}

func (d *DB) GetNetworkRecord(ctx context.Context, id string) (*store.NetworkRecord, error) {
	var record store.NetworkRecord
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, description, seed_id, created_ts, updated_ts, payload
		FROM network
		WHERE id = $1`, id).Scan(
		&record.ID,
		&record.Name,
		&record.Description,
		&record.SeedID,
		&record.CreatedTs,
		&record.UpdatedTs,
		&record.Payload,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get network record")
	}
	return &record, nil
}

func (d *DB) ListNetworkRecords(ctx context.Context) ([]*store.NetworkRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, description, seed_id, created_ts, updated_ts, payload
		FROM network
		ORDER BY created_ts DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query network records")
	}
	defer rows.Close()

	list := make([]*store.NetworkRecord, 0)
	for rows.Next() {
		var record store.NetworkRecord
		if err := rows.Scan(
			&record.ID,
			&record.Name,
			&record.Description,
			&record.SeedID,
			&record.CreatedTs,
			&record.UpdatedTs,
			&record.Payload,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan network record")
		}
		list = append(list, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate network records")
	}
	return list, nil
}

func (d *DB) DeleteNetworkRecord(ctx context.Context, id string) (bool, error) {
	result, err := d.db.ExecContext(ctx, "DELETE FROM network WHERE id = $1", id)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete network record")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read affected rows")
	}
	return affected > 0, nil
}
