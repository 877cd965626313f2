package repositories

import (
	"context"
	"encoding/json"
	"fmt"
)

type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]json.RawMessage, error)
	UpsertMany(ctx context.Context, values map[string]json.RawMessage) error
	InsertIfMissing(ctx context.Context, key string, value json.RawMessage) error
}

type settingsRepo struct{ db DB }

func NewSettingsRepository(db DB) SettingsRepository { return &settingsRepo{db: db} }

func (r *settingsRepo) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			key   string
			value json.RawMessage
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

// UpsertMany writes every key in one transaction; either all land or none do.
func (r *settingsRepo) UpsertMany(ctx context.Context, values map[string]json.RawMessage) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer finishTx(ctx, tx, &err)

	for key, value := range values {
		if _, err = tx.Exec(ctx, `
			INSERT INTO settings (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, key, jsonArg(value)); err != nil {
			return fmt.Errorf("upsert setting %s: %w", key, err)
		}
	}
	return nil
}

// InsertIfMissing seeds a key without clobbering an operator's edits.
func (r *settingsRepo) InsertIfMissing(ctx context.Context, key string, value json.RawMessage) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO NOTHING
	`, key, jsonArg(value))
	return err
}
