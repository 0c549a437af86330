package db

import (
	"context"

	"teamhub/internal/models"
)

type settings struct {
	q querier
}

func (r *settings) List(ctx context.Context) ([]models.SiteSetting, error) {
	rows, err := r.q.Query(ctx, `SELECT key, value, updated_at FROM site_settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SiteSetting{}
	for rows.Next() {
		var s models.SiteSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *settings) Get(ctx context.Context, key string) (*models.SiteSetting, error) {
	var s models.SiteSetting
	err := r.q.QueryRow(ctx, `SELECT key, value, updated_at FROM site_settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

// Set upserts a setting.
func (r *settings) Set(ctx context.Context, key, value string) (*models.SiteSetting, error) {
	var s models.SiteSetting
	err := r.q.QueryRow(ctx, `
		INSERT INTO site_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at
	`, key, value).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}
