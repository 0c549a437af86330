package memory

import (
	"context"
	"slices"
	"strings"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

type settingRepo struct {
	s *Store
}

func (r *settingRepo) List(ctx context.Context) ([]models.SiteSetting, error) {
	out := []models.SiteSetting{}
	err := r.s.with(func(st *state) error {
		for _, v := range st.settings {
			out = append(out, v)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.SiteSetting) int { return strings.Compare(a.Key, b.Key) })
	return out, err
}

func (r *settingRepo) Get(ctx context.Context, key string) (*models.SiteSetting, error) {
	var out models.SiteSetting
	err := r.s.with(func(st *state) error {
		v, ok := st.settings[key]
		if !ok {
			return store.ErrNotFound
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *settingRepo) Set(ctx context.Context, key, value string) (*models.SiteSetting, error) {
	out := models.SiteSetting{Key: key, Value: value}
	err := r.s.with(func(st *state) error {
		out.UpdatedAt = r.s.now()
		st.settings[key] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
