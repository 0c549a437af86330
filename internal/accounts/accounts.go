// Package accounts manages team members and site settings.
package accounts

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"teamhub/internal/authz"
	"teamhub/internal/models"
	"teamhub/internal/store"
	"teamhub/internal/validation"
)

const maxSettingValue = 10000

var settingKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,63}$`)

// ErrSelfDelete is returned when an admin tries to delete their own account.
var ErrSelfDelete = errors.New("cannot delete your own account")

// Service handles user administration and site settings.
type Service struct {
	store store.Store
	gate  *authz.Gate
	log   zerolog.Logger
}

// NewService returns an accounts service.
func NewService(st store.Store, gate *authz.Gate, log zerolog.Logger) *Service {
	return &Service{store: st, gate: gate, log: log}
}

// ListUsers returns every user. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := s.gate.Authorize(actor, authz.ActionManageUsers); err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx)
}

// SetRole changes a user's role.
func (s *Service) SetRole(ctx context.Context, actor *models.User, id uuid.UUID, role string) (*models.User, error) {
	if err := s.gate.Authorize(actor, authz.ActionManageUsers); err != nil {
		return nil, err
	}
	if !models.ValidRole(role) {
		return nil, validation.Errorf("role", "must be one of student, mentor, admin")
	}
	if id == actor.ID && role != models.RoleAdmin {
		return nil, validation.Errorf("role", "cannot remove your own admin role")
	}

	u, err := s.store.Users().SetRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id.String()).Str("role", role).Str("by", actor.ID.String()).Msg("user role changed")
	return u, nil
}

// SetMaintenanceAccess grants or revokes a user's maintenance access.
func (s *Service) SetMaintenanceAccess(ctx context.Context, actor *models.User, id uuid.UUID, enabled bool) (*models.User, error) {
	if err := s.gate.Authorize(actor, authz.ActionManageUsers); err != nil {
		return nil, err
	}
	u, err := s.store.Users().SetMaintenanceAccess(ctx, id, enabled)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id.String()).Bool("enabled", enabled).Str("by", actor.ID.String()).Msg("maintenance access changed")
	return u, nil
}

// DeleteUser removes a user along with their proposals and outreach history.
func (s *Service) DeleteUser(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.gate.Authorize(actor, authz.ActionDeleteUsers); err != nil {
		return err
	}
	if id == actor.ID {
		return ErrSelfDelete
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id.String()).Str("by", actor.ID.String()).Msg("user deleted")
	return nil
}

// EnsureUsers creates any of users that do not exist yet. Existing users are
// left untouched.
func (s *Service) EnsureUsers(ctx context.Context, users []models.User) (int, error) {
	created := 0
	for i := range users {
		u := users[i]
		_, err := s.store.Users().Get(ctx, u.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return created, err
		}
		if err := s.store.Users().Create(ctx, &u); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// Settings returns every site setting. Settings are public.
func (s *Service) Settings(ctx context.Context) ([]models.SiteSetting, error) {
	return s.store.Settings().List(ctx)
}

// Setting returns one site setting.
func (s *Service) Setting(ctx context.Context, key string) (*models.SiteSetting, error) {
	return s.store.Settings().Get(ctx, key)
}

// SetSetting stores a site setting. Admin only.
func (s *Service) SetSetting(ctx context.Context, actor *models.User, key, value string) (*models.SiteSetting, error) {
	if err := s.gate.Authorize(actor, authz.ActionManageSettings); err != nil {
		return nil, err
	}
	if !settingKeyPattern.MatchString(key) {
		return nil, validation.Errorf("key", "must be lowercase letters, digits, '.', '_' or '-' (max 64)")
	}
	if len(value) > maxSettingValue {
		return nil, validation.Errorf("value", "must be at most %d characters", maxSettingValue)
	}
	setting, err := s.store.Settings().Set(ctx, key, value)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("key", key).Str("by", actor.ID.String()).Msg("setting updated")
	return setting, nil
}
