// Package outreach records community outreach events and awards points to
// the members who took part.
package outreach

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"teamhub/internal/authz"
	"teamhub/internal/models"
	"teamhub/internal/store"
	"teamhub/internal/validation"
)

// HoursPerBonus is how many event hours earn one extra multiple of the base.
const HoursPerBonus = 4

// Bases maps a participation role to its base points.
type Bases map[string]int

// DefaultBases returns the standard base points per role.
func DefaultBases() Bases {
	return Bases{
		models.OutreachOrganizer: 8,
		models.OutreachAssistant: 5,
		models.OutreachAttendee:  3,
	}
}

// Points returns base(role) * (floor(hours / 4) + 1).
func (b Bases) Points(role string, hours float64) (int, error) {
	base, ok := b[role]
	if !ok || !models.ValidOutreachRole(role) {
		return 0, validation.Errorf("role", "must be one of organizer, assistant, attendee")
	}
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, validation.Errorf("hours_length", "must be greater than 0")
	}
	return base * (int(math.Floor(hours/HoursPerBonus)) + 1), nil
}

// EventInput is the data needed to record an event.
type EventInput struct {
	Name        string    `json:"name" validate:"required,max=200"`
	EventDate   time.Time `json:"event_date" validate:"required"`
	HoursLength float64   `json:"hours_length" validate:"gt=0,lte=168"`
}

// ParticipantInput records one member's role at an event.
type ParticipantInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=organizer assistant attendee"`
}

// Service manages outreach events.
type Service struct {
	store store.Store
	gate  *authz.Gate
	bases Bases
	log   zerolog.Logger
}

// NewService returns an outreach service. A nil bases map uses DefaultBases.
func NewService(st store.Store, gate *authz.Gate, bases Bases, log zerolog.Logger) *Service {
	if len(bases) == 0 {
		bases = DefaultBases()
	}
	return &Service{store: st, gate: gate, bases: bases, log: log}
}

// CreateEvent records a new event.
func (s *Service) CreateEvent(ctx context.Context, user *models.User, in EventInput) (*models.OutreachEvent, error) {
	if err := s.gate.Authorize(user, authz.ActionManageOutreach); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	ev := &models.OutreachEvent{
		Name:        in.Name,
		EventDate:   in.EventDate,
		HoursLength: in.HoursLength,
		CreatedBy:   &user.ID,
	}
	if err := s.store.Outreach().CreateEvent(ctx, ev); err != nil {
		return nil, err
	}
	s.log.Info().Str("event_id", ev.ID.String()).Str("name", ev.Name).Msg("outreach event created")
	return ev, nil
}

// AddParticipant credits a member for an event, computing their points from
// the event length.
func (s *Service) AddParticipant(ctx context.Context, user *models.User, eventID uuid.UUID, in ParticipantInput) (*models.OutreachParticipation, error) {
	if err := s.gate.Authorize(user, authz.ActionManageOutreach); err != nil {
		return nil, err
	}
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var part *models.OutreachParticipation
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		ev, err := tx.Outreach().GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if _, err := tx.Users().Get(ctx, in.UserID); errors.Is(err, store.ErrNotFound) {
			return validation.Errorf("user_id", "user %s does not exist", in.UserID)
		} else if err != nil {
			return err
		}

		points, err := s.bases.Points(in.Role, ev.HoursLength)
		if err != nil {
			return err
		}
		part = &models.OutreachParticipation{EventID: ev.ID, UserID: in.UserID, Role: in.Role, Points: points}
		return tx.Outreach().AddParticipation(ctx, part)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("event_id", eventID.String()).
		Str("user_id", in.UserID.String()).
		Int("points", part.Points).
		Msg("outreach participation recorded")
	return part, nil
}

// ListEvents returns every event, newest first.
func (s *Service) ListEvents(ctx context.Context) ([]models.OutreachEvent, error) {
	return s.store.Outreach().ListEvents(ctx)
}

// Participants returns the members credited for an event.
func (s *Service) Participants(ctx context.Context, eventID uuid.UUID) ([]models.OutreachParticipation, error) {
	if _, err := s.store.Outreach().GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.Outreach().ListParticipations(ctx, eventID)
}

// Leaderboard returns point totals per member, highest first.
func (s *Service) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return s.store.Outreach().Leaderboard(ctx)
}
