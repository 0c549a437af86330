package db

import (
	"context"

	"github.com/google/uuid"

	"teamhub/internal/models"
)

type outreach struct {
	q querier
}

func (r *outreach) CreateEvent(ctx context.Context, e *models.OutreachEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO outreach_events (id, name, event_date, hours_length, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, e.ID, e.Name, e.EventDate, e.HoursLength, e.CreatedBy).Scan(&e.CreatedAt, &e.UpdatedAt)
	return mapErr(err)
}

func (r *outreach) GetEvent(ctx context.Context, id uuid.UUID) (*models.OutreachEvent, error) {
	var e models.OutreachEvent
	err := r.q.QueryRow(ctx, `
		SELECT id, name, event_date, hours_length, created_by, created_at, updated_at
		FROM outreach_events WHERE id = $1
	`, id).Scan(&e.ID, &e.Name, &e.EventDate, &e.HoursLength, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *outreach) ListEvents(ctx context.Context) ([]models.OutreachEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, event_date, hours_length, created_by, created_at, updated_at
		FROM outreach_events
		ORDER BY event_date DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.OutreachEvent{}
	for rows.Next() {
		var e models.OutreachEvent
		if err := rows.Scan(&e.ID, &e.Name, &e.EventDate, &e.HoursLength, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *outreach) AddParticipation(ctx context.Context, p *models.OutreachParticipation) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO outreach_participations (id, event_id, user_id, role, points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, p.ID, p.EventID, p.UserID, p.Role, p.Points).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapErr(err)
}

func (r *outreach) ListParticipations(ctx context.Context, eventID uuid.UUID) ([]models.OutreachParticipation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, event_id, user_id, role, points, created_at, updated_at
		FROM outreach_participations
		WHERE event_id = $1
		ORDER BY points DESC, user_id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.OutreachParticipation{}
	for rows.Next() {
		var p models.OutreachParticipation
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.Role, &p.Points, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *outreach) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.user_id, COALESCE(u.name, ''), SUM(p.points)::int, COUNT(*)::int
		FROM outreach_participations p
		JOIN users u ON u.id = p.user_id
		GROUP BY p.user_id, u.name
		ORDER BY 3 DESC, 2, 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Points, &e.Events); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
