package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

type proposals struct {
	q querier
}

const proposalColumns = `
	p.id, p.change_type, p.target_table, p.target_id, p.target_version, p.proposed_data,
	p.submitted_by, p.status, p.description, p.review_comments, p.reviewed_by, p.reviewed_at,
	p.created_at, COALESCE(u.name, '')`

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	var data []byte
	err := row.Scan(
		&p.ID, &p.ChangeType, &p.TargetTable, &p.TargetID, &p.TargetVersion, &data,
		&p.SubmittedBy, &p.Status, &p.Description, &p.ReviewComments, &p.ReviewedBy, &p.ReviewedAt,
		&p.CreatedAt, &p.SubmitterName,
	)
	if err != nil {
		return nil, err
	}
	p.ProposedData = data
	return &p, nil
}

// Create inserts a proposal. Status defaults to pending.
func (r *proposals) Create(ctx context.Context, p *models.Proposal) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	data := []byte(p.ProposedData)
	if len(data) == 0 {
		data = []byte("{}")
	}

	query := `
		WITH inserted AS (
			INSERT INTO maintenance_proposals
				(id, change_type, target_table, target_id, target_version, proposed_data, submitted_by, status, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING submitted_by, created_at
		)
		SELECT i.created_at, COALESCE(u.name, '')
		FROM inserted i
		LEFT JOIN users u ON u.id = i.submitted_by
	`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.ChangeType, p.TargetTable, p.TargetID, p.TargetVersion, data, p.SubmittedBy, p.Status, p.Description,
	).Scan(&p.CreatedAt, &p.SubmitterName)
	return mapErr(err)
}

func (r *proposals) Get(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	query := `SELECT` + proposalColumns + `
		FROM maintenance_proposals p
		LEFT JOIN users u ON u.id = p.submitted_by
		WHERE p.id = $1`
	p, err := scanProposal(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// GetForUpdate locks the proposal row for the rest of the transaction.
func (r *proposals) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	query := `SELECT` + proposalColumns + `
		FROM maintenance_proposals p
		LEFT JOIN users u ON u.id = p.submitted_by
		WHERE p.id = $1
		FOR UPDATE OF p`
	p, err := scanProposal(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *proposals) List(ctx context.Context, f store.ProposalFilter) ([]models.Proposal, error) {
	var where []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if f.SubmittedBy != nil {
		args = append(args, *f.SubmittedBy)
		where = append(where, fmt.Sprintf("p.submitted_by = $%d", len(args)))
	}

	query := `SELECT` + proposalColumns + `
		FROM maintenance_proposals p
		LEFT JOIN users u ON u.id = p.submitted_by`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Resolve flips a pending proposal to a terminal status.
func (r *proposals) Resolve(ctx context.Context, id uuid.UUID, status string, reviewer uuid.UUID, comments *string) (*models.Proposal, error) {
	result, err := r.q.Exec(ctx, `
		UPDATE maintenance_proposals
		SET status = $1, reviewed_by = $2, reviewed_at = $3, review_comments = $4
		WHERE id = $5 AND status = $6
	`, status, reviewer, time.Now().UTC(), comments, id, models.StatusPending)
	if err != nil {
		return nil, mapErr(err)
	}
	if result.RowsAffected() == 0 {
		return nil, store.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *proposals) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM maintenance_proposals WHERE status = $1`, models.StatusPending).Scan(&n)
	return n, err
}
