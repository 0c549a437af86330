package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"teamhub/internal/models"
	"teamhub/internal/store"
	"teamhub/internal/validation"
)

const maxDescriptionLength = 2000

// Submission is the raw form a proposer fills in.
type Submission struct {
	ChangeType   models.ChangeType `json:"change_type"`
	TargetTable  string            `json:"target_table,omitempty"`
	TargetID     *uuid.UUID        `json:"target_id,omitempty"`
	ProposedData json.RawMessage   `json:"proposed_data"`
	Description  string            `json:"description"`
}

// Builder turns submissions into pending proposals.
type Builder struct {
	appliers *Registry
}

// NewBuilder returns a builder that resolves targets through appliers.
func NewBuilder(appliers *Registry) *Builder {
	return &Builder{appliers: appliers}
}

// Build validates sub and returns a pending proposal ready to be stored.
// Validation failures are *validation.Error values naming the offending field.
func (b *Builder) Build(ctx context.Context, s store.Store, sub Submission, by *models.User) (*models.Proposal, error) {
	payload, err := b.decode(sub.ChangeType, sub.TargetTable, sub.TargetID, sub.ProposedData)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(sub.Description)
	if len(description) > maxDescriptionLength {
		return nil, validation.Errorf("description", "must be at most %d characters", maxDescriptionLength)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	p := &models.Proposal{
		ChangeType:   sub.ChangeType,
		TargetTable:  sub.ChangeType.Table(),
		TargetID:     sub.TargetID,
		ProposedData: data,
		SubmittedBy:  by.ID,
		Status:       models.StatusPending,
		Description:  description,
	}

	if sub.TargetID != nil {
		applier, err := b.appliers.For(sub.ChangeType)
		if err != nil {
			return nil, err
		}
		version, err := applier.Version(ctx, s, *sub.TargetID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, validation.Errorf("target_id", "%s %s does not exist", sub.ChangeType.Entity(), sub.TargetID)
		}
		if err != nil {
			return nil, err
		}
		p.TargetVersion = &version
	}

	return p, nil
}

// decode checks the change type and target rules, then decodes and validates
// the payload.
func (b *Builder) decode(t models.ChangeType, table string, target *uuid.UUID, raw json.RawMessage) (models.Payload, error) {
	if !t.Valid() {
		return nil, validation.Errorf("change_type", "unknown change type %q", t)
	}
	if table != "" && table != t.Table() {
		return nil, validation.Errorf("target_table", "must be %q for %s", t.Table(), t)
	}

	switch t.Operation() {
	case models.OpDelete, models.OpUpdate:
		if target == nil || *target == uuid.Nil {
			return nil, validation.Errorf("target_id", "is required for %s", t)
		}
	case models.OpCreate:
		if target != nil {
			return nil, validation.Errorf("target_id", "must be empty for %s", t)
		}
	case models.OpUpsert:
		if target != nil && *target == uuid.Nil {
			return nil, validation.Errorf("target_id", "is invalid")
		}
	}

	payload, err := models.DecodePayload(t, raw)
	if err != nil {
		return nil, validation.Errorf("proposed_data", "is malformed: %v", unwrapJSON(err))
	}
	if t.IsDelete() {
		return payload, nil
	}
	if err := validation.Struct(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func unwrapJSON(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
