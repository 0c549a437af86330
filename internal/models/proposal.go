package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status constants shared by proposals.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Proposal is a request to create, update or delete a site entity, waiting
// for a mentor or admin to approve or reject it.
type Proposal struct {
	ID             uuid.UUID       `json:"id"`
	ChangeType     ChangeType      `json:"change_type"`
	TargetTable    string          `json:"target_table"`
	TargetID       *uuid.UUID      `json:"target_id"`
	TargetVersion  *time.Time      `json:"target_version,omitempty"` // target updated_at when submitted
	ProposedData   json.RawMessage `json:"proposed_data"`
	SubmittedBy    uuid.UUID       `json:"submitted_by"`
	Status         string          `json:"status"` // pending, approved, rejected
	Description    string          `json:"description"`
	ReviewComments *string         `json:"review_comments"`
	ReviewedBy     *uuid.UUID      `json:"reviewed_by"`
	ReviewedAt     *time.Time      `json:"reviewed_at"`
	CreatedAt      time.Time       `json:"created_at"`

	// Non-DB field, populated via JOIN for display
	SubmitterName string `json:"submitter_name,omitempty"`
}

// IsTerminal reports whether the proposal has already been reviewed.
func (p *Proposal) IsTerminal() bool {
	return p.Status == StatusApproved || p.Status == StatusRejected
}

// Payload decodes the proposed data into its typed variant.
func (p *Proposal) Payload() (Payload, error) {
	return DecodePayload(p.ChangeType, p.ProposedData)
}
