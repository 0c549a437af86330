package models

import (
	"time"

	"github.com/google/uuid"
)

// Record carries the identity and timestamps shared by every stored entity.
type Record struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meta exposes the record for generic store code.
func (r *Record) Meta() *Record {
	return r
}
