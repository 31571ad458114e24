package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus represents the state of a block request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// BlockRequest represents a user's ask to block one card. Requests are
// created PENDING and transition to APPROVED or REJECTED exactly once;
// terminal states are immutable.
type BlockRequest struct {
	ID        uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	CardID    uuid.UUID     `json:"card_id" gorm:"type:char(36);not null;index"`
	Status    RequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Relations
	Card Card `json:"-" gorm:"foreignKey:CardID"`
}

// Processed reports whether the request has reached a terminal state.
func (r *BlockRequest) Processed() bool {
	return r.Status != RequestStatusPending
}

// BeforeCreate sets UUID before creating the record.
func (r *BlockRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
