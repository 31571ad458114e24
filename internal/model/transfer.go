package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transfer is an immutable record of one completed balance movement
// between two cards of the same owner. It is written in the same
// database transaction as the balance updates and never mutated.
type Transfer struct {
	ID         uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	FromCardID uuid.UUID       `json:"from_card_id" gorm:"type:char(36);not null;index"`
	ToCardID   uuid.UUID       `json:"to_card_id" gorm:"type:char(36);not null;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
