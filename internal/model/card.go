package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CardStatus represents the lifecycle state of a card.
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
)

// Valid reports whether s is a known card status.
func (s CardStatus) Valid() bool {
	return s == CardStatusActive || s == CardStatusBlocked
}

// Card represents an issued bank card owned by one user.
// The card number is stored encrypted and is immutable after creation,
// as are the owner and the expiration date.
type Card struct {
	ID              uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID         uuid.UUID       `json:"owner_id" gorm:"type:char(36);not null;index"`
	NumberEncrypted string          `json:"-" gorm:"size:255;not null"`
	ExpirationDate  time.Time       `json:"expiration_date" gorm:"type:date;not null;index"`
	Status          CardStatus      `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Balance         decimal.Decimal `json:"balance" gorm:"type:decimal(20,2);not null;default:0"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relations
	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
