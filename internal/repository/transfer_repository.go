package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bankcards/internal/model"
)

// TransferRepository defines transfer persistence operations. Transfers
// are append-only; there is no update or delete.
type TransferRepository interface {
	Create(ctx context.Context, transfer *model.Transfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transfer, error)
	ListByCard(ctx context.Context, cardID uuid.UUID, page PageRequest) ([]model.Transfer, int64, error)
}

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new transfer repository.
func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

// Create appends a new transfer record.
func (r *transferRepository) Create(ctx context.Context, transfer *model.Transfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

// FindByID finds a transfer by ID.
func (r *transferRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transfer, error) {
	var transfer model.Transfer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transfer).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

// ListByCard returns one page of transfers that debited or credited the card.
func (r *transferRepository) ListByCard(ctx context.Context, cardID uuid.UUID, page PageRequest) ([]model.Transfer, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transfer{}).
		Where("from_card_id = ? OR to_card_id = ?", cardID, cardID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transfers []model.Transfer
	if err := q.Order("id asc").Limit(page.Limit()).Offset(page.Offset()).Find(&transfers).Error; err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}
