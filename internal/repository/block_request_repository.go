package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bankcards/internal/model"
)

// BlockRequestRepository defines block request persistence operations.
type BlockRequestRepository interface {
	Create(ctx context.Context, request *model.BlockRequest) error
	Update(ctx context.Context, request *model.BlockRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BlockRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.BlockRequest, error)
	ListByStatus(ctx context.Context, status model.RequestStatus) ([]model.BlockRequest, error)
	CountPendingByCard(ctx context.Context, cardID uuid.UUID) (int64, error)
}

type blockRequestRepository struct {
	db *gorm.DB
}

// NewBlockRequestRepository creates a new block request repository.
func NewBlockRequestRepository(db *gorm.DB) BlockRequestRepository {
	return &blockRequestRepository{db: db}
}

// Create creates a new block request.
func (r *blockRequestRepository) Create(ctx context.Context, request *model.BlockRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// Update updates an existing block request.
func (r *blockRequestRepository) Update(ctx context.Context, request *model.BlockRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// FindByID finds a block request by ID.
func (r *blockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BlockRequest, error) {
	var request model.BlockRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByIDForUpdate finds a block request by ID with a SELECT ... FOR
// UPDATE row lock. Approval locks the request before its card; keeping
// that order across all operations avoids lock cycles.
func (r *blockRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.BlockRequest, error) {
	var request model.BlockRequest
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByStatus returns all block requests in the given status, oldest first.
func (r *blockRequestRepository) ListByStatus(ctx context.Context, status model.RequestStatus) ([]model.BlockRequest, error) {
	var requests []model.BlockRequest
	if err := r.db.WithContext(ctx).Where("status = ?", status).
		Order("created_at asc").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// CountPendingByCard counts PENDING requests that reference the card.
func (r *blockRequestRepository) CountPendingByCard(ctx context.Context, cardID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.BlockRequest{}).
		Where("card_id = ? AND status = ?", cardID, model.RequestStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
