package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bankcards/internal/model"
)

// CardRepository defines card persistence operations.
type CardRepository interface {
	Create(ctx context.Context, card *model.Card) error
	Update(ctx context.Context, card *model.Card) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Card, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Card, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page PageRequest) ([]model.Card, int64, error)
	ListAll(ctx context.Context, page PageRequest) ([]model.Card, int64, error)
	ListByStatus(ctx context.Context, status model.CardStatus, page PageRequest) ([]model.Card, int64, error)
	ListExpiringBefore(ctx context.Context, cutoff time.Time, page PageRequest) ([]model.Card, int64, error)
}

type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

// Create creates a new card.
func (r *cardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// Update updates an existing card.
func (r *cardRepository) Update(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Save(card).Error
}

// Delete removes a card by ID.
func (r *cardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Card{}).Error
}

// ExistsByID reports whether a card with the given ID exists.
func (r *cardRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Card{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByID finds a card by ID.
func (r *cardRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByIDForUpdate finds a card by ID with a SELECT ... FOR UPDATE
// row lock. Callers must hold the enclosing transaction and acquire
// multiple cards in ascending id order.
func (r *cardRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// ListByOwner returns one page of a user's cards ordered by id.
func (r *cardRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, page PageRequest) ([]model.Card, int64, error) {
	return r.list(ctx, page, "owner_id = ?", ownerID)
}

// ListAll returns one page of all cards ordered by id.
func (r *cardRepository) ListAll(ctx context.Context, page PageRequest) ([]model.Card, int64, error) {
	return r.list(ctx, page, "")
}

// ListByStatus returns one page of cards in the given status.
func (r *cardRepository) ListByStatus(ctx context.Context, status model.CardStatus, page PageRequest) ([]model.Card, int64, error) {
	return r.list(ctx, page, "status = ?", status)
}

// ListExpiringBefore returns one page of cards expiring strictly before cutoff.
func (r *cardRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time, page PageRequest) ([]model.Card, int64, error) {
	return r.list(ctx, page, "expiration_date < ?", cutoff)
}

func (r *cardRepository) list(ctx context.Context, page PageRequest, cond string, args ...interface{}) ([]model.Card, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Card{})
	if cond != "" {
		q = q.Where(cond, args...)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cards []model.Card
	if err := q.Order("id asc").Limit(page.Limit()).Offset(page.Offset()).Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}
