package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles transaction-bound repositories handed to a
// TxManager callback. Everything touched through the bundle commits or
// rolls back together.
type Repositories struct {
	Users         UserRepository
	Cards         CardRepository
	Transfers     TransferRepository
	BlockRequests BlockRequestRepository
}

// TxManager runs a unit of work inside one database transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a GORM-backed transaction manager.
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

// WithTransaction executes fn within a database transaction, giving it
// repositories bound to that transaction.
func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Repositories{
			Users:         NewUserRepository(tx),
			Cards:         NewCardRepository(tx),
			Transfers:     NewTransferRepository(tx),
			BlockRequests: NewBlockRequestRepository(tx),
		})
	})
}
