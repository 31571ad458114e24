package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bankcards/internal/errors"
	"bankcards/internal/model"
	"bankcards/internal/repository"
)

// BlockRequestService owns BlockRequest mutation and the
// pending -> approved/rejected state machine. Approval blocks the
// owning card in the same database transaction, so a reader can never
// observe an approved request next to an active card.
type BlockRequestService interface {
	Create(ctx context.Context, cardID uuid.UUID) (*model.BlockRequest, error)
	Approve(ctx context.Context, requestID uuid.UUID) (*model.BlockRequest, error)
	Reject(ctx context.Context, requestID uuid.UUID) (*model.BlockRequest, error)
	ListPending(ctx context.Context) ([]model.BlockRequest, error)
}

type blockRequestService struct {
	requestRepo repository.BlockRequestRepository
	tx          repository.TxManager
}

// NewBlockRequestService creates a new block request service.
func NewBlockRequestService(
	requestRepo repository.BlockRequestRepository,
	tx repository.TxManager,
) BlockRequestService {
	return &blockRequestService{
		requestRepo: requestRepo,
		tx:          tx,
	}
}

// Create opens a PENDING request for an active card. The status check
// and the insert run in one transaction with the card row locked, so a
// request can never land on a card that is already BLOCKED. The card
// itself is not touched until an admin approves the request.
func (s *blockRequestService) Create(ctx context.Context, cardID uuid.UUID) (*model.BlockRequest, error) {
	var request *model.BlockRequest
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repositories) error {
		card, err := r.Cards.FindByIDForUpdate(ctx, cardID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrCardNotFound
			}
			return fmt.Errorf("lock card: %w", err)
		}

		if card.Status == model.CardStatusBlocked {
			return errors.ErrCardAlreadyBlocked
		}

		request = &model.BlockRequest{
			CardID: cardID,
			Status: model.RequestStatusPending,
		}
		if err := r.BlockRequests.Create(ctx, request); err != nil {
			return fmt.Errorf("create block request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Approve moves a PENDING request to APPROVED and blocks its card.
// Both writes commit together. The request row is locked before the
// card row; every multi-row operation keeps that order.
func (s *blockRequestService) Approve(ctx context.Context, requestID uuid.UUID) (*model.BlockRequest, error) {
	var request *model.BlockRequest
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		request, err = s.lockPending(ctx, r, requestID)
		if err != nil {
			return err
		}

		request.Status = model.RequestStatusApproved
		if err := r.BlockRequests.Update(ctx, request); err != nil {
			return fmt.Errorf("update request: %w", err)
		}

		card, err := r.Cards.FindByIDForUpdate(ctx, request.CardID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrCardNotFound
			}
			return fmt.Errorf("lock card: %w", err)
		}
		if card.Status != model.CardStatusBlocked {
			card.Status = model.CardStatusBlocked
			if err := r.Cards.Update(ctx, card); err != nil {
				return fmt.Errorf("block card: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Reject moves a PENDING request to REJECTED. The card is untouched.
func (s *blockRequestService) Reject(ctx context.Context, requestID uuid.UUID) (*model.BlockRequest, error) {
	var request *model.BlockRequest
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		request, err = s.lockPending(ctx, r, requestID)
		if err != nil {
			return err
		}

		request.Status = model.RequestStatusRejected
		if err := r.BlockRequests.Update(ctx, request); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *blockRequestService) lockPending(ctx context.Context, r *repository.Repositories, requestID uuid.UUID) (*model.BlockRequest, error) {
	request, err := r.BlockRequests.FindByIDForUpdate(ctx, requestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("lock request: %w", err)
	}
	if request.Processed() {
		return nil, errors.ErrRequestAlreadyProcessed
	}
	return request, nil
}

// ListPending returns all PENDING requests, oldest first.
func (s *blockRequestService) ListPending(ctx context.Context) ([]model.BlockRequest, error) {
	return s.requestRepo.ListByStatus(ctx, model.RequestStatusPending)
}
