package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bankcards/internal/cache"
	"bankcards/internal/cardnum"
	"bankcards/internal/errors"
	"bankcards/internal/model"
	"bankcards/internal/repository"
)

const (
	cardValidityYears = 3
	cardCacheTTL      = 5 * time.Minute
)

// Caller is the resolved identity of the requester, passed explicitly
// into every operation that enforces an ownership precondition.
type Caller struct {
	UserID uuid.UUID
	Admin  bool
}

// CardService owns Card and Transfer mutation: issuance, lifecycle
// transitions, and atomic transfers between a user's own cards.
type CardService interface {
	Create(ctx context.Context, ownerID uuid.UUID) (*model.Card, error)
	Get(ctx context.Context, cardID uuid.UUID, caller Caller) (*model.Card, error)
	Delete(ctx context.Context, cardID uuid.UUID) error
	Block(ctx context.Context, cardID uuid.UUID) error
	Activate(ctx context.Context, cardID uuid.UUID) error
	Transfer(ctx context.Context, fromCardID, toCardID uuid.UUID, amount decimal.Decimal) (*model.Transfer, error)
	ListTransfers(ctx context.Context, cardID uuid.UUID, page repository.PageRequest, caller Caller) ([]model.Transfer, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page repository.PageRequest, caller Caller) ([]model.Card, int64, error)
	ListAll(ctx context.Context, page repository.PageRequest) ([]model.Card, int64, error)
	ListByStatus(ctx context.Context, status model.CardStatus, page repository.PageRequest) ([]model.Card, int64, error)
	ListExpiringBefore(ctx context.Context, cutoff time.Time, page repository.PageRequest) ([]model.Card, int64, error)
	MaskedNumber(card *model.Card) (string, error)
}

type cardService struct {
	userRepo     repository.UserRepository
	cardRepo     repository.CardRepository
	transferRepo repository.TransferRepository
	tx           repository.TxManager
	cipher       *cardnum.Cipher
	cache        *cache.Client
}

// NewCardService creates a new card service.
func NewCardService(
	userRepo repository.UserRepository,
	cardRepo repository.CardRepository,
	transferRepo repository.TransferRepository,
	tx repository.TxManager,
	cipher *cardnum.Cipher,
	cache *cache.Client,
) CardService {
	return &cardService{
		userRepo:     userRepo,
		cardRepo:     cardRepo,
		transferRepo: transferRepo,
		tx:           tx,
		cipher:       cipher,
		cache:        cache,
	}
}

func (s *cardService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("card:%s", id.String())
}

// Create issues a new ACTIVE card with zero balance for an existing
// owner. The generated number is encrypted before it is stored.
func (s *cardService) Create(ctx context.Context, ownerID uuid.UUID) (*model.Card, error) {
	exists, err := s.userRepo.ExistsByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("check owner: %w", err)
	}
	if !exists {
		return nil, errors.ErrUserNotFound
	}

	number, err := cardnum.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate card number: %w", err)
	}
	encrypted, err := s.cipher.Encrypt(number)
	if err != nil {
		return nil, fmt.Errorf("encrypt card number: %w", err)
	}

	card := &model.Card{
		OwnerID:         ownerID,
		NumberEncrypted: encrypted,
		ExpirationDate:  time.Now().AddDate(cardValidityYears, 0, 0),
		Status:          model.CardStatusActive,
		Balance:         decimal.Zero,
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrConflict
		}
		return nil, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

// Get retrieves a card by ID with caching. Non-admin callers may only
// read their own cards.
func (s *cardService) Get(ctx context.Context, cardID uuid.UUID, caller Caller) (*model.Card, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(cardID)); data != nil {
		var cached model.Card
		if err := json.Unmarshal(data, &cached); err == nil {
			return s.authorizeRead(&cached, caller)
		}
	}

	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCardNotFound
		}
		return nil, fmt.Errorf("get card: %w", err)
	}

	if payload, err := json.Marshal(card); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(cardID), payload, cardCacheTTL)
	}
	return s.authorizeRead(card, caller)
}

func (s *cardService) authorizeRead(card *model.Card, caller Caller) (*model.Card, error) {
	if !caller.Admin && card.OwnerID != caller.UserID {
		return nil, errors.ErrForbidden
	}
	return card, nil
}

// Delete removes a card. Deletion is refused while the card still has
// PENDING block requests; historical transfers stay as audit records.
func (s *cardService) Delete(ctx context.Context, cardID uuid.UUID) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repositories) error {
		exists, err := r.Cards.ExistsByID(ctx, cardID)
		if err != nil {
			return fmt.Errorf("check card: %w", err)
		}
		if !exists {
			return errors.ErrCardNotFound
		}

		pending, err := r.BlockRequests.CountPendingByCard(ctx, cardID)
		if err != nil {
			return fmt.Errorf("count pending requests: %w", err)
		}
		if pending > 0 {
			return errors.ErrCardHasPendingRequests
		}

		return r.Cards.Delete(ctx, cardID)
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(cardID))
	return nil
}

// Block sets the card status to BLOCKED. Blocking a blocked card is not
// an error.
func (s *cardService) Block(ctx context.Context, cardID uuid.UUID) error {
	return s.setStatus(ctx, cardID, model.CardStatusBlocked)
}

// Activate sets the card status to ACTIVE. Activating an active card is
// not an error.
func (s *cardService) Activate(ctx context.Context, cardID uuid.UUID) error {
	return s.setStatus(ctx, cardID, model.CardStatusActive)
}

func (s *cardService) setStatus(ctx context.Context, cardID uuid.UUID, status model.CardStatus) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repositories) error {
		card, err := r.Cards.FindByIDForUpdate(ctx, cardID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrCardNotFound
			}
			return fmt.Errorf("lock card: %w", err)
		}
		if card.Status == status {
			return nil
		}
		card.Status = status
		return r.Cards.Update(ctx, card)
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(cardID))
	return nil
}

// Transfer atomically moves amount between two cards of the same owner
// and appends the Transfer record in the same database transaction.
//
// Both card rows are locked in ascending-id order regardless of the
// direction of the transfer, so two concurrent transfers over the same
// pair in opposite directions cannot deadlock.
func (s *cardService) Transfer(ctx context.Context, fromCardID, toCardID uuid.UUID, amount decimal.Decimal) (*model.Transfer, error) {
	if amount.LessThanOrEqual(decimal.Zero) || !amount.Equal(amount.Truncate(2)) {
		return nil, errors.ErrInvalidAmount
	}

	var transfer *model.Transfer
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repositories) error {
		firstID, secondID := fromCardID, toCardID
		if bytes.Compare(secondID[:], firstID[:]) < 0 {
			firstID, secondID = secondID, firstID
		}

		first, err := r.Cards.FindByIDForUpdate(ctx, firstID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrCardNotFound
			}
			return fmt.Errorf("lock card: %w", err)
		}

		// A self-transfer locks a single row once.
		second := first
		if secondID != firstID {
			second, err = r.Cards.FindByIDForUpdate(ctx, secondID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return errors.ErrCardNotFound
				}
				return fmt.Errorf("lock card: %w", err)
			}
		}

		from, to := first, second
		if from.ID != fromCardID {
			from, to = second, first
		}

		if from.Status == model.CardStatusBlocked {
			return errors.ErrSourceCardBlocked
		}
		if to.Status == model.CardStatusBlocked {
			return errors.ErrDestinationCardBlocked
		}
		if from.OwnerID != to.OwnerID {
			return errors.ErrForbidden
		}
		if from.Balance.LessThan(amount) {
			return errors.ErrInsufficientFunds
		}

		from.Balance = from.Balance.Sub(amount)
		to.Balance = to.Balance.Add(amount)

		if err := r.Cards.Update(ctx, from); err != nil {
			return fmt.Errorf("update source balance: %w", err)
		}
		if to != from {
			if err := r.Cards.Update(ctx, to); err != nil {
				return fmt.Errorf("update destination balance: %w", err)
			}
		}

		transfer = &model.Transfer{
			FromCardID: fromCardID,
			ToCardID:   toCardID,
			Amount:     amount,
		}
		if err := r.Transfers.Create(ctx, transfer); err != nil {
			return fmt.Errorf("append transfer record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(fromCardID))
	_ = s.cache.Delete(ctx, s.cacheKey(toCardID))

	return transfer, nil
}

// ListTransfers returns one page of a card's transfer history, debits
// and credits alike. Non-admin callers may only read history of their
// own cards.
func (s *cardService) ListTransfers(ctx context.Context, cardID uuid.UUID, page repository.PageRequest, caller Caller) ([]model.Transfer, int64, error) {
	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, 0, errors.ErrCardNotFound
		}
		return nil, 0, fmt.Errorf("get card: %w", err)
	}
	if _, err := s.authorizeRead(card, caller); err != nil {
		return nil, 0, err
	}

	return s.transferRepo.ListByCard(ctx, cardID, page)
}

// ListByOwner returns one page of a user's cards. Non-admin callers may
// only list their own.
func (s *cardService) ListByOwner(ctx context.Context, ownerID uuid.UUID, page repository.PageRequest, caller Caller) ([]model.Card, int64, error) {
	if !caller.Admin && caller.UserID != ownerID {
		return nil, 0, errors.ErrForbidden
	}

	exists, err := s.userRepo.ExistsByID(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("check owner: %w", err)
	}
	if !exists {
		return nil, 0, errors.ErrUserNotFound
	}

	return s.cardRepo.ListByOwner(ctx, ownerID, page)
}

// ListAll returns one page of all cards.
func (s *cardService) ListAll(ctx context.Context, page repository.PageRequest) ([]model.Card, int64, error) {
	return s.cardRepo.ListAll(ctx, page)
}

// ListByStatus returns one page of cards in the given status.
func (s *cardService) ListByStatus(ctx context.Context, status model.CardStatus, page repository.PageRequest) ([]model.Card, int64, error) {
	return s.cardRepo.ListByStatus(ctx, status, page)
}

// ListExpiringBefore returns one page of cards expiring before cutoff.
func (s *cardService) ListExpiringBefore(ctx context.Context, cutoff time.Time, page repository.PageRequest) ([]model.Card, int64, error) {
	return s.cardRepo.ListExpiringBefore(ctx, cutoff, page)
}

// MaskedNumber decrypts a card number and masks it for display. Only
// the last four digits come back in clear.
func (s *cardService) MaskedNumber(card *model.Card) (string, error) {
	number, err := s.cipher.Decrypt(card.NumberEncrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt card number: %w", err)
	}
	return cardnum.Mask(number), nil
}
