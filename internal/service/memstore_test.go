package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bankcards/internal/model"
	"bankcards/internal/repository"
)

// memStore is an in-memory stand-in for the GORM repositories. Its
// transaction manager serializes units of work with a mutex, which
// mirrors the exclusivity the real store gets from row locks and lets
// the tests hammer the ledger from many goroutines.
type memStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users     map[uuid.UUID]model.User
	cards     map[uuid.UUID]model.Card
	transfers map[uuid.UUID]model.Transfer
	requests  map[uuid.UUID]model.BlockRequest
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[uuid.UUID]model.User),
		cards:     make(map[uuid.UUID]model.Card),
		transfers: make(map[uuid.UUID]model.Transfer),
		requests:  make(map[uuid.UUID]model.BlockRequest),
	}
}

func (s *memStore) repos() *repository.Repositories {
	return &repository.Repositories{
		Users:         memUsers{s},
		Cards:         memCards{s},
		Transfers:     memTransfers{s},
		BlockRequests: memRequests{s},
	}
}

// WithTransaction implements repository.TxManager.
func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, r *repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx, s.repos())
}

// test helpers

func (s *memStore) addUser(role model.Role) *model.User {
	user := model.User{ID: uuid.New(), Username: uuid.New().String(), PasswordHash: "x", Role: role}
	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()
	return &user
}

func (s *memStore) addCard(ownerID uuid.UUID, balance string, status model.CardStatus) *model.Card {
	card := model.Card{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		NumberEncrypted: "00", // opaque for ledger tests
		ExpirationDate:  time.Now().AddDate(3, 0, 0),
		Status:          status,
		Balance:         mustDecimal(balance),
	}
	s.mu.Lock()
	s.cards[card.ID] = card
	s.mu.Unlock()
	return &card
}

func (s *memStore) card(id uuid.UUID) model.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cards[id]
}

func (s *memStore) transferCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transfers)
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r memUsers) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.users[id]
	return ok, nil
}

func (r memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.users[id]; ok {
		return &u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) List(ctx context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	return users, nil
}

type memCards struct{ s *memStore }

func (r memCards) Create(ctx context.Context, card *model.Card) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	card.CreatedAt = time.Now()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.cards[card.ID] = *card
	return nil
}

func (r memCards) Update(ctx context.Context, card *model.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.cards[card.ID] = *card
	return nil
}

func (r memCards) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.cards, id)
	return nil
}

func (r memCards) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.cards[id]
	return ok, nil
}

func (r memCards) FindByID(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.cards[id]; ok {
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memCards) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	// the tx mutex already provides exclusivity
	return r.FindByID(ctx, id)
}

func (r memCards) ListByOwner(ctx context.Context, ownerID uuid.UUID, page repository.PageRequest) ([]model.Card, int64, error) {
	return r.list(page, func(c model.Card) bool { return c.OwnerID == ownerID })
}

func (r memCards) ListAll(ctx context.Context, page repository.PageRequest) ([]model.Card, int64, error) {
	return r.list(page, func(model.Card) bool { return true })
}

func (r memCards) ListByStatus(ctx context.Context, status model.CardStatus, page repository.PageRequest) ([]model.Card, int64, error) {
	return r.list(page, func(c model.Card) bool { return c.Status == status })
}

func (r memCards) ListExpiringBefore(ctx context.Context, cutoff time.Time, page repository.PageRequest) ([]model.Card, int64, error) {
	return r.list(page, func(c model.Card) bool { return c.ExpirationDate.Before(cutoff) })
}

func (r memCards) list(page repository.PageRequest, keep func(model.Card) bool) ([]model.Card, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var cards []model.Card
	for _, c := range r.s.cards {
		if keep(c) {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		return bytes.Compare(cards[i].ID[:], cards[j].ID[:]) < 0
	})

	total := int64(len(cards))
	offset := page.Offset()
	if offset > len(cards) {
		offset = len(cards)
	}
	end := offset + page.Limit()
	if end > len(cards) {
		end = len(cards)
	}
	return cards[offset:end], total, nil
}

type memTransfers struct{ s *memStore }

func (r memTransfers) Create(ctx context.Context, transfer *model.Transfer) error {
	if transfer.ID == uuid.Nil {
		transfer.ID = uuid.New()
	}
	transfer.CreatedAt = time.Now()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transfers[transfer.ID] = *transfer
	return nil
}

func (r memTransfers) FindByID(ctx context.Context, id uuid.UUID) (*model.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if t, ok := r.s.transfers[id]; ok {
		return &t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memTransfers) ListByCard(ctx context.Context, cardID uuid.UUID, page repository.PageRequest) ([]model.Transfer, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var transfers []model.Transfer
	for _, t := range r.s.transfers {
		if t.FromCardID == cardID || t.ToCardID == cardID {
			transfers = append(transfers, t)
		}
	}
	sort.Slice(transfers, func(i, j int) bool {
		return bytes.Compare(transfers[i].ID[:], transfers[j].ID[:]) < 0
	})
	return transfers, int64(len(transfers)), nil
}

type memRequests struct{ s *memStore }

func (r memRequests) Create(ctx context.Context, request *model.BlockRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	request.CreatedAt = time.Now()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requests[request.ID] = *request
	return nil
}

func (r memRequests) Update(ctx context.Context, request *model.BlockRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requests[request.ID] = *request
	return nil
}

func (r memRequests) FindByID(ctx context.Context, id uuid.UUID) (*model.BlockRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if req, ok := r.s.requests[id]; ok {
		return &req, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memRequests) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.BlockRequest, error) {
	return r.FindByID(ctx, id)
}

func (r memRequests) ListByStatus(ctx context.Context, status model.RequestStatus) ([]model.BlockRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var requests []model.BlockRequest
	for _, req := range r.s.requests {
		if req.Status == status {
			requests = append(requests, req)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests, nil
}

func (r memRequests) CountPendingByCard(ctx context.Context, cardID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int64
	for _, req := range r.s.requests {
		if req.CardID == cardID && req.Status == model.RequestStatusPending {
			count++
		}
	}
	return count, nil
}
