package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"auction-house/internal/domain"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("bid conflicts with a concurrently accepted bid")
	errStore    = errors.New("store unavailable")
)

// fakeStore is an in-memory stand-in for the MySQL repositories. It stores
// copies, so tests can tell the difference between in-memory state on the
// objects the services hold and what was actually "persisted". Error fields
// inject write failures.
type fakeStore struct {
	mu       sync.Mutex
	items    map[string]domain.Item
	auctions map[string]domain.Auction
	bids     map[string][]domain.Bid

	itemCreateErr    error
	auctionCreateErr error
	statusErr        error
	endDateErr       error
	closeErr         error
	bidCreateErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:    make(map[string]domain.Item),
		auctions: make(map[string]domain.Auction),
		bids:     make(map[string][]domain.Bid),
	}
}

func (f *fakeStore) Create(ctx context.Context, item *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.itemCreateErr != nil {
		return f.itemCreateErr
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, itemID)
	return nil
}

// auctionRepo exposes the AuctionRepository face of the store; Item and
// Auction repositories share Create/Delete method names.
type auctionRepo struct{ *fakeStore }

func (f auctionRepo) Create(ctx context.Context, auction *domain.Auction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.auctionCreateErr != nil {
		return f.auctionCreateErr
	}
	f.auctions[auction.ID] = *auction
	return nil
}

func (f auctionRepo) GetByID(ctx context.Context, auctionID string) (*domain.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[auctionID]
	if !ok {
		return nil, errNotFound
	}
	if item, ok := f.items[a.ItemID]; ok {
		a.Item = &item
	}
	return &a, nil
}

func (f auctionRepo) Delete(ctx context.Context, auctionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.auctions, auctionID)
	return nil
}

func (f auctionRepo) UpdateStatus(ctx context.Context, auction *domain.Auction, status domain.AuctionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	auction.Status = status
	auction.UpdatedAt = time.Now().UTC()
	f.auctions[auction.ID] = *auction
	return nil
}

func (f auctionRepo) UpdateEndDate(ctx context.Context, auction *domain.Auction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.endDateErr != nil {
		return f.endDateErr
	}
	auction.UpdatedAt = time.Now().UTC()
	f.auctions[auction.ID] = *auction
	return nil
}

func (f auctionRepo) Close(ctx context.Context, auction *domain.Auction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeErr != nil {
		return f.closeErr
	}
	auction.UpdatedAt = time.Now().UTC()
	f.auctions[auction.ID] = *auction
	return nil
}

func (f auctionRepo) ListExpired(ctx context.Context, before time.Time, afterID string, limit int) ([]*domain.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Auction
	for _, a := range f.auctions {
		if a.Status == domain.AuctionStarted && a.EndDate.Before(before) && a.ID > afterID {
			copied := a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// bidRepo exposes the BidRepository face of the store. Create mirrors the
// MySQL repository's in-transaction re-checks.
type bidRepo struct{ *fakeStore }

func (f bidRepo) Create(ctx context.Context, bid *domain.Bid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bidCreateErr != nil {
		return f.bidCreateErr
	}
	auction, ok := f.auctions[bid.AuctionID]
	if !ok || auction.Status != domain.AuctionStarted {
		return errConflict
	}
	existing := f.bids[bid.AuctionID]
	if n := len(existing); n > 0 {
		if bid.Amount <= existing[n-1].Amount {
			return errConflict
		}
		bid.Seq = existing[n-1].Seq + 1
	} else {
		bid.Seq = 1
	}
	f.bids[bid.AuctionID] = append(existing, *bid)
	return nil
}

func (f bidRepo) Last(ctx context.Context, auctionID string) (*domain.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bids := f.bids[auctionID]
	if len(bids) == 0 {
		return nil, nil
	}
	last := bids[len(bids)-1]
	return &last, nil
}

func (f bidRepo) ListByAuction(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Bid
	for _, b := range f.bids[auctionID] {
		copied := b
		out = append(out, &copied)
	}
	return out, nil
}

// fakePublisher records every published event.
type fakePublisher struct {
	mu     sync.Mutex
	events []domain.AuctionEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event *domain.AuctionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *fakePublisher) types() []domain.AuctionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.AuctionEventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
