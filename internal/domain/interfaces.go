package domain

import (
	"context"
	"time"
)

// Repository interfaces

type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID string) error
}

type AuctionRepository interface {
	Create(ctx context.Context, auction *Auction) error
	GetByID(ctx context.Context, auctionID string) (*Auction, error)
	Delete(ctx context.Context, auctionID string) error
	// UpdateStatus moves an auction between lifecycle states without
	// touching winner or end date.
	UpdateStatus(ctx context.Context, auction *Auction, status AuctionStatus) error
	// UpdateEndDate persists a changed end date; the future-end-date rule
	// applies here just like at creation.
	UpdateEndDate(ctx context.Context, auction *Auction) error
	// Close persists winner and closed status together.
	Close(ctx context.Context, auction *Auction) error
	// ListExpired enumerates started auctions whose end date is before the
	// given instant, at most limit rows past the given auction ID cursor.
	ListExpired(ctx context.Context, before time.Time, afterID string, limit int) ([]*Auction, error)
}

type BidRepository interface {
	// Create appends a bid to the auction's sequence. Implementations must
	// serialize concurrent creates per auction so that a bid accepted
	// against a stale last-bid baseline fails rather than silently wins.
	Create(ctx context.Context, bid *Bid) error
	// Last returns the most recently created bid for the auction by
	// insertion order, or nil when the auction has no bids.
	Last(ctx context.Context, auctionID string) (*Bid, error)
	ListByAuction(ctx context.Context, auctionID string) ([]*Bid, error)
}

// Event interfaces

type EventPublisher interface {
	Publish(ctx context.Context, event *AuctionEvent) error
}

type EventHandler func(event *AuctionEvent) error

type EventSubscriber interface {
	Subscribe(ctx context.Context, handler EventHandler) error
}

// Cache interface

type AuctionStateCache interface {
	SetStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	GetStatus(ctx context.Context, auctionID string) (AuctionStatus, bool, error)
}
