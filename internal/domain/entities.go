package domain

import (
	"strings"
	"time"
)

type AuctionStatus string

const (
	AuctionPending  AuctionStatus = "pending"
	AuctionStarted  AuctionStatus = "started"
	AuctionClosed   AuctionStatus = "closed"
	AuctionCanceled AuctionStatus = "canceled"
)

func (s AuctionStatus) Valid() bool {
	switch s {
	case AuctionPending, AuctionStarted, AuctionClosed, AuctionCanceled:
		return true
	}
	return false
}

// User is an identity owned by the auth subsystem. The core only ever
// compares user IDs.
type User struct {
	ID   string
	Name string
}

// Item is the thing being sold. Created once by auction creation and
// immutable afterwards; owned by exactly one auction.
type Item struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

func (i *Item) Validate() *ValidationError {
	if strings.TrimSpace(i.Name) == "" {
		return NewValidationError("Name can't be blank")
	}
	return nil
}

// Auction is a timed sale of one item. WinnerID is empty until the auction
// is closed with at least one bid.
type Auction struct {
	ID            string
	ItemID        string
	Item          *Item
	SellerID      string
	WinnerID      string
	BuyItNowPrice int64
	EndDate       time.Time
	Extendable    bool
	Status        AuctionStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a *Auction) Started() bool { return a.Status == AuctionStarted }
func (a *Auction) Closed() bool  { return a.Status == AuctionClosed }

// Expired reports whether a started auction has run past its end date.
func (a *Auction) Expired(now time.Time) bool {
	return a.Started() && a.EndDate.Before(now)
}

// Validate checks the rules that apply whenever an auction is written with a
// non-terminal status, i.e. at creation and extension. The end-date-in-future
// rule deliberately does not apply when closing: the expiration sweep closes
// auctions whose end date has already passed.
func (a *Auction) Validate(now time.Time) *ValidationError {
	var errs []string
	if a.SellerID == "" {
		errs = append(errs, "Seller can't be blank")
	}
	if a.ItemID == "" {
		errs = append(errs, "Item can't be blank")
	}
	if a.BuyItNowPrice <= 0 {
		errs = append(errs, "Buy it now price must be a positive number")
	}
	if a.EndDate.IsZero() {
		errs = append(errs, "End date can't be blank")
	} else if !a.EndDate.After(now) {
		errs = append(errs, "End date must be in the future")
	}
	if !a.Status.Valid() {
		errs = append(errs, "Status is not included in the list")
	}
	if a.WinnerID != "" && a.WinnerID == a.SellerID {
		errs = append(errs, "Winner can't be equal to seller")
	}
	if len(errs) > 0 {
		return NewValidationError(errs...)
	}
	return nil
}

// ValidateClose checks only the invariants that still hold for a terminal
// status write.
func (a *Auction) ValidateClose() *ValidationError {
	if a.WinnerID != "" && a.WinnerID == a.SellerID {
		return NewValidationError("Winner can't be equal to seller")
	}
	return nil
}

// Bid is one offer in an auction. Immutable once created; Seq is assigned by
// the store in insertion order, so the highest Seq is the auction's last bid.
type Bid struct {
	ID        string
	AuctionID string
	UserID    string
	Amount    int64
	Seq       int64
	CreatedAt time.Time
}

// Purchasing reports whether this bid hits the auction's buy-it-now price
// and therefore wins immediately.
func (b *Bid) Purchasing(a *Auction) bool {
	return b.Amount == a.BuyItNowPrice
}

// AuctionEventType identifies the lifecycle events published to the event bus.
type AuctionEventType string

const (
	EventAuctionCreated  AuctionEventType = "auction_created"
	EventBidAccepted     AuctionEventType = "bid_accepted"
	EventAuctionExtended AuctionEventType = "auction_extended"
	EventAuctionClosed   AuctionEventType = "auction_closed"
)

type AuctionEvent struct {
	Type      AuctionEventType `json:"type"`
	AuctionID string           `json:"auction_id"`
	UserID    string           `json:"user_id,omitempty"`
	Amount    int64            `json:"amount,omitempty"`
	EndDate   time.Time        `json:"end_date,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
