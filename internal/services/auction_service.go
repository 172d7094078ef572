package services

import (
	"context"
	"time"

	"auction-house/internal/clock"
	"auction-house/internal/domain"
	"auction-house/pkg/logger"
	"auction-house/pkg/utils"
)

// AuctionService owns the auction lifecycle: creation, end-date extension
// and closing. Bidding lives in BidService.
type AuctionService struct {
	items      domain.ItemRepository
	auctions   domain.AuctionRepository
	bids       domain.BidRepository
	events     domain.EventPublisher
	stateCache domain.AuctionStateCache
	clock      clock.Clock
	log        logger.Logger
}

func NewAuctionService(
	items domain.ItemRepository,
	auctions domain.AuctionRepository,
	bids domain.BidRepository,
	events domain.EventPublisher,
	stateCache domain.AuctionStateCache,
	clk clock.Clock,
	log logger.Logger,
) *AuctionService {
	return &AuctionService{
		items:      items,
		auctions:   auctions,
		bids:       bids,
		events:     events,
		stateCache: stateCache,
		clock:      clk,
		log:        log,
	}
}

type CreateAuctionParams struct {
	SellerID        string
	ItemName        string
	ItemDescription string
	BuyItNowPrice   int64
	EndDate         time.Time
	Extendable      bool
}

// CreateAuction creates the item, then the auction in pending status, then
// transitions it to started. Cleanup on failure is compensating, not
// transactional: already-created rows are deleted best effort so no orphan
// item (or pending auction) survives a failed creation.
func (s *AuctionService) CreateAuction(ctx context.Context, p CreateAuctionParams) (*domain.Auction, error) {
	now := s.clock.Now()

	item := &domain.Item{
		ID:          utils.GenerateID("item"),
		Name:        p.ItemName,
		Description: p.ItemDescription,
		CreatedAt:   now,
	}
	if verr := item.Validate(); verr != nil {
		return nil, verr
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, domain.NewPersistenceError(err.Error())
	}

	auction := &domain.Auction{
		ID:            utils.GenerateID("auction"),
		ItemID:        item.ID,
		Item:          item,
		SellerID:      p.SellerID,
		BuyItNowPrice: p.BuyItNowPrice,
		EndDate:       p.EndDate,
		Extendable:    p.Extendable,
		Status:        domain.AuctionPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if verr := auction.Validate(now); verr != nil {
		s.removeItem(ctx, item.ID)
		return nil, verr
	}
	if err := s.auctions.Create(ctx, auction); err != nil {
		s.removeItem(ctx, item.ID)
		return nil, domain.NewPersistenceError(err.Error())
	}

	if err := s.auctions.UpdateStatus(ctx, auction, domain.AuctionStarted); err != nil {
		s.removeAuction(ctx, auction.ID)
		s.removeItem(ctx, item.ID)
		return nil, domain.NewPersistenceError(err.Error())
	}

	s.cacheStatus(ctx, auction.ID, auction.Status)
	s.publish(ctx, &domain.AuctionEvent{
		Type:      domain.EventAuctionCreated,
		AuctionID: auction.ID,
		UserID:    auction.SellerID,
		EndDate:   auction.EndDate,
		Timestamp: now,
	})

	s.log.Info("Auction created", "auction_id", auction.ID, "seller_id", auction.SellerID)
	return auction, nil
}

// ExtendEndDate pushes the auction's end date out by interval when the
// auction is extendable, started, and within interval of closing. Returns
// false without error when any condition does not hold.
func (s *AuctionService) ExtendEndDate(ctx context.Context, auction *domain.Auction, interval time.Duration) (bool, error) {
	now := s.clock.Now()
	if !auction.Extendable || !auction.Started() || auction.EndDate.Sub(now) >= interval {
		return false, nil
	}

	prevEndDate := auction.EndDate
	auction.EndDate = auction.EndDate.Add(interval)

	if verr := auction.Validate(now); verr != nil {
		auction.EndDate = prevEndDate
		return false, domain.NewPersistenceError(verr.Errors...)
	}
	if err := s.auctions.UpdateEndDate(ctx, auction); err != nil {
		auction.EndDate = prevEndDate
		return false, domain.NewPersistenceError(err.Error())
	}

	s.publish(ctx, &domain.AuctionEvent{
		Type:      domain.EventAuctionExtended,
		AuctionID: auction.ID,
		EndDate:   auction.EndDate,
		Timestamp: now,
	})

	s.log.Info("Auction extended", "auction_id", auction.ID, "end_date", auction.EndDate)
	return true, nil
}

// CloseAuction assigns the last bidder as winner (none when the auction has
// no bids) and moves the auction to closed. The previous winner and status
// are captured up front and restored if the write fails, so the auction is
// never left half closed in memory.
func (s *AuctionService) CloseAuction(ctx context.Context, auction *domain.Auction) (bool, error) {
	last, err := s.bids.Last(ctx, auction.ID)
	if err != nil {
		return false, domain.NewPersistenceError(err.Error())
	}

	prevWinner, prevStatus := auction.WinnerID, auction.Status

	auction.WinnerID = ""
	if last != nil {
		auction.WinnerID = last.UserID
	}
	auction.Status = domain.AuctionClosed

	if verr := auction.ValidateClose(); verr != nil {
		auction.WinnerID, auction.Status = prevWinner, prevStatus
		return false, domain.NewPersistenceError(verr.Errors...)
	}
	if err := s.auctions.Close(ctx, auction); err != nil {
		auction.WinnerID, auction.Status = prevWinner, prevStatus
		return false, domain.NewPersistenceError(err.Error())
	}

	s.cacheStatus(ctx, auction.ID, auction.Status)
	s.publish(ctx, &domain.AuctionEvent{
		Type:      domain.EventAuctionClosed,
		AuctionID: auction.ID,
		UserID:    auction.WinnerID,
		Timestamp: s.clock.Now(),
	})

	s.log.Info("Auction closed", "auction_id", auction.ID, "winner_id", auction.WinnerID)
	return true, nil
}

func (s *AuctionService) removeItem(ctx context.Context, itemID string) {
	if err := s.items.Delete(ctx, itemID); err != nil {
		s.log.Error("Failed to clean up item", "item_id", itemID, "error", err)
	}
}

func (s *AuctionService) removeAuction(ctx context.Context, auctionID string) {
	if err := s.auctions.Delete(ctx, auctionID); err != nil {
		s.log.Error("Failed to clean up auction", "auction_id", auctionID, "error", err)
	}
}

func (s *AuctionService) cacheStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) {
	if s.stateCache == nil {
		return
	}
	if err := s.stateCache.SetStatus(ctx, auctionID, status); err != nil {
		s.log.Warn("Failed to cache auction status", "auction_id", auctionID, "error", err)
	}
}

func (s *AuctionService) publish(ctx context.Context, event *domain.AuctionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish auction event", "type", event.Type,
			"auction_id", event.AuctionID, "error", err)
	}
}
