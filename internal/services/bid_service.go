package services

import (
	"context"
	"time"

	"auction-house/internal/clock"
	"auction-house/internal/domain"
	"auction-house/pkg/logger"
	"auction-house/pkg/utils"
)

type BidService struct {
	bids       domain.BidRepository
	auctionSvc *AuctionService
	events     domain.EventPublisher
	clock      clock.Clock
	extension  time.Duration
	log        logger.Logger
}

func NewBidService(
	bids domain.BidRepository,
	auctionSvc *AuctionService,
	events domain.EventPublisher,
	clk clock.Clock,
	extension time.Duration,
	log logger.Logger,
) *BidService {
	return &BidService{
		bids:       bids,
		auctionSvc: auctionSvc,
		events:     events,
		clock:      clk,
		extension:  extension,
		log:        log,
	}
}

// PlaceBid validates and records a bid. A bid at the buy-it-now price closes
// the auction with the bidder as winner; any other accepted bid tries to
// extend the end date. Both follow-ups run synchronously and their failures
// are the bid's failure.
func (s *BidService) PlaceBid(ctx context.Context, bidderID string, auction *domain.Auction, amount int64) (*domain.Bid, error) {
	s.log.Info("Placing bid", "auction_id", auction.ID, "bidder_id", bidderID, "amount", amount)

	last, err := s.bids.Last(ctx, auction.ID)
	if err != nil {
		return nil, domain.NewPersistenceError(err.Error())
	}

	if verr := s.validate(auction, last, bidderID, amount); verr != nil {
		return nil, verr
	}

	bid := &domain.Bid{
		ID:        utils.GenerateID("bid"),
		AuctionID: auction.ID,
		UserID:    bidderID,
		Amount:    amount,
		CreatedAt: s.clock.Now(),
	}
	if err := s.bids.Create(ctx, bid); err != nil {
		// Validation passed but the store refused the write, typically a
		// race against a concurrently accepted bid.
		return nil, domain.NewPersistenceError(err.Error())
	}

	s.publish(ctx, bid)

	if bid.Purchasing(auction) {
		if _, err := s.auctionSvc.CloseAuction(ctx, auction); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.auctionSvc.ExtendEndDate(ctx, auction, s.extension); err != nil {
			return nil, err
		}
	}

	return bid, nil
}

// validate applies the bidding rules in order and reports the first
// violation. The self-bidding rule only looks at the immediately preceding
// bidder; alternating bids by the same pair of users are allowed.
func (s *BidService) validate(auction *domain.Auction, last *domain.Bid, bidderID string, amount int64) *domain.ValidationError {
	if last != nil && last.UserID == bidderID {
		return domain.NewValidationError("Bidding against yourself is not allowed.")
	}
	if !auction.Started() {
		return domain.NewValidationError("Bidding on closed auction is not allowed.")
	}
	if amount <= 0 {
		return domain.NewValidationError("Amount is not valid.")
	}
	if last != nil && amount <= last.Amount {
		return domain.NewValidationError("The amount must be greater than the last bid.")
	}
	if amount > auction.BuyItNowPrice {
		return domain.NewValidationError("Bid cannot exceed the buy it now price.")
	}
	return nil
}

func (s *BidService) publish(ctx context.Context, bid *domain.Bid) {
	if s.events == nil {
		return
	}
	event := &domain.AuctionEvent{
		Type:      domain.EventBidAccepted,
		AuctionID: bid.AuctionID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		Timestamp: bid.CreatedAt,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish bid event", "auction_id", bid.AuctionID, "error", err)
	}
}
