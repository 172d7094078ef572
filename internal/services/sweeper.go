package services

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/clock"
	"auction-house/internal/domain"
	"auction-house/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ExpirationSweeper periodically closes started auctions whose end date has
// passed, so auctions finish even when no buy-it-now bid ever arrives.
type ExpirationSweeper struct {
	auctions   domain.AuctionRepository
	auctionSvc *AuctionService
	cron       *cron.Cron
	clock      clock.Clock
	interval   time.Duration
	batchSize  int
	log        logger.Logger
}

func NewExpirationSweeper(
	auctions domain.AuctionRepository,
	auctionSvc *AuctionService,
	clk clock.Clock,
	interval time.Duration,
	batchSize int,
	log logger.Logger,
) *ExpirationSweeper {
	return &ExpirationSweeper{
		auctions:   auctions,
		auctionSvc: auctionSvc,
		cron:       cron.New(),
		clock:      clk,
		interval:   interval,
		batchSize:  batchSize,
		log:        log,
	}
}

func (s *ExpirationSweeper) Start(ctx context.Context) error {
	s.log.Info("Starting expiration sweeper", "interval", s.interval)

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		if err := s.Sweep(ctx); err != nil {
			s.log.Error("Expiration sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *ExpirationSweeper) Stop() error {
	s.log.Info("Stopping expiration sweeper")
	s.cron.Stop()
	return nil
}

// Sweep walks expired auctions in batches and closes each one. A failed
// close is logged and skipped; the auction stays started and is picked up
// again on the next sweep.
func (s *ExpirationSweeper) Sweep(ctx context.Context) error {
	now := s.clock.Now()
	cursor := ""

	for {
		batch, err := s.auctions.ListExpired(ctx, now, cursor, s.batchSize)
		if err != nil {
			return err
		}

		for _, auction := range batch {
			if _, err := s.auctionSvc.CloseAuction(ctx, auction); err != nil {
				s.log.Error("Failed to close expired auction",
					"auction_id", auction.ID, "error", err)
			}
		}

		if len(batch) < s.batchSize {
			return nil
		}
		cursor = batch[len(batch)-1].ID
	}
}
