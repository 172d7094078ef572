package services

import (
	"context"
	"testing"
	"time"

	"auction-house/internal/clock"
	"auction-house/internal/domain"
	"auction-house/pkg/logger"

	"github.com/stretchr/testify/require"
)

const (
	sellerID = "user-seller"
	bidderA  = "user-bidder-a"
	bidderB  = "user-bidder-b"
)

type testEnv struct {
	store      *fakeStore
	pub        *fakePublisher
	auctionSvc *AuctionService
	bidSvc     *BidService
	now        time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newFakeStore()
	pub := &fakePublisher{}
	now := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	clk := clock.Mock{T: now}

	auctionSvc := NewAuctionService(store, auctionRepo{store}, bidRepo{store},
		pub, nil, clk, logger.Nop())
	bidSvc := NewBidService(bidRepo{store}, auctionSvc, pub,
		clk, 30*time.Minute, logger.Nop())

	return &testEnv{
		store:      store,
		pub:        pub,
		auctionSvc: auctionSvc,
		bidSvc:     bidSvc,
		now:        now,
	}
}

func (e *testEnv) params() CreateAuctionParams {
	return CreateAuctionParams{
		SellerID:        sellerID,
		ItemName:        "item1_name",
		ItemDescription: "item1_description",
		BuyItNowPrice:   10000,
		EndDate:         e.now.Add(90 * time.Minute),
		Extendable:      true,
	}
}

func (e *testEnv) mustCreate(t *testing.T, p CreateAuctionParams) *domain.Auction {
	t.Helper()
	auction, err := e.auctionSvc.CreateAuction(context.Background(), p)
	require.NoError(t, err)
	return auction
}

func TestCreateAuction(t *testing.T) {
	t.Run("creates item and started auction", func(t *testing.T) {
		env := newTestEnv(t)
		auction := env.mustCreate(t, env.params())

		require.Equal(t, domain.AuctionStarted, auction.Status)
		require.Equal(t, sellerID, auction.SellerID)
		require.Empty(t, auction.WinnerID)
		require.Equal(t, "item1_name", auction.Item.Name)
		require.Equal(t, "item1_description", auction.Item.Description)

		persisted := env.store.auctions[auction.ID]
		require.Equal(t, domain.AuctionStarted, persisted.Status)
		require.Contains(t, env.store.items, auction.ItemID)
		require.Equal(t, []domain.AuctionEventType{domain.EventAuctionCreated}, env.pub.types())
	})

	t.Run("missing item name fails and persists nothing", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.params()
		p.ItemName = ""

		_, err := env.auctionSvc.CreateAuction(context.Background(), p)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Errors, "Name can't be blank")
		require.Empty(t, env.store.items)
		require.Empty(t, env.store.auctions)
	})

	t.Run("past end date fails and removes the created item", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.params()
		p.EndDate = env.now.Add(-time.Second)

		_, err := env.auctionSvc.CreateAuction(context.Background(), p)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Errors, "End date must be in the future")
		require.Empty(t, env.store.items, "no orphan item may survive a failed creation")
	})

	t.Run("missing end date fails", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.params()
		p.EndDate = time.Time{}

		_, err := env.auctionSvc.CreateAuction(context.Background(), p)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Errors, "End date can't be blank")
	})

	t.Run("non-positive buy it now price fails", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.params()
		p.BuyItNowPrice = 0

		_, err := env.auctionSvc.CreateAuction(context.Background(), p)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Errors, "Buy it now price must be a positive number")
	})

	t.Run("failed start transition cleans up item and auction", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.statusErr = errStore

		_, err := env.auctionSvc.CreateAuction(context.Background(), env.params())

		var perr *domain.PersistenceError
		require.ErrorAs(t, err, &perr)
		require.Empty(t, env.store.items)
		require.Empty(t, env.store.auctions)
	})
}

func TestCloseAuction(t *testing.T) {
	t.Run("no bids closes with no winner", func(t *testing.T) {
		env := newTestEnv(t)
		auction := env.mustCreate(t, env.params())

		ok, err := env.auctionSvc.CloseAuction(context.Background(), auction)
		require.NoError(t, err)
		require.True(t, ok)

		require.True(t, auction.Closed())
		require.Empty(t, auction.WinnerID)
		persisted := env.store.auctions[auction.ID]
		require.Equal(t, domain.AuctionClosed, persisted.Status)
	})

	t.Run("with bids the last bidder wins", func(t *testing.T) {
		env := newTestEnv(t)
		auction := env.mustCreate(t, env.params())

		_, err := env.bidSvc.PlaceBid(context.Background(), bidderB, auction, 500)
		require.NoError(t, err)
		_, err = env.bidSvc.PlaceBid(context.Background(), bidderA, auction, 1000)
		require.NoError(t, err)

		ok, err := env.auctionSvc.CloseAuction(context.Background(), auction)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, bidderA, auction.WinnerID)
		require.True(t, auction.Closed())
	})

	t.Run("failed close restores winner and status", func(t *testing.T) {
		env := newTestEnv(t)
		auction := env.mustCreate(t, env.params())
		_, err := env.bidSvc.PlaceBid(context.Background(), bidderA, auction, 500)
		require.NoError(t, err)

		env.store.closeErr = errStore
		ok, err := env.auctionSvc.CloseAuction(context.Background(), auction)

		var perr *domain.PersistenceError
		require.ErrorAs(t, err, &perr)
		require.False(t, ok)
		require.Equal(t, domain.AuctionStarted, auction.Status)
		require.Empty(t, auction.WinnerID)

		reread, err := auctionRepo{env.store}.GetByID(context.Background(), auction.ID)
		require.NoError(t, err)
		require.Equal(t, domain.AuctionStarted, reread.Status)
		require.Empty(t, reread.WinnerID)
	})

	t.Run("closing when the seller is last bidder fails and rolls back", func(t *testing.T) {
		env := newTestEnv(t)
		auction := env.mustCreate(t, env.params())
		_, err := env.bidSvc.PlaceBid(context.Background(), sellerID, auction, 500)
		require.NoError(t, err)

		ok, err := env.auctionSvc.CloseAuction(context.Background(), auction)

		var perr *domain.PersistenceError
		require.ErrorAs(t, err, &perr)
		require.Contains(t, perr.Errors, "Winner can't be equal to seller")
		require.False(t, ok)
		require.Equal(t, domain.AuctionStarted, auction.Status)
		require.Empty(t, auction.WinnerID)
	})

	t.Run("re-closing re-runs the effect", func(t *testing.T) {
		env := newTestEnv(t)
		auction := env.mustCreate(t, env.params())

		ok, err := env.auctionSvc.CloseAuction(context.Background(), auction)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = env.auctionSvc.CloseAuction(context.Background(), auction)
		require.NoError(t, err)
		require.True(t, ok, "closing is not idempotent, it simply re-applies")
		require.True(t, auction.Closed())
	})
}

func TestExtendEndDate(t *testing.T) {
	interval := 30 * time.Minute

	cases := []struct {
		name       string
		endIn      time.Duration
		extendable bool
		status     domain.AuctionStatus
		want       bool
	}{
		{"not extendable", 10 * time.Minute, false, domain.AuctionStarted, false},
		{"not started", 10 * time.Minute, true, domain.AuctionClosed, false},
		{"not near the end", 40 * time.Minute, true, domain.AuctionStarted, false},
		{"exactly at the interval boundary", interval, true, domain.AuctionStarted, false},
		{"near the end", 10 * time.Minute, true, domain.AuctionStarted, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			auction := env.mustCreate(t, env.params())
			auction.EndDate = env.now.Add(tc.endIn)
			auction.Extendable = tc.extendable
			auction.Status = tc.status
			prevEnd := auction.EndDate

			got, err := env.auctionSvc.ExtendEndDate(context.Background(), auction, interval)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)

			if tc.want {
				require.Equal(t, prevEnd.Add(interval), auction.EndDate)
			} else {
				require.Equal(t, prevEnd, auction.EndDate)
			}
		})
	}

	t.Run("failed persist restores the end date", func(t *testing.T) {
		env := newTestEnv(t)
		auction := env.mustCreate(t, env.params())
		auction.EndDate = env.now.Add(10 * time.Minute)
		prevEnd := auction.EndDate

		env.store.endDateErr = errStore
		got, err := env.auctionSvc.ExtendEndDate(context.Background(), auction, interval)

		var perr *domain.PersistenceError
		require.ErrorAs(t, err, &perr)
		require.False(t, got)
		require.Equal(t, prevEnd, auction.EndDate)
	})
}
