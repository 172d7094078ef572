package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"auction-house/internal/domain"
	"auction-house/internal/services"
	"auction-house/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AuctionHandler is thin HTTP glue over the auction and bid services. All
// rule decisions live in the services; the handler only parses, dispatches
// and renders.
type AuctionHandler struct {
	auctionSvc *services.AuctionService
	bidSvc     *services.BidService
	auctions   domain.AuctionRepository
	bids       domain.BidRepository
	stateCache domain.AuctionStateCache
	log        logger.Logger
}

func NewAuctionHandler(
	auctionSvc *services.AuctionService,
	bidSvc *services.BidService,
	auctions domain.AuctionRepository,
	bids domain.BidRepository,
	stateCache domain.AuctionStateCache,
	log logger.Logger,
) *AuctionHandler {
	return &AuctionHandler{
		auctionSvc: auctionSvc,
		bidSvc:     bidSvc,
		auctions:   auctions,
		bids:       bids,
		stateCache: stateCache,
		log:        log,
	}
}

type CreateAuctionRequest struct {
	SellerID        string    `json:"seller_id"`
	ItemName        string    `json:"item_name"`
	ItemDescription string    `json:"item_description"`
	BuyItNowPrice   int64     `json:"buy_it_now_price"`
	EndDate         time.Time `json:"end_date"`
	Extendable      bool      `json:"extendable"`
}

type AuctionResponse struct {
	AuctionID       string    `json:"auction_id"`
	ItemName        string    `json:"item_name"`
	ItemDescription string    `json:"item_description,omitempty"`
	SellerID        string    `json:"seller_id"`
	WinnerID        string    `json:"winner_id,omitempty"`
	BuyItNowPrice   int64     `json:"buy_it_now_price"`
	EndDate         time.Time `json:"end_date"`
	Extendable      bool      `json:"extendable"`
	Status          string    `json:"status"`
}

type PlaceBidRequest struct {
	BidderID string          `json:"bidder_id"`
	Amount   json.RawMessage `json:"amount"`
}

type BidResponse struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	var req CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	auction, err := h.auctionSvc.CreateAuction(c.Request().Context(), services.CreateAuctionParams{
		SellerID:        req.SellerID,
		ItemName:        req.ItemName,
		ItemDescription: req.ItemDescription,
		BuyItNowPrice:   req.BuyItNowPrice,
		EndDate:         req.EndDate,
		Extendable:      req.Extendable,
	})
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, toAuctionResponse(auction))
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	auction, err := h.auctions.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}

	return c.JSON(http.StatusOK, toAuctionResponse(auction))
}

// GetAuctionStatus serves the status read path from the cache when it is
// warm, falling back to the store.
func (h *AuctionHandler) GetAuctionStatus(c echo.Context) error {
	auctionID := c.Param("id")

	if h.stateCache != nil {
		status, ok, err := h.stateCache.GetStatus(c.Request().Context(), auctionID)
		if err == nil && ok {
			return c.JSON(http.StatusOK, map[string]string{
				"auction_id": auctionID,
				"status":     string(status),
			})
		}
	}

	auction, err := h.auctions.GetByID(c.Request().Context(), auctionID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"auction_id": auctionID,
		"status":     string(auction.Status),
	})
}

func (h *AuctionHandler) ListBids(c echo.Context) error {
	bids, err := h.bids.ListByAuction(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to list bids", "auction_id", c.Param("id"), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list bids"})
	}

	resp := make([]BidResponse, 0, len(bids))
	for _, bid := range bids {
		resp = append(resp, toBidResponse(bid))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuctionHandler) PlaceBid(c echo.Context) error {
	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	auction, err := h.auctions.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}

	// Anything but a whole number, strings and fractions included, flows
	// into the service as zero and fails its amount rule, keeping the rule
	// ordering in one place.
	var amount int64
	if err := json.Unmarshal(req.Amount, &amount); err != nil {
		amount = 0
	}

	bid, err := h.bidSvc.PlaceBid(c.Request().Context(), req.BidderID, auction, amount)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, toBidResponse(bid))
}

func (h *AuctionHandler) renderError(c echo.Context, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"errors": verr.Errors})
	}

	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		return c.JSON(http.StatusConflict, map[string]interface{}{"errors": perr.Errors})
	}

	h.log.Error("Unhandled operation error", "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal error"})
}

func toAuctionResponse(a *domain.Auction) AuctionResponse {
	resp := AuctionResponse{
		AuctionID:     a.ID,
		SellerID:      a.SellerID,
		WinnerID:      a.WinnerID,
		BuyItNowPrice: a.BuyItNowPrice,
		EndDate:       a.EndDate,
		Extendable:    a.Extendable,
		Status:        string(a.Status),
	}
	if a.Item != nil {
		resp.ItemName = a.Item.Name
		resp.ItemDescription = a.Item.Description
	}
	return resp
}

func toBidResponse(b *domain.Bid) BidResponse {
	return BidResponse{
		BidID:     b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.UserID,
		Amount:    b.Amount,
		CreatedAt: b.CreatedAt,
	}
}
