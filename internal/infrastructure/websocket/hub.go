package websocket

import (
	"encoding/json"
	"sync"

	"auction-house/pkg/logger"
)

// Conn is one client connection watching an auction.
type Conn interface {
	Send(message []byte) error
	Close() error
	AuctionID() string
}

// Hub tracks which connections watch which auction and fans auction events
// out to them. Safe for concurrent use.
type Hub struct {
	watchers map[string][]Conn // auctionID -> connections
	mutex    sync.RWMutex
	log      logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		watchers: make(map[string][]Conn),
		log:      log,
	}
}

func (h *Hub) Register(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	auctionID := conn.AuctionID()
	h.watchers[auctionID] = append(h.watchers[auctionID], conn)
	h.log.Info("Watcher registered", "auction_id", auctionID)
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	auctionID := conn.AuctionID()
	conns := h.watchers[auctionID]
	for i, c := range conns {
		if c == conn {
			h.watchers[auctionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.watchers[auctionID]) == 0 {
		delete(h.watchers, auctionID)
	}
}

// BroadcastToAuction sends the message to every watcher of the auction.
// Send failures are logged and skipped so one dead connection does not
// starve the rest.
func (h *Hub) BroadcastToAuction(auctionID string, message interface{}) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mutex.RLock()
	conns := make([]Conn, len(h.watchers[auctionID]))
	copy(conns, h.watchers[auctionID])
	h.mutex.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(messageBytes); err != nil {
			h.log.Error("Failed to send message", "auction_id", auctionID, "error", err)
		}
	}

	return nil
}

// CloseAuctionWatchers closes and drops every connection watching the
// auction, typically after the auction closes.
func (h *Hub) CloseAuctionWatchers(auctionID string) {
	h.mutex.Lock()
	conns := h.watchers[auctionID]
	delete(h.watchers, auctionID)
	h.mutex.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			h.log.Error("Failed to close connection", "auction_id", auctionID, "error", err)
		}
	}
}
