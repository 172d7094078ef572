package websocket

import (
	"testing"

	"auction-house/pkg/logger"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	auctionID string
	sent      [][]byte
	closed    bool
}

func (c *fakeConn) Send(message []byte) error {
	c.sent = append(c.sent, message)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) AuctionID() string { return c.auctionID }

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(logger.Nop())

	watcher1 := &fakeConn{auctionID: "auction-1"}
	watcher2 := &fakeConn{auctionID: "auction-1"}
	other := &fakeConn{auctionID: "auction-2"}
	hub.Register(watcher1)
	hub.Register(watcher2)
	hub.Register(other)

	require.NoError(t, hub.BroadcastToAuction("auction-1", map[string]string{"type": "bid_accepted"}))

	require.Len(t, watcher1.sent, 1)
	require.Len(t, watcher2.sent, 1)
	require.Empty(t, other.sent)
	require.JSONEq(t, `{"type":"bid_accepted"}`, string(watcher1.sent[0]))
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(logger.Nop())

	watcher := &fakeConn{auctionID: "auction-1"}
	hub.Register(watcher)
	hub.Unregister(watcher)

	require.NoError(t, hub.BroadcastToAuction("auction-1", "ignored"))
	require.Empty(t, watcher.sent)
}

func TestHubCloseAuctionWatchers(t *testing.T) {
	hub := NewHub(logger.Nop())

	watcher1 := &fakeConn{auctionID: "auction-1"}
	watcher2 := &fakeConn{auctionID: "auction-1"}
	hub.Register(watcher1)
	hub.Register(watcher2)

	hub.CloseAuctionWatchers("auction-1")

	require.True(t, watcher1.closed)
	require.True(t, watcher2.closed)

	require.NoError(t, hub.BroadcastToAuction("auction-1", "ignored"))
	require.Empty(t, watcher1.sent)
}
