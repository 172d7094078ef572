package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// GorillaConn wraps a gorilla websocket connection for one auction watcher.
// gorilla allows only one concurrent writer, hence the mutex.
type GorillaConn struct {
	conn      *websocket.Conn
	auctionID string
	writeMu   sync.Mutex
}

func NewGorillaConn(conn *websocket.Conn, auctionID string) *GorillaConn {
	return &GorillaConn{conn: conn, auctionID: auctionID}
}

func (c *GorillaConn) Send(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *GorillaConn) Close() error {
	return c.conn.Close()
}

func (c *GorillaConn) AuctionID() string {
	return c.auctionID
}
