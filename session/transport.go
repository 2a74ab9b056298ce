package session

import (
	"context"

	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn the session core needs. Tests
// substitute a fake implementation; *websocket.Conn already satisfies this
// interface as-is.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a Conn to a rosbridge endpoint. Tests substitute a fake
// implementation to avoid touching a real network.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// gorillaDialer is the production Dialer, backed by gorilla/websocket.
type gorillaDialer struct {
	dialer websocket.Dialer
}

func newGorillaDialer() *gorillaDialer {
	return &gorillaDialer{dialer: *websocket.DefaultDialer}
}

func (d *gorillaDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
