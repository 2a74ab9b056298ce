package session

import (
	"context"
	"errors"
	"sync"
)

// fakeConn is an in-memory stand-in for a *websocket.Conn. Writes land on
// sent for the test to inspect; inbound frames are injected via push and
// surface from ReadMessage in order.
type fakeConn struct {
	sent   chan []byte
	toRead chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		sent:   make(chan []byte, 256),
		toRead: make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	cp := append([]byte(nil), data...)
	select {
	case c.sent <- cp:
		return nil
	case <-c.closed:
		return errors.New("fakeConn: write on closed connection")
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.toRead:
		return 1, data, nil
	case <-c.closed:
		return 0, nil, errors.New("fakeConn: read on closed connection")
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// push injects an inbound frame as if the bridge had sent it.
func (c *fakeConn) push(data []byte) {
	select {
	case c.toRead <- data:
	case <-c.closed:
	}
}

// dialOutcome is one scripted result for a single Dial call.
type dialOutcome struct {
	conn *fakeConn
	err  error
}

// fakeDialer replays a scripted sequence of dial outcomes, falling back to
// a fresh always-succeeding connection once the script is exhausted.
type fakeDialer struct {
	mu     sync.Mutex
	script []dialOutcome
	dialed chan *fakeConn // every successfully returned conn, in order
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{dialed: make(chan *fakeConn, 64)}
}

func (d *fakeDialer) enqueue(outcomes ...dialOutcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.script = append(d.script, outcomes...)
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	var out dialOutcome
	if len(d.script) > 0 {
		out = d.script[0]
		d.script = d.script[1:]
	} else {
		out = dialOutcome{conn: newFakeConn()}
	}
	d.mu.Unlock()

	if out.err != nil {
		return nil, out.err
	}
	conn := out.conn
	if conn == nil {
		conn = newFakeConn()
	}
	d.dialed <- conn
	return conn, nil
}
