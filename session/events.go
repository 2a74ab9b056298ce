package session

// actorEvent is the sealed set of asynchronous occurrences the actor
// reacts to, distinct from commands: these originate from the connector
// and reader goroutines rather than application calls, and carry a
// generation number so the actor can ignore stale events from a
// connection it has already superseded.
type actorEvent interface {
	generation() uint64
}

type evConnected struct {
	gen  uint64
	conn Conn
}

func (e evConnected) generation() uint64 { return e.gen }

type evConnectFailed struct {
	gen uint64
	err error
}

func (e evConnectFailed) generation() uint64 { return e.gen }

type evFrame struct {
	gen  uint64
	data []byte
}

func (e evFrame) generation() uint64 { return e.gen }

type evReadError struct {
	gen uint64
	err error
}

func (e evReadError) generation() uint64 { return e.gen }

type evBackoffElapsed struct {
	gen uint64
}

func (e evBackoffElapsed) generation() uint64 { return e.gen }
