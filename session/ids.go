package session

import "github.com/google/uuid"

// newID renders a 128-bit random identifier prefixed with name, e.g.
// "/chatter/550e8400-e29b-41d4-a716-446655440000". The prefix carries no
// meaning beyond making logs readable; only uniqueness is required, and
// random ids (rather than monotonic counters) keep correlation robust
// across reconnects where the bridge may still be flushing stale replies.
func newID(prefix string) string {
	return prefix + "/" + uuid.New().String()
}
