package device

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/safety"
)

// Snapshot is a consistent read of the device state.
type Snapshot struct {
	// Connected reflects the client-controlled connection flag.
	Connected bool

	// IsSafe is the current safety verdict.
	IsSafe bool

	// LastUpdate is when the poller last completed a cycle.
	LastUpdate time.Time

	// LastError describes the most recent cycle failure, or "".
	LastError string

	// Decision is the last full decision, for the status endpoint and
	// the setup page. Zero until the first connected cycle completes.
	Decision safety.Decision
}

// State is the process-wide device state shared between the Alpaca
// request handlers, the background poller and the event stream.
//
// Mutation is guarded by one mutex scoped to this object. Nothing holds
// the lock across a blocking call - classification, sun calculation and
// file I/O all happen outside; only the final assignment is locked.
//
// The server transaction counter lives here too because its invariant
// (strictly increasing by one per response, never repeated, never
// reset while the process runs) is device-wide, not per-handler.
type State struct {
	mu           sync.RWMutex
	connected    bool
	isSafe       bool
	lastUpdate   time.Time
	lastError    string
	lastDecision safety.Decision

	txnCounter atomic.Uint32

	subMu       sync.Mutex
	subscribers map[chan Snapshot]struct{}
}

// NewState creates the device state.
// IsSafe starts true: with no client connected the monitor fails open.
func NewState() *State {
	return &State{
		isSafe:      true,
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// NextTransactionID returns the next server transaction ID.
// IDs start at 1 and strictly increase; safe under concurrent bursts.
func (s *State) NextTransactionID() uint32 {
	return s.txnCounter.Add(1)
}

// Connected reports the client-controlled connection flag.
func (s *State) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// SetConnected sets the connection flag. Only the Connected PUT handler
// calls this; the poller observes it on its next cycle.
func (s *State) SetConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	s.mu.Unlock()

	s.notify()
}

// Snapshot returns a consistent copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Connected:  s.connected,
		IsSafe:     s.isSafe,
		LastUpdate: s.lastUpdate,
		LastError:  s.lastError,
		Decision:   s.lastDecision,
	}
}

// ApplyDecision publishes the outcome of one poll cycle.
//
// On a clean cycle the verdict is taken from the decision and lastError
// cleared. When the cycle failed, IsSafe is forced false and the
// failure recorded, but the (fail-safe) decision detail is still kept
// for diagnostics.
func (s *State) ApplyDecision(d safety.Decision, err error) {
	s.mu.Lock()
	s.lastDecision = d
	s.lastUpdate = d.EvaluatedAt
	if err != nil {
		s.isSafe = false
		s.lastError = err.Error()
	} else {
		s.isSafe = d.IsSafe
		s.lastError = ""
	}
	s.mu.Unlock()

	s.notify()
}

// ForceSafe records a fail-open cycle while no client is connected.
// The previous decision detail is retained.
func (s *State) ForceSafe(now time.Time) {
	s.mu.Lock()
	s.isSafe = true
	s.lastUpdate = now
	s.lastError = ""
	s.mu.Unlock()

	s.notify()
}

// Subscribe registers a channel that receives a Snapshot after every
// state change. The channel has a small buffer; slow consumers miss
// intermediate snapshots rather than blocking the poller.
func (s *State) Subscribe() chan Snapshot {
	ch := make(chan Snapshot, 4)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *State) Unsubscribe(ch chan Snapshot) {
	s.subMu.Lock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.subMu.Unlock()
}

// notify fans the current snapshot out to subscribers without blocking.
func (s *State) notify() {
	snapshot := s.Snapshot()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
