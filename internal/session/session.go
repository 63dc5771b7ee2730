// Package session implements the per-session virtual-clock replay engine:
// a mutable state machine over an immutable catalogue, with a serialized
// control surface and a single outbound event stream per session.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mdreplay/engine/internal/catalogue"
	"github.com/mdreplay/engine/internal/metrics"
	"github.com/mdreplay/engine/internal/session/lifecycle"
	"github.com/mdreplay/engine/internal/session/model"
)

// Clock abstracts the wall-clock reads behind lastAccessMillis (eviction
// timing) so tests can substitute a fake; the scheduler's tick uses a
// time.Ticker and does not read it. Production code uses realClock.
type Clock interface {
	NowMillis() int64
}

type realClock struct{}

func (realClock) NowMillis() int64 { return time.Now().UnixMilli() }

// Session owns a virtual simulation clock, a cursor into the shared
// catalogue, and the outbound channel a subscriber drains. All fields
// below mu are only ever touched while mu is held.
type Session struct {
	id  string
	cat *catalogue.Catalogue

	mu               sync.Mutex
	state            model.SessionState
	replaySpeed      float64
	simClockMillis   int64
	cursor           int
	lastAccessMillis int64

	outbound     chan catalogue.Event
	outboundOnce sync.Once
	subscribed   bool

	clock     Clock
	scheduler *scheduler
}

// Config carries the tunables a new session is constructed with.
type Config struct {
	OutboundCapacity  int
	PublishTickMillis int64
}

// New allocates a CREATED session over cat with a fresh UUID identifier.
func New(cat *catalogue.Catalogue, cfg Config, clock Clock) *Session {
	if clock == nil {
		clock = realClock{}
	}
	if cfg.OutboundCapacity <= 0 {
		cfg.OutboundCapacity = 1024
	}
	s := &Session{
		id:               uuid.NewString(),
		cat:              cat,
		state:            model.StateCreated,
		replaySpeed:      1.0,
		simClockMillis:   cat.FirstTimestamp(),
		cursor:           0,
		lastAccessMillis: clock.NowMillis(),
		outbound:         make(chan catalogue.Event, cfg.OutboundCapacity),
		clock:            clock,
	}
	s.scheduler = newScheduler(s, cfg.PublishTickMillis)
	return s
}

func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state under lock.
func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) LastAccessMillis() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessMillis
}

func (s *Session) touch() { s.lastAccessMillis = s.clock.NowMillis() }

func (s *Session) terminalErr() error {
	if s.state.IsTerminal() {
		return &model.TerminalSessionError{SessionID: s.id, State: s.state}
	}
	return nil
}

func recordOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ControlOpsTotal.WithLabelValues(op, outcome).Inc()
}

// Start transitions CREATED/STOPPED -> RUNNING and activates the scheduler.
// Idempotent when already RUNNING.
func (s *Session) Start() (status string, err error) {
	defer func() { recordOp("start", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.terminalErr(); err != nil {
		return "", err
	}
	if _, ok := lifecycle.TransitionFor(s.state, lifecycle.EvStart); !ok {
		return "", &model.TerminalSessionError{SessionID: s.id, State: s.state}
	}
	wasRunning := s.state == model.StateRunning
	s.state = model.StateRunning
	if !wasRunning {
		s.scheduler.activate()
	}
	return "RUNNING", nil
}

// Stop transitions CREATED/RUNNING/STOPPED -> STOPPED and deactivates the
// scheduler. The in-flight tick, if any, is allowed to finish: deactivate
// only prevents the *next* tick from firing.
func (s *Session) Stop() (status string, err error) {
	defer func() { recordOp("stop", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.terminalErr(); err != nil {
		return "", err
	}
	if _, ok := lifecycle.TransitionFor(s.state, lifecycle.EvStop); !ok {
		return "", &model.TerminalSessionError{SessionID: s.id, State: s.state}
	}
	s.state = model.StateStopped
	s.scheduler.deactivate()
	return "STOPPED", nil
}

// Rewind resets cursor and simClockMillis to the start of the catalogue.
// Does not change state or replaySpeed.
func (s *Session) Rewind() (status string, err error) {
	defer func() { recordOp("rewind", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.terminalErr(); err != nil {
		return "", err
	}
	s.cursor = 0
	s.simClockMillis = s.cat.FirstTimestamp()
	return "REWOUND", nil
}

// SetSpeed sets replaySpeed, effective on the next tick.
func (s *Session) SetSpeed(speed float64) (status string, err error) {
	defer func() { recordOp("setSpeed", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if speed <= 0 {
		return "", &model.InvalidArgumentError{Field: "speed", Reason: "must be > 0"}
	}
	if err := s.terminalErr(); err != nil {
		return "", err
	}
	s.replaySpeed = speed
	return "SPEED_SET", nil
}

// Forward advances the cursor by n events without emitting them, completing
// the session if it reaches the end of the catalogue.
func (s *Session) Forward(n int) (status string, err error) {
	defer func() { recordOp("forward", err) }()
	s.mu.Lock()
	s.touch()

	if n <= 0 {
		s.mu.Unlock()
		return "", &model.InvalidArgumentError{Field: "n", Reason: "must be > 0"}
	}
	if terr := s.terminalErr(); terr != nil {
		s.mu.Unlock()
		return "", terr
	}

	n2 := s.cat.Size()
	next := s.cursor + n
	if next > n2 {
		next = n2
	}
	s.cursor = next
	if s.cursor > 0 {
		if ts := s.cat.At(s.cursor - 1).TimestampMillis; ts > s.simClockMillis {
			s.simClockMillis = ts
		}
	}
	var done <-chan struct{}
	completed := s.cursor == n2
	if completed {
		done = s.completeLocked()
	}
	s.mu.Unlock()

	if completed {
		s.awaitOutboundClose(done)
		return "COMPLETED", nil
	}
	return "FORWARDED", nil
}

// JumpTo sets the cursor directly to eventID's index, skipping all events
// strictly between the old and new cursor without emitting them.
func (s *Session) JumpTo(eventID int64) (status string, err error) {
	defer func() { recordOp("jumpTo", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.terminalErr(); err != nil {
		return "", err
	}
	idx, ok := s.cat.IndexByID(eventID)
	if !ok {
		return "", &model.UnknownEventError{EventID: eventID}
	}
	s.cursor = idx
	s.simClockMillis = s.cat.At(idx).TimestampMillis
	return "JUMPED", nil
}

// Subscribe returns the session's outbound event channel. Only one
// subscriber may be attached at a time; a COMPLETED session returns its
// (already-closed) channel rather than erroring.
func (s *Session) Subscribe() (<-chan catalogue.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.state == model.StateEvicted {
		return nil, &model.TerminalSessionError{SessionID: s.id, State: s.state}
	}
	if s.state == model.StateCompleted {
		return s.outbound, nil
	}
	if s.subscribed {
		return nil, &model.AlreadySubscribedError{SessionID: s.id}
	}
	// Discard events queued while no subscriber was attached: a new
	// subscriber only sees events published after it attached.
	for drained := false; !drained; {
		select {
		case <-s.outbound:
		default:
			drained = true
		}
	}
	s.subscribed = true
	return s.outbound, nil
}

// Unsubscribe releases the subscription slot without affecting session
// state, called by the transport layer on client disconnect.
func (s *Session) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = false
}

// completeLocked transitions to COMPLETED and requests the scheduler stop.
// Caller must hold mu. It deliberately does not touch outbound: when called
// from the scheduler's own tick goroutine (the catalogue ran out), that
// goroutine's run loop closes outbound itself on the way out; when called
// from a control op that completed the session directly (Forward reaching
// the end), the caller is responsible for awaiting the returned channel via
// awaitOutboundClose after releasing mu, so the close can never race an
// in-flight send on another goroutine.
func (s *Session) completeLocked() <-chan struct{} {
	s.state = model.StateCompleted
	done := s.scheduler.deactivate()
	metrics.SessionsCompletedTotal.Inc()
	return done
}

// awaitOutboundClose waits for an active scheduler goroutine to fully exit
// (done is nil if the scheduler was never activated, in which case nothing
// else could be sending) before closing outbound. Must be called without mu
// held. Safe to call from multiple terminal transitions: the channel is
// closed exactly once.
func (s *Session) awaitOutboundClose(done <-chan struct{}) {
	if done != nil {
		<-done
	}
	s.outboundOnce.Do(func() { close(s.outbound) })
}

// Evict forces a transition to EVICTED from any non-evicted state, stopping
// the scheduler and closing outbound. Called only by the registry sweep.
// Never blocks on a subscriber: it only waits for the scheduler's own
// goroutine to notice the stop signal and exit, which is bounded by at most
// one in-flight event send selecting against that same signal.
func (s *Session) Evict() {
	s.mu.Lock()
	if s.state == model.StateEvicted {
		s.mu.Unlock()
		return
	}
	s.state = model.StateEvicted
	done := s.scheduler.deactivate()
	s.mu.Unlock()

	s.awaitOutboundClose(done)
}
