package session

import (
	"math"
	"time"

	"github.com/mdreplay/engine/internal/catalogue"
	"github.com/mdreplay/engine/internal/metrics"
	"github.com/mdreplay/engine/internal/session/model"
)

// scheduler drives the periodic publication tick for one session. It is
// only ever started (activate) and stopped (deactivate) while the owning
// session's mutex is held. tick() itself only holds s.mu long enough to
// advance the simulation clock and decide which events are due; the
// (potentially blocking, backpressure-bound) channel sends happen with the
// lock released, selecting against stopCh so a stalled subscriber can never
// wedge the session's own mutex.
type scheduler struct {
	s          *Session
	tickMillis int64

	stopCh chan struct{}
	doneCh chan struct{}
}

func newScheduler(s *Session, tickMillis int64) *scheduler {
	if tickMillis <= 0 {
		tickMillis = 1
	}
	return &scheduler{s: s, tickMillis: tickMillis}
}

// activate starts the tick goroutine. Caller must hold s.mu.
func (sc *scheduler) activate() {
	sc.stopCh = make(chan struct{})
	sc.doneCh = make(chan struct{})
	go sc.run(sc.stopCh, sc.doneCh)
}

// deactivate signals the tick goroutine to stop after its current (or next)
// tick, and returns a channel that closes once that goroutine has fully
// exited (nil if the scheduler was never activated). Caller must hold s.mu;
// deactivate never itself acquires s.mu, so it never deadlocks against a
// caller that already holds it. The returned channel is safe to wait on
// after releasing s.mu.
func (sc *scheduler) deactivate() <-chan struct{} {
	if sc.stopCh == nil {
		return nil
	}
	select {
	case <-sc.stopCh:
	default:
		close(sc.stopCh)
	}
	return sc.doneCh
}

func (sc *scheduler) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	// closeOutboundIfTerminal runs before close(doneCh) (defers execute
	// LIFO), so any goroutine waiting on doneCh after a deactivate() only
	// unblocks once outbound has already been closed if that was called for.
	// This is the only place outbound is ever closed while this goroutine
	// could still be sending on it, so there is no close-vs-send race.
	defer sc.closeOutboundIfTerminal()

	ticker := time.NewTicker(time.Duration(sc.tickMillis) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !sc.tick(stopCh) {
				return
			}
		}
	}
}

func (sc *scheduler) closeOutboundIfTerminal() {
	s := sc.s
	s.mu.Lock()
	terminal := s.state.IsTerminal()
	s.mu.Unlock()
	if terminal {
		s.outboundOnce.Do(func() { close(s.outbound) })
	}
}

// tick runs one publication cycle. Returns false once the session has left
// RUNNING (either because a control op stopped it, or because this tick
// itself completed the catalogue), signaling run to exit.
func (sc *scheduler) tick(stopCh <-chan struct{}) bool {
	start := time.Now()
	defer func() { metrics.SchedulerTickDuration.Observe(time.Since(start).Seconds()) }()

	s := sc.s
	s.mu.Lock()
	if s.state != model.StateRunning {
		s.mu.Unlock()
		return false
	}

	delta := int64(math.Round(s.replaySpeed * float64(sc.tickMillis)))
	if delta < 1 {
		delta = 1
	}
	newSim := s.simClockMillis + delta

	n := s.cat.Size()
	var pending []catalogue.Event
	for s.cursor < n && s.cat.At(s.cursor).TimestampMillis <= newSim {
		pending = append(pending, s.cat.At(s.cursor))
		s.cursor++
	}
	s.simClockMillis = newSim
	completed := s.cursor == n
	s.mu.Unlock()

	// Sent without s.mu held: a subscriber that never drains must never be
	// able to wedge session control ops or registry eviction.
	for _, ev := range pending {
		select {
		case s.outbound <- ev:
			metrics.EventsPublishedTotal.Inc()
		case <-stopCh:
			return false
		}
	}

	if completed {
		s.mu.Lock()
		if s.state == model.StateRunning {
			s.completeLocked()
		}
		s.mu.Unlock()
		return false
	}
	return true
}
