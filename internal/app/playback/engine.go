package playback

import (
	"context"
	"math"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/domain/track"
)

const eventBufferSize = 32

// Engine wraps a single media primitive and owns position, duration and play
// state. Every Load starts a new generation; primitive notifications tagged
// with an older generation are discarded.
type Engine struct {
	mu sync.RWMutex

	primitive Primitive
	resolver  Resolver

	generation    uint64
	current       *track.Track
	state         State
	position      float64
	duration      float64
	durationKnown bool

	scrubbing     bool
	scrubFraction float64

	eventCh chan Event
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewEngine creates an engine bound to the given primitive.
func NewEngine(primitive Primitive, resolver Resolver) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		primitive: primitive,
		resolver:  resolver,
		state:     StateStopped,
		eventCh:   make(chan Event, eventBufferSize),
		ctx:       ctx,
		cancel:    cancel,
	}
	primitive.SetNotify(e.handleNotification)
	return e
}

// Events returns the event channel.
func (e *Engine) Events() <-chan Event {
	return e.eventCh
}

// Load binds the primitive to the track's resource. Position resets to 0 and
// the duration becomes unknown until the primitive reports it. With autoplay
// false the track is loaded paused.
func (e *Engine) Load(t *track.Track, autoplay bool) uint64 {
	if t == nil {
		return e.Generation()
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.current = t
	e.position = 0
	e.duration = 0
	e.durationKnown = false
	e.scrubbing = false
	e.scrubFraction = 0
	if autoplay {
		e.state = StatePlaying
	} else {
		e.state = StatePaused
	}
	locator := e.resolver.Resolve(t.ID)
	loaded := e.eventLocked(EventTrackLoaded)
	e.mu.Unlock()

	zlog.Debug().Msgf("playback: load: gen=%d track=%s autoplay=%v locator=%s", gen, t.ID, autoplay, locator)

	e.primitive.Load(locator, gen)
	if autoplay {
		e.primitive.Play()
	}
	e.emit(loaded, false)
	return gen
}

// Play starts playback. No-op if already playing or nothing is loaded.
func (e *Engine) Play() {
	e.setPlaying(func(State) bool { return true })
}

// Pause pauses playback. No-op if already paused or nothing is loaded.
func (e *Engine) Pause() {
	e.setPlaying(func(State) bool { return false })
}

// Toggle flips between playing and paused.
func (e *Engine) Toggle() {
	e.setPlaying(func(s State) bool { return s != StatePlaying })
}

// setPlaying decides the target from the current state and applies it under
// the same lock.
func (e *Engine) setPlaying(decide func(State) bool) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		zlog.Debug().Msg("playback: play/pause ignored: no track loaded")
		return
	}
	playing := decide(e.state)
	target := StatePaused
	if playing {
		target = StatePlaying
	}
	if e.state == target {
		e.mu.Unlock()
		return
	}
	e.state = target
	ev := e.eventLocked(EventStateChanged)
	e.mu.Unlock()

	if playing {
		e.primitive.Play()
	} else {
		e.primitive.Pause()
	}
	e.emit(ev, false)
}

// Seek moves to fraction of the duration. The request is dropped while the
// duration is unknown.
func (e *Engine) Seek(fraction float64) {
	e.mu.Lock()
	pos, ok := e.seekLocked(fraction)
	if !ok {
		e.mu.Unlock()
		return
	}
	ev := e.eventLocked(EventPositionUpdated)
	e.mu.Unlock()

	e.primitive.SetPosition(pos)
	e.emit(ev, false)
}

func (e *Engine) seekLocked(fraction float64) (float64, bool) {
	if e.current == nil || !e.durationKnown || math.IsNaN(fraction) {
		zlog.Debug().Msgf("playback: seek dropped: fraction=%v duration_known=%v", fraction, e.durationKnown)
		return 0, false
	}
	pos := clampFraction(fraction) * e.duration
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return 0, false
	}
	e.position = pos
	return pos, true
}

// BeginScrub starts a seek gesture at fraction.
func (e *Engine) BeginScrub(fraction float64) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return
	}
	e.scrubbing = true
	e.scrubFraction = clampFraction(fraction)
	e.mu.Unlock()
	e.Seek(fraction)
}

// MoveScrub updates an active seek gesture. Ignored if no gesture is active.
func (e *Engine) MoveScrub(fraction float64) {
	e.mu.Lock()
	if !e.scrubbing {
		e.mu.Unlock()
		return
	}
	e.scrubFraction = clampFraction(fraction)
	e.mu.Unlock()
	e.Seek(fraction)
}

// EndScrub finishes the seek gesture.
func (e *Engine) EndScrub() {
	e.mu.Lock()
	e.scrubbing = false
	e.mu.Unlock()
}

// Generation returns the generation of the current binding.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// IsCurrent reports whether gen is the current binding.
func (e *Engine) IsCurrent(gen uint64) bool {
	return e.Generation() == gen
}

// Current returns the bound track.
func (e *Engine) Current() (*track.Track, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current, e.current != nil
}

// Snapshot returns a copy of the engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Snapshot{
		State:         e.state,
		Position:      e.position,
		Duration:      e.duration,
		DurationKnown: e.durationKnown,
		Scrubbing:     e.scrubbing,
		Generation:    e.generation,
	}
	if e.current != nil {
		s.TrackID = e.current.ID
		s.DisplayName = e.current.Name
	}
	switch {
	case e.scrubbing:
		s.Progress = e.scrubFraction
	case e.durationKnown && e.duration > 0:
		s.Progress = clampFraction(e.position / e.duration)
	}
	return s
}

// Done is closed once the engine is closed.
func (e *Engine) Done() <-chan struct{} {
	return e.ctx.Done()
}

// Close releases the primitive. Pending deliveries are abandoned.
func (e *Engine) Close() {
	e.cancel()
	e.primitive.Close()
}

// handleNotification applies a primitive notification if it belongs to the
// current binding.
func (e *Engine) handleNotification(n Notification) {
	e.mu.Lock()
	if n.Generation != e.generation || e.current == nil {
		e.mu.Unlock()
		zlog.Debug().Msgf("playback: stale notification dropped: gen=%d kind=%d", n.Generation, n.Kind)
		return
	}

	var ev Event
	deliver := true
	switch n.Kind {
	case NotifyPosition:
		if math.IsNaN(n.Position) || n.Position < 0 {
			e.mu.Unlock()
			return
		}
		e.position = n.Position
		ev = e.eventLocked(EventPositionUpdated)
		deliver = false
	case NotifyDuration:
		if math.IsNaN(n.Duration) || math.IsInf(n.Duration, 0) || n.Duration < 0 {
			e.mu.Unlock()
			return
		}
		e.duration = n.Duration
		e.durationKnown = true
		ev = e.eventLocked(EventDurationResolved)
	case NotifyEnded:
		if e.durationKnown {
			e.position = e.duration
		}
		e.state = StatePaused
		ev = e.eventLocked(EventCompleted)
	case NotifyError:
		ev = e.eventLocked(EventError)
		ev.Err = n.Err
	default:
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	e.emit(ev, deliver)
}

// eventLocked builds an event from the current state.
// Must be called with lock held.
func (e *Engine) eventLocked(t EventType) Event {
	return Event{
		Type:       t,
		Generation: e.generation,
		Track:      e.current,
		State:      e.state,
		Position:   e.position,
		Duration:   e.duration,
	}
}

// emit sends an event. With deliver set it waits for the consumer, otherwise
// the event is dropped when the channel is full. Callers of operations never
// wait; only primitive notifications do.
// Must be called without lock held.
func (e *Engine) emit(ev Event, deliver bool) {
	if e.ctx.Err() != nil {
		return
	}
	if !deliver {
		select {
		case e.eventCh <- ev:
		default:
		}
		return
	}
	select {
	case e.eventCh <- ev:
	case <-e.ctx.Done():
	}
}
