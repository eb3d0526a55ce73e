package media

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/app/playback"
)

// Player is a headless playback primitive. Position advances with the wall
// clock while playing and once the duration is known. Nothing is decoded or
// sent to an audio device.
type Player struct {
	mu sync.Mutex

	prober   Prober
	interval time.Duration
	notify   func(playback.Notification)

	generation    uint64
	locator       string
	playing       bool
	ended         bool
	position      float64
	duration      float64
	durationKnown bool
	probeCancel   context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPlayer creates a player that reports position every interval.
func NewPlayer(prober Prober, interval time.Duration) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		prober:   prober,
		interval: interval,
		notify:   func(playback.Notification) {},
		ctx:      ctx,
		cancel:   cancel,
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// SetNotify installs the notification callback.
func (p *Player) SetNotify(fn func(playback.Notification)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notify = fn
}

// Load binds a new resource. Duration resolution happens in the background.
func (p *Player) Load(locator string, generation uint64) {
	p.mu.Lock()
	if p.probeCancel != nil {
		p.probeCancel()
	}
	probeCtx, probeCancel := context.WithCancel(p.ctx)
	p.probeCancel = probeCancel
	p.generation = generation
	p.locator = locator
	p.playing = false
	p.ended = false
	p.position = 0
	p.duration = 0
	p.durationKnown = false
	p.mu.Unlock()

	p.wg.Add(1)
	go p.probe(probeCtx, locator, generation)
}

func (p *Player) probe(ctx context.Context, locator string, generation uint64) {
	defer p.wg.Done()

	seconds, err := p.prober.Probe(ctx, locator)

	p.mu.Lock()
	if ctx.Err() != nil || generation != p.generation {
		p.mu.Unlock()
		return
	}
	notify := p.notify
	if err != nil {
		p.mu.Unlock()
		zlog.Warn().Msgf("media: probe failed: gen=%d locator=%s error=%v", generation, locator, err)
		notify(playback.Notification{Generation: generation, Kind: playback.NotifyError, Err: err})
		return
	}
	p.duration = seconds
	p.durationKnown = true
	if p.position > seconds {
		p.position = seconds
	}
	p.mu.Unlock()

	zlog.Debug().Msgf("media: duration resolved: gen=%d duration=%.2f", generation, seconds)
	notify(playback.Notification{Generation: generation, Kind: playback.NotifyDuration, Duration: seconds})
}

// Play starts or resumes the clock. Playing an ended resource restarts it.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		p.position = 0
		p.ended = false
	}
	p.playing = true
}

// Pause stops the clock.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// SetPosition moves the clock, clamped to the known duration.
func (p *Player) SetPosition(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if p.durationKnown && seconds > p.duration {
		seconds = p.duration
	}
	p.position = seconds
	p.ended = false
}

// Close stops the clock and waits for background work.
func (p *Player) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *Player) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-p.ctx.Done():
			return
		case now := <-ticker.C:
			p.advance(now.Sub(last).Seconds())
			last = now
		}
	}
}

// advance moves the clock forward and reports position, then completion once
// the end is reached.
func (p *Player) advance(elapsed float64) {
	p.mu.Lock()
	if !p.playing || !p.durationKnown || elapsed <= 0 {
		p.mu.Unlock()
		return
	}
	gen := p.generation
	notify := p.notify
	p.position += elapsed
	ended := false
	if p.position >= p.duration {
		p.position = p.duration
		p.playing = false
		p.ended = true
		ended = true
	}
	position := p.position
	p.mu.Unlock()

	notify(playback.Notification{Generation: gen, Kind: playback.NotifyPosition, Position: position})
	if ended {
		notify(playback.Notification{Generation: gen, Kind: playback.NotifyEnded})
	}
}
