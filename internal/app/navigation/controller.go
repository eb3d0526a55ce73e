package navigation

import (
	"math/rand/v2"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/domain/track"
)

// Loader binds a track to the playback engine.
type Loader interface {
	Load(t *track.Track, autoplay bool) uint64
}

// Rand draws random indices. Tests inject a deterministic source.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Options configures a Controller.
type Options struct {
	HistoryLimit int
	Shuffle      bool
	Rand         Rand
}

// Controller owns the current index, the shuffle flag and the shuffle history.
// Every navigation loads the resulting track with autoplay.
type Controller struct {
	mu sync.Mutex

	catalog *catalog.Catalog
	loader  Loader
	rng     Rand

	index   int
	shuffle bool
	history *History
}

// NewController creates a navigation controller over c.
func NewController(c *catalog.Catalog, loader Loader, opts Options) *Controller {
	rng := opts.Rand
	if rng == nil {
		rng = globalRand{}
	}
	return &Controller{
		catalog: c,
		loader:  loader,
		rng:     rng,
		shuffle: opts.Shuffle,
		history: NewHistory(opts.HistoryLimit),
	}
}

// Start binds the first track. With autoplay false the track is loaded paused.
func (c *Controller) Start(autoplay bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalog.IsEmpty() {
		zlog.Warn().Msg("navigation: catalog is empty, session inactive")
		return
	}
	c.index = 0
	c.loadLocked(autoplay)
}

// Select jumps to the track with the given identifier. An unknown identifier
// falls back to index 0. History is not touched.
func (c *Controller) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalog.IsEmpty() {
		return
	}
	idx, ok := c.catalog.IndexOf(id)
	if !ok {
		zlog.Warn().Msgf("navigation: select: track not found, falling back to first: id=%s", id)
		idx = 0
	}
	c.index = idx
	c.loadLocked(true)
}

// Next advances to the next track. Under shuffle the current index is pushed
// onto the history and a random different index is drawn.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextLocked()
}

// OnCompleted handles natural track completion as an implicit Next.
func (c *Controller) OnCompleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextLocked()
}

func (c *Controller) nextLocked() {
	n := c.catalog.Len()
	if n == 0 {
		return
	}
	if c.shuffle {
		c.history.Push(c.index)
		c.index = c.randomIndexLocked(n)
	} else {
		c.index = (c.index + 1) % n
	}
	c.loadLocked(true)
}

// randomIndexLocked draws an index different from the current one.
// Must be called with lock held.
func (c *Controller) randomIndexLocked(n int) int {
	if n <= 1 {
		return 0
	}
	for {
		idx := c.rng.IntN(n)
		if idx != c.index {
			return idx
		}
	}
}

// Previous goes back. Under shuffle with a non-empty history this pops the
// last visited index; otherwise it steps back by position.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.catalog.Len()
	if n == 0 {
		return
	}
	if c.shuffle {
		if idx, ok := c.history.Pop(); ok && idx < n {
			c.index = idx
			c.loadLocked(true)
			return
		}
	}
	c.index = (c.index - 1 + n) % n
	c.loadLocked(true)
}

// ToggleShuffle flips shuffle mode and returns the new value. Enabling shuffle
// starts a fresh history.
func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shuffle = !c.shuffle
	if c.shuffle {
		c.history.Clear()
	}
	zlog.Debug().Msgf("navigation: shuffle=%v", c.shuffle)
	return c.shuffle
}

// loadLocked loads the track at the current index.
// Must be called with lock held.
func (c *Controller) loadLocked(autoplay bool) {
	t := c.catalog.At(c.index)
	if t == nil {
		return
	}
	c.loader.Load(t, autoplay)
}

// Index returns the current index, or -1 if the catalog is empty.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog.IsEmpty() {
		return -1
	}
	return c.index
}

// Shuffle reports whether shuffle mode is on.
func (c *Controller) Shuffle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shuffle
}

// History returns a copy of the shuffle history, bottom first.
func (c *Controller) History() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Items()
}
