// Package session provides the session manager, which owns the single
// playback session and serializes every operation on it.
package session

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/app/navigation"
	"github.com/osa030/19player/internal/app/notification"
	"github.com/osa030/19player/internal/app/playback"
	"github.com/osa030/19player/internal/app/search"
	"github.com/osa030/19player/internal/domain/catalog"
)

var ErrAlreadyStarted = errors.New("session already started")

// Config represents session configuration.
type Config struct {
	AutoplayOnStart bool
	ShuffleOnStart  bool
	HistoryLimit    int
	Rand            navigation.Rand // nil uses the global source
}

// Manager manages the playback session.
type Manager struct {
	mu sync.Mutex

	catalog      *catalog.Catalog
	engine       *playback.Engine
	nav          *navigation.Controller
	notification *notification.Manager
	config       Config

	query   string
	started bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a new session manager over the catalog.
func NewManager(c *catalog.Catalog, engine *playback.Engine, cfg Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		catalog: c,
		engine:  engine,
		nav: navigation.NewController(c, engine, navigation.Options{
			HistoryLimit: cfg.HistoryLimit,
			Shuffle:      cfg.ShuffleOnStart,
			Rand:         cfg.Rand,
		}),
		notification: notification.NewManager(),
		config:       cfg,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// Start runs the event loop and performs the initial selection. The loop
// stops when ctx is cancelled or the manager is closed.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			m.cancel()
		case <-m.ctx.Done():
		}
	}()
	go m.eventLoop()

	if m.catalog.IsEmpty() {
		zlog.Warn().Msg("session: catalog is empty, playback operations are disabled")
	}

	m.mu.Lock()
	m.nav.Start(m.config.AutoplayOnStart)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	zlog.Info().Msgf("session started: tracks=%d autoplay=%v shuffle=%v", m.catalog.Len(), m.config.AutoplayOnStart, snap.Shuffle)
	m.broadcastSnapshot(snap)
	return nil
}

// Done is closed when the event loop has stopped.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Close stops the event loop and releases the engine.
func (m *Manager) Close() {
	m.cancel()
	m.engine.Close()
	m.notification.Close()
}

// GetNotificationManager returns the notification manager.
func (m *Manager) GetNotificationManager() *notification.Manager {
	return m.notification
}

func (m *Manager) eventLoop() {
	defer close(m.done)

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.engine.Done():
			return
		case ev := <-m.engine.Events():
			m.handleEvent(ev)
		}
	}
}

// handleEvent applies an engine event. Events from a superseded binding are
// dropped even if the engine accepted them before the switch.
func (m *Manager) handleEvent(ev playback.Event) {
	m.mu.Lock()
	if !m.engine.IsCurrent(ev.Generation) {
		m.mu.Unlock()
		zlog.Debug().Msgf("session: stale event dropped: type=%s gen=%d", ev.Type, ev.Generation)
		return
	}

	switch ev.Type {
	case playback.EventCompleted:
		zlog.Info().Msgf("session: track completed, advancing: gen=%d", ev.Generation)
		m.nav.OnCompleted()
	case playback.EventError:
		zlog.Warn().Msgf("session: playback error: gen=%d error=%v", ev.Generation, ev.Err)
	case playback.EventTrackLoaded:
		if ev.Track != nil {
			zlog.Info().Msgf("session: track loaded: id=%s state=%s", ev.Track.ID, ev.State)
		}
	}

	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.broadcastSnapshot(snap)
}

// Select jumps to the track with the given identifier.
func (m *Manager) Select(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nav.Select(id)
}

// Next advances to the next track.
func (m *Manager) Next() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nav.Next()
}

// Previous goes back one track.
func (m *Manager) Previous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nav.Previous()
}

// ToggleShuffle flips shuffle mode and returns the new value.
func (m *Manager) ToggleShuffle() bool {
	m.mu.Lock()
	on := m.nav.ToggleShuffle()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.broadcastSnapshot(snap)
	return on
}

// Play resumes playback.
func (m *Manager) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.Play()
}

// Pause pauses playback.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.Pause()
}

// Toggle flips between playing and paused.
func (m *Manager) Toggle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.Toggle()
}

// Seek moves to a fraction of the current track.
func (m *Manager) Seek(fraction float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.Seek(fraction)
}

// BeginScrub starts a seek gesture.
func (m *Manager) BeginScrub(fraction float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.BeginScrub(fraction)
}

// MoveScrub updates the seek gesture.
func (m *Manager) MoveScrub(fraction float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.MoveScrub(fraction)
}

// EndScrub finishes the seek gesture.
func (m *Manager) EndScrub() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.EndScrub()
}

// Search ranks the catalog against query and publishes the result as the
// current list. Playback state is not touched.
func (m *Manager) Search(query string) *notification.List {
	m.mu.Lock()
	m.query = query
	list := m.listLocked()
	m.mu.Unlock()

	zlog.Debug().Msgf("session: search: query=%q results=%d", query, len(list.Entries))
	m.notification.Broadcast(&notification.Notification{Kind: notification.KindList, List: list})
	return list
}

// List returns the list for the current query.
func (m *Manager) List() *notification.List {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked()
}

// Tracks returns the whole catalog in order.
func (m *Manager) Tracks() []search.Entry {
	return search.Entries(m.catalog, "")
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() *notification.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers a render sink and sends it the current snapshot and
// list. Returns the subscription ID.
func (m *Manager) Subscribe(stream notification.Stream) (string, error) {
	id := m.notification.Subscribe(stream)

	m.mu.Lock()
	snap := m.snapshotLocked()
	list := m.listLocked()
	m.mu.Unlock()

	if err := m.notification.Send(id, &notification.Notification{Kind: notification.KindSnapshot, Snapshot: snap}); err != nil {
		m.notification.Unsubscribe(id)
		return "", errors.Wrap(err, "failed to send initial snapshot")
	}
	if err := m.notification.Send(id, &notification.Notification{Kind: notification.KindList, List: list}); err != nil {
		m.notification.Unsubscribe(id)
		return "", errors.Wrap(err, "failed to send initial list")
	}
	return id, nil
}

// Unsubscribe removes a render sink.
func (m *Manager) Unsubscribe(id string) {
	m.notification.Unsubscribe(id)
}

// snapshotLocked builds the session view.
// Must be called with lock held.
func (m *Manager) snapshotLocked() *notification.Snapshot {
	return &notification.Snapshot{
		Playback: m.engine.Snapshot(),
		Index:    m.nav.Index(),
		Shuffle:  m.nav.Shuffle(),
		Count:    m.catalog.Len(),
	}
}

// listLocked ranks the catalog for the current query.
// Must be called with lock held.
func (m *Manager) listLocked() *notification.List {
	return &notification.List{
		Query:   m.query,
		Entries: search.Entries(m.catalog, m.query),
	}
}

func (m *Manager) broadcastSnapshot(snap *notification.Snapshot) {
	m.notification.Broadcast(&notification.Notification{
		Kind:     notification.KindSnapshot,
		Snapshot: snap,
	})
}
