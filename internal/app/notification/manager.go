// Package notification fans session updates out to render sinks.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

const (
	sendTimeout = 500 * time.Millisecond
	// maxFailures is the number of consecutive failed or timed out sends
	// after which a subscriber is dropped.
	maxFailures = 3
)

// Stream represents a notification stream for a render sink.
type Stream interface {
	Send(*Notification) error
}

type subscription struct {
	id       string
	stream   Stream
	kinds    map[Kind]struct{} // nil accepts every kind
	failures int
}

func (s *subscription) accepts(k Kind) bool {
	if s.kinds == nil {
		return true
	}
	_, ok := s.kinds[k]
	return ok
}

// Manager manages render sink subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	maxFailures   int
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
		maxFailures:   maxFailures,
	}
}

// Subscribe adds a render sink and returns the subscription ID. With kinds
// given, only notifications of those kinds are broadcast to it.
func (m *Manager) Subscribe(stream Stream, kinds ...Kind) string {
	sub := &subscription{
		id:     uuid.New().String(),
		stream: stream,
	}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = struct{}{}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[sub.id] = sub
	zlog.Debug().Msgf("notification: subscribed: id=%s total=%d", sub.id, len(m.subscriptions))
	return sub.id
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// Broadcast stamps the notification with the next sequence number and sends
// it to every subscriber accepting its kind. Sends run in parallel; a
// subscriber that fails or misses the send timeout too many times in a row
// is dropped.
func (m *Manager) Broadcast(notification *Notification) {
	notification.SequenceNo = m.NextSequenceNo()

	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		if sub.accepts(notification.Kind) {
			subs = append(subs, sub)
		}
	}
	m.mu.RUnlock()

	results := make([]bool, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, s *subscription) {
			defer wg.Done()
			results[i] = m.send(s, notification)
		}(i, sub)
	}
	wg.Wait()

	m.record(subs, results)
}

// send delivers to one subscriber within the send timeout.
func (m *Manager) send(s *subscription, notification *Notification) bool {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.stream.Send(notification)
	}()

	select {
	case err := <-done:
		if err != nil {
			zlog.Debug().Msgf("notification: send failed: id=%s seq=%d error=%v", s.id, notification.SequenceNo, err)
			return false
		}
		return true
	case <-ctx.Done():
		zlog.Debug().Msgf("notification: send timed out: id=%s seq=%d", s.id, notification.SequenceNo)
		return false
	}
}

// record updates failure counters and drops subscribers over the limit.
func (m *Manager) record(subs []*subscription, results []bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range subs {
		if results[i] {
			s.failures = 0
			continue
		}
		s.failures++
		if s.failures >= m.maxFailures {
			if _, ok := m.subscriptions[s.id]; ok {
				delete(m.subscriptions, s.id)
				zlog.Warn().Msgf("notification: subscriber dropped after %d failed sends: id=%s", s.failures, s.id)
			}
		}
	}
}

// Send sends a notification to a specific subscriber, regardless of its kind
// filter. Unknown IDs are ignored.
func (m *Manager) Send(subscriptionID string, notification *Notification) error {
	m.mu.RLock()
	sub, ok := m.subscriptions[subscriptionID]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	return sub.stream.Send(notification)
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
