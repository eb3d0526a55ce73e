package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	mu       sync.Mutex
	received []*Notification
	err      error
	block    chan struct{}
}

func (f *fakeStream) Send(n *Notification) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, n)
	return f.err
}

func (f *fakeStream) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func TestManager_SubscribeUnsubscribe(t *testing.T) {
	m := NewManager()

	id1 := m.Subscribe(&fakeStream{})
	id2 := m.Subscribe(&fakeStream{})

	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, m.SubscriberCount())

	m.Unsubscribe(id1)
	assert.Equal(t, 1, m.SubscriberCount())

	m.Close()
	assert.Equal(t, 0, m.SubscriberCount())
}

func TestManager_BroadcastSequence(t *testing.T) {
	m := NewManager()
	a := &fakeStream{}
	b := &fakeStream{err: errors.New("gone")}
	m.Subscribe(a)
	m.Subscribe(b)

	m.Broadcast(&Notification{Kind: KindSnapshot, Snapshot: &Snapshot{Index: 0}})
	m.Broadcast(&Notification{Kind: KindList, List: &List{Query: "pia"}})

	require.Equal(t, 2, a.count())
	assert.Equal(t, uint64(1), a.received[0].SequenceNo)
	assert.Equal(t, uint64(2), a.received[1].SequenceNo)
	assert.Equal(t, KindList, a.received[1].Kind)
	assert.Equal(t, "pia", a.received[1].List.Query)
	assert.Equal(t, 2, b.count(), "a failing stream does not stop delivery")
}

func TestManager_BroadcastSkipsSlowSubscriber(t *testing.T) {
	m := NewManager()
	slow := &fakeStream{block: make(chan struct{})}
	fast := &fakeStream{}
	m.Subscribe(slow)
	m.Subscribe(fast)
	defer close(slow.block)

	start := time.Now()
	m.Broadcast(&Notification{Kind: KindSnapshot})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, fast.count())
}

func TestManager_BroadcastKindFilter(t *testing.T) {
	m := NewManager()
	all := &fakeStream{}
	lists := &fakeStream{}
	m.Subscribe(all)
	m.Subscribe(lists, KindList)

	m.Broadcast(&Notification{Kind: KindSnapshot})
	m.Broadcast(&Notification{Kind: KindList})

	assert.Equal(t, 2, all.count())
	require.Equal(t, 1, lists.count())
	assert.Equal(t, KindList, lists.received[0].Kind)
	assert.Equal(t, uint64(2), lists.received[0].SequenceNo)
}

func TestManager_DropsFailingSubscriber(t *testing.T) {
	m := NewManager()
	ok := &fakeStream{}
	failing := &fakeStream{err: errors.New("broken pipe")}
	m.Subscribe(ok)
	m.Subscribe(failing)

	for i := 0; i < maxFailures-1; i++ {
		m.Broadcast(&Notification{Kind: KindSnapshot})
	}
	assert.Equal(t, 2, m.SubscriberCount())

	m.Broadcast(&Notification{Kind: KindSnapshot})
	assert.Equal(t, 1, m.SubscriberCount())

	m.Broadcast(&Notification{Kind: KindSnapshot})
	assert.Equal(t, maxFailures, failing.count())
	assert.Equal(t, maxFailures+1, ok.count())
}

func TestManager_SuccessResetsFailures(t *testing.T) {
	m := NewManager()
	s := &fakeStream{err: errors.New("flaky")}
	m.Subscribe(s)

	for i := 0; i < maxFailures-1; i++ {
		m.Broadcast(&Notification{Kind: KindSnapshot})
	}
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
	m.Broadcast(&Notification{Kind: KindSnapshot})

	s.mu.Lock()
	s.err = errors.New("flaky")
	s.mu.Unlock()
	for i := 0; i < maxFailures-1; i++ {
		m.Broadcast(&Notification{Kind: KindSnapshot})
	}

	assert.Equal(t, 1, m.SubscriberCount())
}

func TestManager_Send(t *testing.T) {
	m := NewManager()
	s := &fakeStream{}
	id := m.Subscribe(s)

	require.NoError(t, m.Send(id, &Notification{Kind: KindSnapshot}))
	require.NoError(t, m.Send("unknown", &Notification{Kind: KindSnapshot}))

	assert.Equal(t, 1, s.count())
	assert.Equal(t, uint64(0), s.received[0].SequenceNo)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "snapshot", KindSnapshot.String())
	assert.Equal(t, "list", KindList.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
