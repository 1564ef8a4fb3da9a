package sqlengine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MrZLO/storio/storio"
)

const defaultChangeBufferSize = 64

// ChangeBus is the in-process change notifier owned by a Store. Writes
// publish a storio.Change to the bus; each subscription receives only the
// changes whose affected tables intersect its observed tables, in
// publication order.
type ChangeBus struct {
	mu            sync.RWMutex
	subscriptions map[uuid.UUID]*busSubscription
	bufferSize    int
}

// NewChangeBus creates a ChangeBus whose subscriptions buffer up to
// bufferSize pending changes each.
func NewChangeBus(bufferSize int) (*ChangeBus, error) {
	if bufferSize <= 0 {
		return nil, storio.ErrInvalidChangeBufferSize
	}

	return &ChangeBus{
		subscriptions: make(map[uuid.UUID]*busSubscription),
		bufferSize:    bufferSize,
	}, nil
}

// ObserveChanges creates a subscription for changes affecting any of the
// given tables. Callers must Unsubscribe when done, otherwise the
// subscription leaks.
func (b *ChangeBus) ObserveChanges(tables []storio.TableNameString) (storio.ChangeSubscription, error) {
	if len(tables) == 0 {
		return nil, storio.ErrNoObservedTables
	}

	subscription := &busSubscription{
		id:      uuid.New(),
		tables:  tables,
		changes: make(chan storio.Change, b.bufferSize),
		done:    make(chan struct{}),
		bus:     b,
	}

	b.mu.Lock()
	b.subscriptions[subscription.id] = subscription
	b.mu.Unlock()

	return subscription, nil
}

// Publish delivers the change to every subscription whose observed tables it
// affects. Delivery to a subscription that is unsubscribing is abandoned
// instead of blocking the publisher.
func (b *ChangeBus) Publish(change storio.Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, subscription := range b.subscriptions {
		if !change.Affects(subscription.tables) {
			continue
		}

		select {
		case subscription.changes <- change:
		case <-subscription.done:
		}
	}
}

// SubscriptionCount returns the number of live subscriptions.
func (b *ChangeBus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscriptions)
}

func (b *ChangeBus) remove(id uuid.UUID) {
	b.mu.Lock()
	delete(b.subscriptions, id)
	b.mu.Unlock()
}

/***** busSubscription *****/

type busSubscription struct {
	id          uuid.UUID
	tables      []storio.TableNameString
	changes     chan storio.Change
	done        chan struct{}
	bus         *ChangeBus
	unsubscribe sync.Once
}

func (s *busSubscription) Changes() <-chan storio.Change {
	return s.changes
}

// Unsubscribe removes the subscription from the bus and closes the changes
// channel. It is idempotent; the release happens exactly once.
func (s *busSubscription) Unsubscribe() {
	s.unsubscribe.Do(func() {
		close(s.done)

		// Removing under the write lock waits out in-flight publishers, so
		// closing the channel afterwards cannot race a send.
		s.bus.remove(s.id)
		close(s.changes)
	})
}
