package events

import (
	"context"
	"sync"
)

// TopicDataUpdate signals that persisted marketplace state changed and
// subscribers should reload it from the store.
const TopicDataUpdate = "data_update"

// Handler receives the topic a signal was published on. Signals carry no payload.
type Handler func(topic string)

// Bus is a publish/subscribe channel for change signals.
type Bus interface {
	Publish(ctx context.Context, topic string) error
	// Subscribe registers handler for topic and returns a function that removes it.
	Subscribe(topic string, handler Handler) (unsubscribe func())
}

type subscription struct {
	id      uint64
	handler Handler
}

// registry is the subscriber bookkeeping shared by the bus implementations.
type registry struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

func (r *registry) add(topic string, handler Handler) func() {
	r.mu.Lock()
	if r.subs == nil {
		r.subs = make(map[string][]subscription)
	}
	r.nextID++
	id := r.nextID
	r.subs[topic] = append(r.subs[topic], subscription{id: id, handler: handler})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			subs := r.subs[topic]
			for i, s := range subs {
				if s.id == id {
					r.subs[topic] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
		})
	}
}

// dispatch calls every handler for topic outside the lock, so handlers may
// subscribe, unsubscribe or publish again.
func (r *registry) dispatch(topic string) {
	r.mu.RLock()
	subs := append([]subscription(nil), r.subs[topic]...)
	r.mu.RUnlock()

	for _, s := range subs {
		s.handler(topic)
	}
}

// LocalBus delivers signals synchronously to subscribers in the same process.
type LocalBus struct {
	registry
}

// NewLocalBus creates an in-process bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{}
}

func (b *LocalBus) Publish(_ context.Context, topic string) error {
	b.dispatch(topic)
	return nil
}

func (b *LocalBus) Subscribe(topic string, handler Handler) func() {
	return b.add(topic, handler)
}
