package services

import (
	"sync"

	"lunchmate_server/models"
)

// ProposalChangedEvent is published on every proposal state transition,
// including creation.
type ProposalChangedEvent struct {
	ProposalID string
	GroupKey   string
	Date       string
	Status     string
}

// GroupConfirmedEvent is published exactly once per proposal, by whichever
// acceptor wins the pending->confirmed update.
type GroupConfirmedEvent struct {
	Proposal models.Proposal
}

// CacheInvalidatedEvent announces that suggestions for a date were dropped.
type CacheInvalidatedEvent struct {
	Date string
}

// EventBus is a typed in-process publish/subscribe hub. It replaces ad-hoc
// "something changed, refetch" flags shared across screens: interested
// components subscribe to the transitions they care about.
//
// Publish runs subscribers synchronously on the caller's goroutine, so
// handlers must be quick and must not publish back into the bus.
type EventBus struct {
	mu               sync.RWMutex
	nextID           int
	proposalChanged  map[int]func(ProposalChangedEvent)
	groupConfirmed   map[int]func(GroupConfirmedEvent)
	cacheInvalidated map[int]func(CacheInvalidatedEvent)
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		proposalChanged:  make(map[int]func(ProposalChangedEvent)),
		groupConfirmed:   make(map[int]func(GroupConfirmedEvent)),
		cacheInvalidated: make(map[int]func(CacheInvalidatedEvent)),
	}
}

// SubscribeProposalChanged registers fn and returns an unsubscribe func.
func (b *EventBus) SubscribeProposalChanged(fn func(ProposalChangedEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.proposalChanged[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.proposalChanged, id)
	}
}

// SubscribeGroupConfirmed registers fn and returns an unsubscribe func.
func (b *EventBus) SubscribeGroupConfirmed(fn func(GroupConfirmedEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.groupConfirmed[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.groupConfirmed, id)
	}
}

// SubscribeCacheInvalidated registers fn and returns an unsubscribe func.
func (b *EventBus) SubscribeCacheInvalidated(fn func(CacheInvalidatedEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.cacheInvalidated[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.cacheInvalidated, id)
	}
}

// PublishProposalChanged delivers ev to all current subscribers.
func (b *EventBus) PublishProposalChanged(ev ProposalChangedEvent) {
	b.mu.RLock()
	subs := make([]func(ProposalChangedEvent), 0, len(b.proposalChanged))
	for _, fn := range b.proposalChanged {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// PublishGroupConfirmed delivers ev to all current subscribers.
func (b *EventBus) PublishGroupConfirmed(ev GroupConfirmedEvent) {
	b.mu.RLock()
	subs := make([]func(GroupConfirmedEvent), 0, len(b.groupConfirmed))
	for _, fn := range b.groupConfirmed {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// PublishCacheInvalidated delivers ev to all current subscribers.
func (b *EventBus) PublishCacheInvalidated(ev CacheInvalidatedEvent) {
	b.mu.RLock()
	subs := make([]func(CacheInvalidatedEvent), 0, len(b.cacheInvalidated))
	for _, fn := range b.cacheInvalidated {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}
