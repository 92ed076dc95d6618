package booking

import (
	"log"
	"sync"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// Observer receives booking events after they are committed.
type Observer interface {
	OnBookingCreated(b model.Booking)
	OnBookingUpdated(b model.Booking)
	OnBookingCancelled(id string)
}

// Subscription identifies a registered observer.
type Subscription int

type subscriber struct {
	id  Subscription
	obs Observer
}

// ObserverBus is the registry of observers notified by the Controller.
// Observers are called in subscription order; a panicking observer is
// logged and does not stop the others.
type ObserverBus struct {
	mu     sync.RWMutex
	nextID Subscription
	subs   []subscriber
	logger *log.Logger
}

func NewObserverBus(logger *log.Logger) *ObserverBus {
	if logger == nil {
		logger = log.Default()
	}
	return &ObserverBus{logger: logger}
}

// Subscribe registers o and returns a handle for Unsubscribe.
func (b *ObserverBus) Subscribe(o Observer) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, obs: o})
	return b.nextID
}

// Unsubscribe removes the observer; it reports whether it was registered.
func (b *ObserverBus) Unsubscribe(id Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (b *ObserverBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

type noticeKind int

const (
	noticeCreated noticeKind = iota
	noticeUpdated
	noticeCancelled
)

type notice struct {
	kind    noticeKind
	booking model.Booking
	id      string
}

func (b *ObserverBus) publish(notices ...notice) {
	if len(notices) == 0 {
		return
	}
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, n := range notices {
		for _, s := range subs {
			b.deliver(s, n)
		}
	}
}

func (b *ObserverBus) deliver(s subscriber, n notice) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Printf("Observer %d panicked: %v", s.id, r)
		}
	}()
	switch n.kind {
	case noticeCreated:
		s.obs.OnBookingCreated(n.booking)
	case noticeUpdated:
		s.obs.OnBookingUpdated(n.booking)
	case noticeCancelled:
		s.obs.OnBookingCancelled(n.id)
	}
}
