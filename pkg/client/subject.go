package client

import (
	"log"
	"sync"
)

// Subject is a typed publish/subscribe channel. Callbacks run in
// subscription order; a panicking callback is logged and does not stop the
// rest. Unsubscribing during a publish is safe: delivery iterates a copy of
// the subscriber list.
type Subject[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[T]
	logger *log.Logger
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscription identifies one registered callback for later removal.
type Subscription struct {
	id int
}

func NewSubject[T any](logger *log.Logger) *Subject[T] {
	return &Subject[T]{logger: logger}
}

func (s *Subject[T]) Subscribe(fn func(T)) Subscription {
	if fn == nil {
		return Subscription{id: -1}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.subs = append(s.subs, subscriber[T]{id: s.nextID, fn: fn})
	return Subscription{id: s.nextID}
}

func (s *Subject[T]) Unsubscribe(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.subs {
		if entry.id == sub.id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	snapshot := make([]subscriber[T], len(s.subs))
	copy(snapshot, s.subs)
	s.mu.Unlock()

	for _, entry := range snapshot {
		s.invoke(entry, v)
	}
}

func (s *Subject[T]) invoke(entry subscriber[T], v T) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Printf("subject: listener panic | err=%v", r)
		}
	}()
	entry.fn(v)
}

func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
