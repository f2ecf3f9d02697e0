/*
 * Copyright (c) 2019-2024 The aurum developers
 */

package event

import (
	"sync"
)

// Feed implements one-to-many event distribution.  Events sent to the feed
// are delivered to all subscribed channels in subscription order, and Send
// does not return until every subscriber has accepted the event.  Because
// delivery blocks, subscribers that can fall behind should drain their
// channel from a dedicated goroutine.
//
// The zero value is ready to use.
type Feed struct {
	mtx  sync.Mutex
	subs []*Subscription
}

// Subscription represents a single subscriber registered with a feed.
type Subscription struct {
	feed *Feed
	ch   chan<- *Event

	once sync.Once
}

// Subscribe registers ch to receive every event subsequently sent to the
// feed.
func (f *Feed) Subscribe(ch chan<- *Event) *Subscription {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	sub := &Subscription{feed: f, ch: ch}
	f.subs = append(f.subs, sub)
	return sub
}

// Send delivers ev to all current subscribers and returns the number of
// channels the event was delivered to.
func (f *Feed) Send(ev *Event) int {
	f.mtx.Lock()
	subs := make([]*Subscription, len(f.subs))
	copy(subs, f.subs)
	f.mtx.Unlock()

	for _, sub := range subs {
		sub.ch <- ev
	}
	return len(subs)
}

// Unsubscribe removes the subscription from the feed.  It is safe to call
// multiple times; only the first call has an effect.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		f := s.feed
		f.mtx.Lock()
		defer f.mtx.Unlock()
		for i, sub := range f.subs {
			if sub == s {
				f.subs = append(f.subs[:i], f.subs[i+1:]...)
				break
			}
		}
	})
}
