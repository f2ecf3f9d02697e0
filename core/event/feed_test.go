/*
 * Copyright (c) 2019-2024 The aurum developers
 */

package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeedDeliveryOrder(t *testing.T) {
	var feed Feed

	ch := make(chan *Event, 8)
	sub := feed.Subscribe(ch)
	defer sub.Unsubscribe()

	for i := 0; i < 3; i++ {
		n := feed.Send(New(i))
		assert.Equal(t, 1, n)
	}

	for i := 0; i < 3; i++ {
		ev := <-ch
		assert.Equal(t, i, ev.Data)
	}
}

func TestFeedMultipleSubscribers(t *testing.T) {
	var feed Feed

	ch1 := make(chan *Event, 1)
	ch2 := make(chan *Event, 1)
	sub1 := feed.Subscribe(ch1)
	sub2 := feed.Subscribe(ch2)

	assert.Equal(t, 2, feed.Send(New("hello")))
	assert.Equal(t, "hello", (<-ch1).Data)
	assert.Equal(t, "hello", (<-ch2).Data)

	sub1.Unsubscribe()
	assert.Equal(t, 1, feed.Send(New("again")))
	assert.Equal(t, "again", (<-ch2).Data)
	assert.Equal(t, 0, len(ch1))

	sub2.Unsubscribe()
	assert.Equal(t, 0, feed.Send(New("nobody")))
}

func TestFeedAck(t *testing.T) {
	var feed Feed

	ch := make(chan *Event, 1)
	sub := feed.Subscribe(ch)
	defer sub.Unsubscribe()

	ev, ack := NewWithAck("payload")
	feed.Send(ev)

	got := <-ch
	assert.Equal(t, "payload", got.Data)
	go func() {
		got.Ack <- struct{}{}
	}()

	select {
	case <-ack:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ack")
	}
}

func TestUnsubscribeTwice(t *testing.T) {
	var feed Feed

	ch := make(chan *Event, 1)
	sub := feed.Subscribe(ch)
	sub.Unsubscribe()
	sub.Unsubscribe()

	assert.Equal(t, 0, feed.Send(New("x")))
}
