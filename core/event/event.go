/*
 * Copyright (c) 2019-2024 The aurum developers
 */

package event

// Event is the envelope delivered to feed subscribers.  When Ack is non-nil
// the subscriber must send on it once the event has been handled so the
// publisher can block until delivery is processed.
type Event struct {
	Data interface{}
	Ack  chan<- struct{}
}

func New(data interface{}) *Event {
	return &Event{Data: data, Ack: nil}
}

// NewWithAck returns an event the publisher can wait on.  The returned
// channel receives one value per subscriber that processed the event.
func NewWithAck(data interface{}) (*Event, <-chan struct{}) {
	ack := make(chan struct{})
	return &Event{Data: data, Ack: ack}, ack
}
