// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/core/event"
	"github.com/aurumproject/aurum/core/types"
)

// TxAddedEvent is sent on the configured event feed when a transaction is
// committed to the pool.  Events are sent in commit order.
type TxAddedEvent struct {
	Hash hash.Hash
	Fee  types.Amount
	Size int
}

// TxRemovedEvent is sent when a transaction leaves the pool.
type TxRemovedEvent struct {
	Hash   hash.Hash
	Reason string
}

// Reason strings carried by TxRemovedEvent.
const (
	RemoveReasonConfirmed = "confirmed"
	RemoveReasonConflict  = "conflict"
	RemoveReasonExpired   = "expired"
	RemoveReasonEvicted   = "evicted"
)

// OrphanParkedEvent is sent when a transaction is parked in the orphan
// pool awaiting missing parents.
type OrphanParkedEvent struct {
	Hash    hash.Hash
	Missing []types.TxOutPoint
}

// BlockProcessedEvent is sent after a connected or disconnected block has
// been fully reconciled against the pool.
type BlockProcessedEvent struct {
	Height     uint64
	Connected  bool
	Confirmed  int
	Conflicted int
}

// sendEvent publishes to the configured feed, if any.  It is called from
// the serialized section so delivery order matches commit order; the feed
// blocks until every subscriber accepts the event, so subscribers are
// expected to drain from dedicated goroutines.
func (mp *TxPool) sendEvent(data interface{}) {
	if mp.cfg.Events != nil {
		mp.cfg.Events.Send(event.New(data))
	}
}
