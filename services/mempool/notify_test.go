// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/aurumproject/aurum/core/event"
	"github.com/aurumproject/aurum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEvents(ch chan *event.Event) []interface{} {
	var out []interface{}
	for {
		select {
		case ev := <-ch:
			out = append(out, ev.Data)
		default:
			return out
		}
	}
}

// TestEventCommitOrder checks notifications are delivered in the order the
// pool committed the corresponding mutations.
func TestEventCommitOrder(t *testing.T) {
	h := newPoolHarness(t)
	pool := h.txPool

	feed := &event.Feed{}
	ch := make(chan *event.Event, 64)
	sub := feed.Subscribe(ch)
	defer sub.Unsubscribe()
	pool.cfg.Events = feed

	funding := h.fund(50000, h.walletScript)
	parent := h.createSpendTx([]spendableOutput{funding},
		[]payout{{49000, h.walletScript}})
	child := h.createSpendTx([]spendableOutput{txOutToSpendableOut(parent, 0)},
		[]payout{{48000, h.walletScript}})

	// The child arrives first and is parked.
	_, err := pool.ProcessTransaction(child, true, false, false)
	require.NoError(t, err)
	// The parent resolves the orphan, so two adds follow the parking.
	h.processAccepted(parent)

	events := collectEvents(ch)
	require.Len(t, events, 3)

	parked, ok := events[0].(OrphanParkedEvent)
	require.True(t, ok, "expected OrphanParkedEvent, got %T", events[0])
	assert.True(t, parked.Hash.IsEqual(child.Hash()))
	require.Len(t, parked.Missing, 1)
	assert.Equal(t, *parent.Hash(), parked.Missing[0].Hash)

	addedParent, ok := events[1].(TxAddedEvent)
	require.True(t, ok, "expected TxAddedEvent, got %T", events[1])
	assert.True(t, addedParent.Hash.IsEqual(parent.Hash()))
	assert.Equal(t, types.Amount(1000), addedParent.Fee)
	assert.Greater(t, addedParent.Size, 0)

	addedChild, ok := events[2].(TxAddedEvent)
	require.True(t, ok, "expected TxAddedEvent, got %T", events[2])
	assert.True(t, addedChild.Hash.IsEqual(child.Hash()))
}

// TestEventRemovalReasons checks the removal notifications carry the right
// reasons for confirmation and conflict eviction.
func TestEventRemovalReasons(t *testing.T) {
	h := newPoolHarness(t)
	pool := h.txPool

	funding := h.fund(50000, h.walletScript)
	loser := h.createSpendTx([]spendableOutput{funding},
		[]payout{{49000, h.walletScript}})
	h.processAccepted(loser)

	feed := &event.Feed{}
	ch := make(chan *event.Event, 64)
	sub := feed.Subscribe(ch)
	defer sub.Unsubscribe()
	pool.cfg.Events = feed

	winner := h.createSpendTx([]spendableOutput{funding},
		[]payout{{48500, h.extScript}})
	h.chain.RemoveCoin(funding.outPoint)
	pool.ProcessBlockConnected([]*types.Tx{winner}, 101)

	events := collectEvents(ch)
	require.Len(t, events, 2)

	removed, ok := events[0].(TxRemovedEvent)
	require.True(t, ok, "expected TxRemovedEvent, got %T", events[0])
	assert.True(t, removed.Hash.IsEqual(loser.Hash()))
	assert.Equal(t, RemoveReasonConflict, removed.Reason)

	processed, ok := events[1].(BlockProcessedEvent)
	require.True(t, ok, "expected BlockProcessedEvent, got %T", events[1])
	assert.Equal(t, uint64(101), processed.Height)
	assert.True(t, processed.Connected)
	assert.Equal(t, 1, processed.Conflicted)
}
