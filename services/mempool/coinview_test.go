// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"
	"time"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViewTx(prevOut types.TxOutPoint, amounts ...types.Amount) *types.Tx {
	mtx := &types.Transaction{
		Version:   types.TxVersion,
		Timestamp: time.Unix(1700000000, 0),
	}
	mtx.AddTxIn(&types.TxInput{
		PreviousOut: prevOut,
		SignScript:  []byte{0x51},
		Sequence:    types.MaxTxInSequenceNum,
	})
	for _, amount := range amounts {
		mtx.AddTxOut(types.NewTxOutput(amount, []byte{0x76, 0xa9}))
	}
	return types.NewTx(mtx)
}

func newTestView(confirmed map[types.TxOutPoint]*types.Coin) *coinView {
	return newCoinView(func(op types.TxOutPoint) (*types.Coin, error) {
		return confirmed[op], nil
	})
}

func TestCoinViewApplyAndLookup(t *testing.T) {
	fundingOut := types.TxOutPoint{Hash: hash.Hash{0x01}, OutIndex: 0}
	confirmed := map[types.TxOutPoint]*types.Coin{
		fundingOut: {Amount: 50000, PkScript: []byte{0x76, 0xa9}, Height: 50},
	}
	view := newTestView(confirmed)

	// Fall-through to the confirmed set.
	coin, err := view.lookup(fundingOut)
	require.NoError(t, err)
	require.NotNil(t, coin)
	assert.Equal(t, types.Amount(50000), coin.Amount)

	tx := testViewTx(fundingOut, 49000)
	snapshot := view.apply(tx, 101)
	require.Len(t, snapshot, 1)
	assert.False(t, snapshot[0].FromPool)
	assert.Equal(t, types.Amount(50000), snapshot[0].Coin.Amount)

	// The consumed outpoint is shadowed even though the confirmed set
	// still has it.
	coin, err = view.lookup(fundingOut)
	require.NoError(t, err)
	assert.Nil(t, coin)

	spender, ok := view.spender(fundingOut)
	require.True(t, ok)
	assert.True(t, spender.IsEqual(tx.Hash()))

	// The created output is visible at the recorded height.
	created := types.TxOutPoint{Hash: *tx.Hash(), OutIndex: 0}
	coin, err = view.lookup(created)
	require.NoError(t, err)
	require.NotNil(t, coin)
	assert.Equal(t, types.Amount(49000), coin.Amount)
	assert.Equal(t, uint64(101), coin.Height)
}

func TestCoinViewUndo(t *testing.T) {
	fundingOut := types.TxOutPoint{Hash: hash.Hash{0x01}, OutIndex: 0}
	confirmed := map[types.TxOutPoint]*types.Coin{
		fundingOut: {Amount: 50000, PkScript: []byte{0x76, 0xa9}, Height: 50},
	}
	view := newTestView(confirmed)

	parent := testViewTx(fundingOut, 49000)
	parentSnap := view.apply(parent, 101)

	childIn := types.TxOutPoint{Hash: *parent.Hash(), OutIndex: 0}
	child := testViewTx(childIn, 48000)
	childSnap := view.apply(child, 101)
	require.Len(t, childSnap, 1)
	assert.True(t, childSnap[0].FromPool)

	// Undoing the child restores the parent's output into the overlay.
	view.undo(child, childSnap)
	coin, err := view.lookup(childIn)
	require.NoError(t, err)
	require.NotNil(t, coin)
	assert.Equal(t, types.Amount(49000), coin.Amount)

	// Undoing the parent unshadows the confirmed coin without
	// resurrecting it in the overlay.
	view.undo(parent, parentSnap)
	coin, err = view.lookup(fundingOut)
	require.NoError(t, err)
	require.NotNil(t, coin)
	assert.Equal(t, types.Amount(50000), coin.Amount)
	assert.Empty(t, view.coins)
	assert.Empty(t, view.spent)
}

func TestCoinViewUndoOutOfOrderPanics(t *testing.T) {
	fundingOut := types.TxOutPoint{Hash: hash.Hash{0x01}, OutIndex: 0}
	confirmed := map[types.TxOutPoint]*types.Coin{
		fundingOut: {Amount: 50000, PkScript: []byte{0x76, 0xa9}, Height: 50},
	}
	view := newTestView(confirmed)

	parent := testViewTx(fundingOut, 49000)
	parentSnap := view.apply(parent, 101)
	child := testViewTx(types.TxOutPoint{Hash: *parent.Hash(), OutIndex: 0}, 48000)
	view.apply(child, 101)

	// The parent's output is still spent by the child, so undoing the
	// parent first is a corruption.
	assert.Panics(t, func() {
		view.undo(parent, parentSnap)
	})
}

func TestCoinViewConfirm(t *testing.T) {
	fundingOut := types.TxOutPoint{Hash: hash.Hash{0x01}, OutIndex: 0}
	confirmed := map[types.TxOutPoint]*types.Coin{
		fundingOut: {Amount: 50000, PkScript: []byte{0x76, 0xa9}, Height: 50},
	}
	view := newTestView(confirmed)

	parent := testViewTx(fundingOut, 49000)
	view.apply(parent, 101)
	childIn := types.TxOutPoint{Hash: *parent.Hash(), OutIndex: 0}
	child := testViewTx(childIn, 48000)
	view.apply(child, 101)

	view.confirmTransaction(parent)

	// The parent's input marker and unspent outputs leave the overlay,
	// while the child's spend of the parent's output stays recorded.
	_, ok := view.spent[fundingOut]
	assert.False(t, ok)
	_, ok = view.spent[childIn]
	assert.True(t, ok)
}

func TestCoinViewApplyUnresolvablePanics(t *testing.T) {
	view := newTestView(nil)
	tx := testViewTx(types.TxOutPoint{Hash: hash.Hash{0xff}, OutIndex: 0}, 1000)
	assert.Panics(t, func() {
		view.apply(tx, 101)
	})
}
