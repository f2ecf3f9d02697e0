// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/core/types"
)

// SpentCoin is one entry of the coin snapshot taken when a transaction is
// applied to the view.  FromPool records whether the coin was produced by
// another pooled transaction, which determines whether undo restores it
// into the overlay or merely unshadows the confirmed set.
type SpentCoin struct {
	Coin     *types.Coin
	FromPool bool
}

// coinView is the in-memory overlay of outputs spendable by unconfirmed
// transactions, layered over the confirmed chain's output set.  Lookups
// fall through to the chain when an outpoint is not present in the overlay.
//
// The view is owned by the pool's serialized section and performs no
// locking of its own.  It never calls the verifier.
type coinView struct {
	// fetch resolves an outpoint against the confirmed chain.
	fetch func(types.TxOutPoint) (*types.Coin, error)

	// coins holds the unconfirmed outputs created by pooled
	// transactions and not yet spent.
	coins map[types.TxOutPoint]*types.Coin

	// spent shadows outpoints consumed by pooled transactions,
	// recording the spender's identity hash.
	spent map[types.TxOutPoint]hash.Hash
}

func newCoinView(fetch func(types.TxOutPoint) (*types.Coin, error)) *coinView {
	return &coinView{
		fetch: fetch,
		coins: make(map[types.TxOutPoint]*types.Coin),
		spent: make(map[types.TxOutPoint]hash.Hash),
	}
}

// lookup returns the spendable coin for the outpoint, or nil when the
// outpoint is unknown or already spent by a pooled transaction.
func (v *coinView) lookup(op types.TxOutPoint) (*types.Coin, error) {
	if _, ok := v.spent[op]; ok {
		return nil, nil
	}
	if coin, ok := v.coins[op]; ok {
		return coin, nil
	}
	return v.fetch(op)
}

// spender returns the identity hash of the pooled transaction spending the
// outpoint, if any.
func (v *coinView) spender(op types.TxOutPoint) (hash.Hash, bool) {
	h, ok := v.spent[op]
	return h, ok
}

// apply marks every input of tx spent and registers every output as a new
// unconfirmed coin.  It returns the snapshot of consumed coins in input
// order.  The caller must have fully resolved all inputs beforehand; an
// unresolvable input here means the view was mutated outside the
// serialized section and is fatal.
func (v *coinView) apply(tx *types.Tx, height uint64) []SpentCoin {
	mtx := tx.Transaction()
	txHash := tx.Hash()

	snapshot := make([]SpentCoin, len(mtx.TxIn))
	for i, txIn := range mtx.TxIn {
		op := txIn.PreviousOut
		coin, err := v.lookup(op)
		if err != nil || coin == nil {
			panic(fmt.Sprintf("coin view corruption: input %s of %s "+
				"became unresolvable at apply time (err=%v)", op, txHash, err))
		}
		fromPool := false
		if _, ok := v.coins[op]; ok {
			fromPool = true
			delete(v.coins, op)
		}
		v.spent[op] = *txHash
		snapshot[i] = SpentCoin{Coin: coin, FromPool: fromPool}
	}

	for i, txOut := range mtx.TxOut {
		op := types.TxOutPoint{Hash: *txHash, OutIndex: uint32(i)}
		v.coins[op] = &types.Coin{
			Amount:   txOut.Amount,
			PkScript: txOut.PkScript,
			Height:   height,
		}
	}
	return snapshot
}

// undo reverses apply: the outputs tx created are withdrawn and the coins
// it consumed become spendable again.  Outputs already consumed by a
// dependent pooled transaction must have been undone first.
func (v *coinView) undo(tx *types.Tx, snapshot []SpentCoin) {
	mtx := tx.Transaction()
	txHash := tx.Hash()

	for i := range mtx.TxOut {
		op := types.TxOutPoint{Hash: *txHash, OutIndex: uint32(i)}
		if spender, ok := v.spent[op]; ok {
			panic(fmt.Sprintf("coin view corruption: undo of %s while "+
				"output %d is still spent by %s", txHash, i, spender))
		}
		delete(v.coins, op)
	}

	for i, txIn := range mtx.TxIn {
		op := txIn.PreviousOut
		delete(v.spent, op)
		if i < len(snapshot) && snapshot[i].FromPool {
			v.coins[op] = snapshot[i].Coin
		}
	}
}

// confirmTransaction removes all traces of a now-confirmed transaction
// from the overlay.  Its outputs belong to the confirmed set, which is
// authoritative going forward, and its inputs are permanently consumed.
func (v *coinView) confirmTransaction(tx *types.Tx) {
	mtx := tx.Transaction()
	txHash := tx.Hash()

	for _, txIn := range mtx.TxIn {
		delete(v.spent, txIn.PreviousOut)
	}
	for i := range mtx.TxOut {
		delete(v.coins, types.TxOutPoint{Hash: *txHash, OutIndex: uint32(i)})
	}
}
