// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2017-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/core/types"
	mapset "github.com/deckarep/golang-set"
)

// HaveTransaction returns whether or not the passed transaction already
// exists in the main pool or in the orphan pool.
func (mp *TxPool) HaveTransaction(h *hash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.haveTransaction(h)
}

// IsTransactionInPool returns whether or not the passed transaction already
// exists in the main pool.
func (mp *TxPool) IsTransactionInPool(h *hash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.isTransactionInPool(h)
}

// IsOrphanInPool returns whether or not the passed transaction already
// exists in the orphan pool.
func (mp *TxPool) IsOrphanInPool(h *hash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.isOrphanInPool(h)
}

// HasReject returns whether the identity hash is recorded in the reject
// cache as known invalid as of the current chain tip.
func (mp *TxPool) HasReject(h *hash.Hash) bool {
	// Full lock: an expired gated entry is dropped on lookup.
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	return mp.rejects.isRejected(h, mp.cfg.BestHeight()+1,
		mp.cfg.PastMedianTime())
}

// FetchTransaction returns the requested transaction from the transaction
// pool.  This only fetches from the main transaction pool and does not
// include orphans.
func (mp *TxPool) FetchTransaction(h *hash.Hash) (*types.Tx, error) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	if txD, exists := mp.pool[*h]; exists {
		return txD.Tx, nil
	}
	return nil, fmt.Errorf("transaction %v is not in the pool", h)
}

// GetEntry returns the pool descriptor for the identity hash, or nil when
// the transaction is not pooled.
func (mp *TxPool) GetEntry(h *hash.Hash) *TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.pool[*h]
}

// TxDescs returns a slice of descriptors for all the transactions in the
// pool.  The descriptors are treated as immutable by the caller.
func (mp *TxPool) TxDescs() []*TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	descs := make([]*TxDesc, 0, len(mp.pool))
	for _, txD := range mp.pool {
		descs = append(descs, txD)
	}
	return descs
}

// TxHashes returns the identity hashes of all the transactions in the pool
// in no particular order.
func (mp *TxPool) TxHashes() []*hash.Hash {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	hashes := make([]*hash.Hash, 0, len(mp.pool))
	for h := range mp.pool {
		hCopy := h
		hashes = append(hashes, &hCopy)
	}
	return hashes
}

// GetHistory returns the identity hashes of pooled transactions in commit
// order, oldest first.  Discharged and evicted transactions no longer
// appear.
func (mp *TxPool) GetHistory() []hash.Hash {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	history := make([]hash.Hash, len(mp.history))
	copy(history, mp.history)
	return history
}

// Count returns the number of transactions in the main pool.  It does not
// include the orphan pool.
func (mp *TxPool) Count() int {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return len(mp.pool)
}

// OrphanCount returns the number of transactions in the orphan pool.
func (mp *TxPool) OrphanCount() int {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return len(mp.orphans)
}

// Size returns the total serialized size in bytes of the transactions in
// the main pool.
func (mp *TxPool) Size() int64 {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	var size int64
	for _, txD := range mp.pool {
		size += int64(txD.Tx.Transaction().SerializeSize())
	}
	return size
}

// LastUpdated returns the last time a transaction was added to or removed
// from the main pool.  It does not include the orphan pool.
func (mp *TxPool) LastUpdated() time.Time {
	return time.Unix(atomic.LoadInt64(&mp.lastUpdated), 0)
}

// GetBalance returns the spendable balance of the watched output scripts
// as seen through the pool's layered view.  The watched set holds
// hex-encoded pkScripts, confirmed is the balance of the watched scripts
// in the confirmed output set, and the result adjusts it by the pool's
// unconfirmed spends and creations: confirmed coins consumed by pooled
// transactions are deducted and unspent pool-created coins are added.
func (mp *TxPool) GetBalance(watched mapset.Set, confirmed types.Amount) types.Amount {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	balance := confirmed
	for _, txD := range mp.pool {
		txIns := txD.Tx.Transaction().TxIn
		for i, sc := range txD.spentCoins {
			// A coin created by a transaction still in the pool was
			// never part of the confirmed balance.  The admission-time
			// FromPool flag goes stale once the creator confirms, so
			// provenance is decided against the pool as it is now.
			if mp.isTransactionInPool(&txIns[i].PreviousOut.Hash) {
				continue
			}
			if watched.Contains(hex.EncodeToString(sc.Coin.PkScript)) {
				balance -= sc.Coin.Amount
			}
		}
	}
	for _, coin := range mp.view.coins {
		if watched.Contains(hex.EncodeToString(coin.PkScript)) {
			balance += coin.Amount
		}
	}
	return balance
}
