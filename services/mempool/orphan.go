// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2017-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"time"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/common/roughtime"
	"github.com/aurumproject/aurum/core/message"
	"github.com/aurumproject/aurum/core/types"
)

// orphanTx is a transaction parked in the orphan pool awaiting missing
// parents, along with the time at which it expires.
type orphanTx struct {
	tx         *types.Tx
	expiration time.Time
}

// removeOrphan removes the passed orphan transaction from the orphan pool
// and previous orphan index.  When removeRedeemers is true, orphans that
// spend the removed orphan's outputs are removed recursively.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeOrphan(tx *types.Tx, removeRedeemers bool) {
	txHash := tx.Hash()
	otx, exists := mp.orphans[*txHash]
	if !exists {
		return
	}

	// Remove the reference from the previous orphan index.
	for _, txIn := range otx.tx.Transaction().TxIn {
		orphans, exists := mp.orphansByPrev[txIn.PreviousOut]
		if exists {
			delete(orphans, *txHash)

			// Remove the map entry altogether if there are no
			// longer any orphans which depend on it.
			if len(orphans) == 0 {
				delete(mp.orphansByPrev, txIn.PreviousOut)
			}
		}
	}

	// Remove any orphans that redeem outputs from this one if requested.
	if removeRedeemers {
		prevOut := types.TxOutPoint{Hash: *txHash}
		for txOutIdx := range tx.Transaction().TxOut {
			prevOut.OutIndex = uint32(txOutIdx)
			for _, orphan := range mp.orphansByPrev[prevOut] {
				mp.removeOrphan(orphan, true)
			}
		}
	}

	delete(mp.orphans, *txHash)
	mp.updateGauges()
}

// RemoveOrphan removes the passed orphan transaction from the orphan pool
// and previous orphan index.
func (mp *TxPool) RemoveOrphan(txHash *hash.Hash) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	if otx, exists := mp.orphans[*txHash]; exists {
		mp.removeOrphan(otx.tx, false)
	}
}

// removeOrphanDoubleSpends removes all orphans which spend outputs spent by
// the passed transaction from the orphan pool.  Removing those orphans then
// leads to removing all orphans which rely on them, recursively.  This is
// necessary when a transaction is added to the main pool because it may
// spend outputs that orphans also spend.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeOrphanDoubleSpends(tx *types.Tx) {
	for _, txIn := range tx.Transaction().TxIn {
		for _, orphan := range mp.orphansByPrev[txIn.PreviousOut] {
			mp.removeOrphan(orphan, true)
		}
	}
}

// limitNumOrphans limits the number of orphan transactions by evicting a
// random orphan if adding a new one would cause it to overflow the max
// allowed.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) limitNumOrphans() {
	// Scan through the orphan pool and remove any expired orphans when
	// it's time.  This is done for efficiency so the scan only happens
	// periodically instead of on every orphan added to the pool.
	if now := roughtime.Now(); now.After(mp.nextExpireScan) {
		origNumOrphans := len(mp.orphans)
		for _, otx := range mp.orphans {
			if now.After(otx.expiration) {
				// Remove redeemers too because the missing parents
				// are very unlikely to ever materialize since the
				// orphan has already been around more than long
				// enough for them to be delivered.
				mp.removeOrphan(otx.tx, true)
			}
		}

		// Set next expiration scan to occur after the scan interval.
		mp.nextExpireScan = now.Add(orphanExpireScanInterval)

		if numOrphans := len(mp.orphans); numOrphans < origNumOrphans {
			log.Debug(fmt.Sprintf("Expired %d orphans (remaining: %d)",
				origNumOrphans-numOrphans, numOrphans))
		}
	}

	// Nothing to do if adding another orphan will not cause the pool to
	// exceed the limit.
	if len(mp.orphans)+1 <= mp.cfg.Policy.MaxOrphanTxs {
		return
	}

	// Remove a random entry from the map.  For most compilers, Go's
	// range statement iterates starting at a random item although that
	// is not 100% guaranteed by the language spec.  The iteration order is not
	// important here because an adversary would have to be able to pull
	// off preimage attacks on the hashing function in order to target
	// eviction of specific entries anyways.
	for _, otx := range mp.orphans {
		// Don't remove redeemers in the case of a random eviction
		// since it is quite possible it might be needed again shortly.
		mp.removeOrphan(otx.tx, false)
		break
	}
}

// addOrphan adds an orphan transaction to the orphan pool.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) addOrphan(tx *types.Tx, missing []types.TxOutPoint) {
	// Nothing to do if no orphans are allowed.
	if mp.cfg.Policy.MaxOrphanTxs <= 0 {
		return
	}

	// Limit the number orphan transactions to prevent memory exhaustion.
	// This will periodically remove any expired orphans and evict a
	// random orphan if space is still needed.
	mp.limitNumOrphans()

	txHash := tx.Hash()
	mp.orphans[*txHash] = &orphanTx{
		tx:         tx,
		expiration: roughtime.Now().Add(orphanTTL),
	}
	for _, txIn := range tx.Transaction().TxIn {
		if _, exists := mp.orphansByPrev[txIn.PreviousOut]; !exists {
			mp.orphansByPrev[txIn.PreviousOut] =
				make(map[hash.Hash]*types.Tx)
		}
		mp.orphansByPrev[txIn.PreviousOut][*txHash] = tx
	}

	mp.metrics.orphaned.Inc(1)
	mp.updateGauges()
	mp.sendEvent(OrphanParkedEvent{Hash: *txHash, Missing: missing})

	log.Debug(fmt.Sprintf("Stored orphan transaction %v (total: %d)",
		txHash, len(mp.orphans)))
}

// maybeAddOrphan potentially adds an orphan to the orphan pool.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) maybeAddOrphan(tx *types.Tx, missing []types.TxOutPoint) error {
	// Ignore orphan transactions that are too large.  This helps avoid a
	// memory exhaustion attack based on sending a lot of really large
	// orphans.  In the case there is a valid transaction larger than
	// this, it will ultimately be rebroadcast after the parent
	// transactions have been mined or otherwise received.
	serializedLen := tx.Transaction().SerializeSize()
	if serializedLen > mp.cfg.Policy.MaxOrphanTxSize {
		str := fmt.Sprintf("orphan transaction size of %d bytes is larger "+
			"than max allowed size of %d bytes", serializedLen,
			mp.cfg.Policy.MaxOrphanTxSize)
		return txRuleError(message.RejectNonstandard, str)
	}

	// Add the orphan if the none of the above disqualified it.
	mp.addOrphan(tx, missing)
	return nil
}
