// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2017-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/aurumproject/aurum/core/types"
)

// ProcessBlockConnected reconciles the pool with a block that was connected
// to the best chain.  Transactions included in the block are discharged
// without undo, pooled transactions that conflict with the block's spends
// are evicted along with their descendants, stale reject cache entries for
// the block's transactions are cleared, and orphans waiting on the block's
// outputs are given a chance to enter the pool.
func (mp *TxPool) ProcessBlockConnected(txs []*types.Tx, height uint64) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	confirmed := 0
	conflicted := 0
	for _, tx := range txs {
		if tx.Transaction().IsCoinBase() {
			continue
		}
		txHash := tx.Hash()

		if _, exists := mp.pool[*txHash]; exists {
			mp.confirmTransaction(tx)
			confirmed++
		} else {
			// The block spends outpoints that pooled transactions may
			// also spend.  Those pooled transactions lost the race and
			// are evicted together with everything built on them.
			conflicted += mp.removeDoubleSpends(tx)
		}

		// The identity is now confirmed, so a cached rejection for it is
		// stale no matter how it got there.
		mp.rejects.clear(txHash)

		// An orphan with the same identity is redundant now.
		if otx, exists := mp.orphans[*txHash]; exists {
			mp.removeOrphan(otx.tx, false)
		}

		// Newly confirmed outputs may satisfy parked orphans.
		mp.processOrphans(tx)
	}

	mp.updateGauges()
	mp.sendEvent(BlockProcessedEvent{
		Height:     height,
		Connected:  true,
		Confirmed:  confirmed,
		Conflicted: conflicted,
	})

	log.Debug(fmt.Sprintf("Connected block at height %d: %d confirmed, "+
		"%d conflicted, pool size %d", height, confirmed, conflicted,
		len(mp.pool)))
}

// ProcessBlockDisconnected reconciles the pool with a block that was
// disconnected from the best chain during a reorganization.  The block's
// transactions are offered back to the pool so their value is not lost;
// those that no longer pass admission under the new tip are dropped, and
// ones missing parents wait in the orphan pool for the rest of the reorg
// to supply them.
func (mp *TxPool) ProcessBlockDisconnected(txs []*types.Tx, height uint64) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	readmitted := 0
	for _, tx := range txs {
		if tx.Transaction().IsCoinBase() {
			continue
		}

		missing, _, err := mp.maybeAcceptTransaction(tx, false, false,
			true, true, true)
		if err != nil {
			log.Debug(fmt.Sprintf("Disconnected transaction %v not "+
				"re-admitted: %v", tx.Hash(), err))
			continue
		}
		if len(missing) > 0 {
			if err := mp.maybeAddOrphan(tx, missing); err != nil {
				log.Debug(fmt.Sprintf("Disconnected transaction %v not "+
					"parked: %v", tx.Hash(), err))
			}
			continue
		}
		readmitted++
		mp.processOrphans(tx)
	}

	mp.updateGauges()
	mp.sendEvent(BlockProcessedEvent{
		Height:    height,
		Connected: false,
		Confirmed: 0,
	})

	log.Debug(fmt.Sprintf("Disconnected block at height %d: %d "+
		"re-admitted, pool size %d", height, readmitted, len(mp.pool)))
}
