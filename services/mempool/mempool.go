// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2017-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/common/roughtime"
	"github.com/aurumproject/aurum/core/message"
	"github.com/aurumproject/aurum/core/types"
	"github.com/aurumproject/aurum/engine/verify"
	l "github.com/aurumproject/aurum/log"
	"github.com/davecgh/go-spew/spew"
)

// TxDesc is a descriptor containing a transaction in the mempool along with
// additional metadata.
type TxDesc struct {
	types.TxDesc

	// spentCoins is the snapshot of coins the transaction consumed, in
	// input order, taken when it was applied to the coin view.  It is
	// what undo needs to restore the view on eviction.
	spentCoins []SpentCoin
}

// TxPool is used as a source of transactions that need to be mined into
// blocks and relayed to other peers.  It is safe for concurrent access from
// multiple peers.
type TxPool struct {
	// The following variables must only be used atomically.
	lastUpdated int64 // last time pool was updated.

	mtx sync.RWMutex
	cfg Config

	pool      map[hash.Hash]*TxDesc
	orphans   map[hash.Hash]*orphanTx
	// orphansByPrev indexes parked orphans by each outpoint they are
	// waiting on, so a newly available output wakes exactly the orphans
	// that reference it.
	orphansByPrev map[types.TxOutPoint]map[hash.Hash]*types.Tx
	outpoints     map[types.TxOutPoint]*types.Tx
	view          *coinView
	rejects       *rejectCache
	metrics       *poolMetrics

	// history records identity hashes in commit order.
	history []hash.Hash

	pennyTotal    float64 // exponentially decaying total for penny spends.
	lastPennyUnix int64   // unix time of last ``penny spend''

	// nextExpireScan is the time after which the orphan pool will be
	// scanned in order to evict orphans.  This is NOT a hard deadline as
	// the scan will only run when an orphan is added to the pool as
	// opposed to on an unconditional timer.
	nextExpireScan time.Time
}

// New returns a new memory pool for validating and storing standalone
// transactions until they are mined into a block.
func New(cfg *Config) *TxPool {
	mp := &TxPool{
		cfg:            *cfg,
		pool:           make(map[hash.Hash]*TxDesc),
		orphans:        make(map[hash.Hash]*orphanTx),
		orphansByPrev:  make(map[types.TxOutPoint]map[hash.Hash]*types.Tx),
		outpoints:      make(map[types.TxOutPoint]*types.Tx),
		rejects:        newRejectCache(defaultRejectCacheLimit),
		metrics:        newPoolMetrics(),
		nextExpireScan: roughtime.Now().Add(orphanExpireScanInterval),
	}
	mp.view = newCoinView(cfg.FetchCoin)
	return mp
}

// isTransactionInPool returns whether or not the passed transaction already
// exists in the main pool.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) isTransactionInPool(h *hash.Hash) bool {
	_, exists := mp.pool[*h]
	return exists
}

// isOrphanInPool returns whether or not the passed transaction already
// exists in the orphan pool.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) isOrphanInPool(h *hash.Hash) bool {
	_, exists := mp.orphans[*h]
	return exists
}

// haveTransaction returns whether or not the passed transaction already
// exists in the main pool or in the orphan pool.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) haveTransaction(h *hash.Hash) bool {
	return mp.isTransactionInPool(h) || mp.isOrphanInPool(h)
}

// fetchInputCoins resolves every input of tx against the coin view and
// returns the coins in input order along with the outpoints that could not
// be resolved.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) fetchInputCoins(tx *types.Tx) ([]*types.Coin, []types.TxOutPoint, error) {
	txIns := tx.Transaction().TxIn
	coins := make([]*types.Coin, len(txIns))
	var missing []types.TxOutPoint
	for i, txIn := range txIns {
		coin, err := mp.view.lookup(txIn.PreviousOut)
		if err != nil {
			return nil, nil, err
		}
		if coin == nil {
			missing = append(missing, txIn.PreviousOut)
			continue
		}
		coins[i] = coin
	}
	return coins, missing, nil
}

// addTransaction commits the passed transaction to the memory pool.  It
// applies the transaction to the coin view, records the coin snapshot for
// later undo, and publishes the added event.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) addTransaction(tx *types.Tx, height uint64, fee int64) *TxDesc {
	spentCoins := mp.view.apply(tx, height)

	serializedSize := int64(tx.Transaction().SerializeSize())
	txD := &TxDesc{
		TxDesc: types.TxDesc{
			Tx:       tx,
			Added:    roughtime.Now(),
			Height:   height,
			Fee:      types.Amount(fee),
			FeePerKB: fee * 1000 / serializedSize,
		},
		spentCoins: spentCoins,
	}

	txHash := tx.Hash()
	mp.pool[*txHash] = txD
	for _, txIn := range tx.Transaction().TxIn {
		mp.outpoints[txIn.PreviousOut] = tx
	}
	mp.history = append(mp.history, *txHash)
	atomic.StoreInt64(&mp.lastUpdated, roughtime.Now().Unix())

	mp.metrics.added.Inc(1)
	mp.updateGauges()
	mp.sendEvent(TxAddedEvent{
		Hash: *txHash,
		Fee:  txD.Fee,
		Size: int(serializedSize),
	})

	log.Debug(fmt.Sprintf("Accepted transaction %v (pool size: %v)", txHash, len(mp.pool)))
	return txD
}

// removeTransaction evicts the passed transaction from the pool.  When
// removeRedeemers is true, any transactions that spend its outputs are
// recursively removed first, otherwise dependents would be left holding
// unresolvable inputs.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeTransaction(tx *types.Tx, removeRedeemers bool, reason string) {
	txHash := tx.Hash()
	if removeRedeemers {
		// Remove any transactions which rely on this one.
		for i := uint32(0); i < uint32(len(tx.Transaction().TxOut)); i++ {
			prevOut := types.TxOutPoint{Hash: *txHash, OutIndex: i}
			if txRedeemer, exists := mp.outpoints[prevOut]; exists {
				mp.removeTransaction(txRedeemer, true, reason)
			}
		}
	}

	txD, exists := mp.pool[*txHash]
	if !exists {
		return
	}

	mp.view.undo(tx, txD.spentCoins)
	for _, txIn := range tx.Transaction().TxIn {
		delete(mp.outpoints, txIn.PreviousOut)
	}
	delete(mp.pool, *txHash)
	mp.removeFromHistory(txHash)
	atomic.StoreInt64(&mp.lastUpdated, roughtime.Now().Unix())

	mp.updateGauges()
	mp.sendEvent(TxRemovedEvent{Hash: *txHash, Reason: reason})
}

// confirmTransaction discharges a transaction from the pool because a
// connected block included it.  Unlike removeTransaction no undo runs: the
// confirmed output set is authoritative for its inputs and outputs from
// here on, and dependent pooled transactions remain valid.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) confirmTransaction(tx *types.Tx) {
	txHash := tx.Hash()
	if _, exists := mp.pool[*txHash]; !exists {
		return
	}

	mp.view.confirmTransaction(tx)
	for _, txIn := range tx.Transaction().TxIn {
		delete(mp.outpoints, txIn.PreviousOut)
	}
	delete(mp.pool, *txHash)
	mp.removeFromHistory(txHash)
	atomic.StoreInt64(&mp.lastUpdated, roughtime.Now().Unix())

	mp.metrics.confirmed.Inc(1)
	mp.updateGauges()
	mp.sendEvent(TxRemovedEvent{Hash: *txHash, Reason: RemoveReasonConfirmed})
}

func (mp *TxPool) removeFromHistory(txHash *hash.Hash) {
	for i, h := range mp.history {
		if h.IsEqual(txHash) {
			mp.history = append(mp.history[:i], mp.history[i+1:]...)
			return
		}
	}
}

// RemoveTransaction removes the passed transaction from the mempool.  When
// the removeRedeemers flag is set, any transactions that redeem outputs of
// the removed transaction will also be removed recursively from the
// mempool, as they would otherwise become orphans.
func (mp *TxPool) RemoveTransaction(tx *types.Tx, removeRedeemers bool) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	mp.removeTransaction(tx, removeRedeemers, RemoveReasonEvicted)
}

// removeDoubleSpends evicts every pooled transaction that spends an
// outpoint also spent by the passed transaction, returning the number of
// directly conflicting transactions removed.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeDoubleSpends(tx *types.Tx) int {
	removed := 0
	for _, txIn := range tx.Transaction().TxIn {
		txRedeemer, ok := mp.outpoints[txIn.PreviousOut]
		if !ok || txRedeemer.Hash().IsEqual(tx.Hash()) {
			continue
		}
		mp.removeTransaction(txRedeemer, true, RemoveReasonConflict)
		mp.metrics.conflicted.Inc(1)
		removed++
	}
	return removed
}

// RemoveDoubleSpends removes all transactions which spend outputs spent by
// the passed transaction from the memory pool.  Removing those transactions
// then leads to removing all transactions which rely on them, recursively.
// This is necessary when a block is connected to the main chain because the
// block may contain transactions which were previously unknown to the
// memory pool.
func (mp *TxPool) RemoveDoubleSpends(tx *types.Tx) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	mp.removeDoubleSpends(tx)
}

// recordRejection bumps the rejection counters and records the identity
// hash in the reject cache when the failure class permits it.  A
// premature-locktime rejection is recorded with its lock time as the gate
// so the identical transaction is accepted once the chain catches up.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) recordRejection(tx *types.Tx, err error) {
	mp.metrics.rejected.Inc(1)
	if IsMalleatedError(err) {
		mp.metrics.malleated.Inc(1)
	}
	if !shouldCacheRejection(err) {
		return
	}
	if IsErrorCode(err, message.RejectLocktime) {
		mp.rejects.rejectGated(tx.Hash(), tx.Transaction().LockTime)
		return
	}
	mp.rejects.reject(tx.Hash())
}

// maybeAcceptTransaction runs the admission pipeline against the passed
// transaction.  It returns the outpoints the transaction is waiting on when
// one or more inputs cannot be resolved, the pool descriptor on success, or
// the rule error that rejected it.
//
// When rejectDupOrphans is true, a transaction already parked in the orphan
// pool is treated as a duplicate submission.  The orphan resolution cascade
// passes false since its candidates are still parked while they are
// re-evaluated.
//
// Script verification runs outside the pool mutex so concurrent
// submissions are not serialized behind signature checking; the pool state
// the earlier steps depended on is revalidated after the lock is
// reacquired.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) maybeAcceptTransaction(tx *types.Tx, isNew, rateLimit,
	allowHighFees, rejectDupOrphans, skipChecks bool) ([]types.TxOutPoint, *TxDesc, error) {

	txHash := tx.Hash()

	// A transaction already present in the pool, or parked as an orphan
	// when the caller asked for it, is a duplicate submission.
	if mp.isTransactionInPool(txHash) || (rejectDupOrphans &&
		mp.isOrphanInPool(txHash)) {

		str := fmt.Sprintf("already have transaction %v", txHash)
		return nil, nil, txRuleError(message.RejectDuplicate, str)
	}

	bestHeight := mp.cfg.BestHeight()
	nextBlockHeight := bestHeight + 1

	// The verdicts in the reject cache are only meaningful under the
	// flag set they were produced with.
	flags, err := mp.cfg.Policy.StandardVerifyFlags()
	if err != nil {
		return nil, nil, err
	}
	mp.rejects.checkFlags(flags)

	// Short-circuit identities already known to fail admission.
	if mp.rejects.isRejected(txHash, nextBlockHeight, mp.cfg.PastMedianTime()) {
		mp.metrics.cacheHits.Inc(1)
		str := fmt.Sprintf("transaction %v was previously rejected", txHash)
		return nil, nil, txRuleError(message.RejectKnownInvalid, str)
	}

	if err := checkTransactionSanity(tx); err != nil {
		return nil, nil, err
	}

	// A standalone transaction must not be a coinbase transaction.
	if tx.Transaction().IsCoinBase() {
		str := fmt.Sprintf("transaction %v is an individual coinbase", txHash)
		return nil, nil, txRuleError(message.RejectInvalid, str)
	}

	if isExpired(tx, nextBlockHeight) {
		str := fmt.Sprintf("transaction %v expired at height %d", txHash,
			tx.Transaction().Expire)
		return nil, nil, txRuleError(message.RejectInvalid, str)
	}

	// Don't allow non-standard transactions if the network parameters
	// forbid their acceptance.
	if !mp.cfg.Policy.AcceptNonStd && !skipChecks {
		err := checkTransactionStandard(tx, nextBlockHeight,
			mp.cfg.PastMedianTime(), mp.cfg.Policy.MinRelayTxFee,
			mp.cfg.Policy.MaxTxVersion)
		if err != nil {
			return nil, nil, err
		}
	}

	// The transaction may not use any of the same outputs as other
	// transactions already in the pool as that would ultimately result
	// in a double spend.  This check is intended to be quick and
	// therefore only detects double spends within the transaction pool
	// itself.  The transaction could still be double spending coins from
	// the main chain at this point.  There is a more in-depth check that
	// happens later after fetching the referenced transaction inputs
	// from the main chain which examines the actual spend data and
	// prevents double spends.
	if err := mp.checkPoolDoubleSpend(tx); err != nil {
		return nil, nil, err
	}

	// Don't allow the transaction if it exists in the main chain and is
	// not already fully spent.
	for i := range tx.Transaction().TxOut {
		prevOut := types.TxOutPoint{Hash: *txHash, OutIndex: uint32(i)}
		coin, err := mp.view.lookup(prevOut)
		if err != nil {
			return nil, nil, err
		}
		if coin != nil {
			return nil, nil, txRuleError(message.RejectDuplicate,
				"transaction already exists")
		}
	}

	// Resolve every input against the layered view.  Inputs that resolve
	// to neither a confirmed output nor an unconfirmed pooled output
	// make the transaction an orphan candidate rather than a rejection.
	coins, missing, err := mp.fetchInputCoins(tx)
	if err != nil {
		return nil, nil, err
	}
	if len(missing) > 0 {
		return missing, nil, nil
	}

	// Don't allow transactions whose lock time gate has not opened yet.
	if !isFinalized(tx, nextBlockHeight, mp.cfg.PastMedianTime()) {
		str := fmt.Sprintf("transaction %v is not finalized at height %d",
			txHash, nextBlockHeight)
		return nil, nil, txRuleError(message.RejectLocktime, str)
	}

	// Value rules: coinbase inputs must be mature, inputs must cover
	// outputs, and the implied fee must satisfy the relay policy.
	var totalIn int64
	for i, coin := range coins {
		if coin.CoinBase {
			confirms := nextBlockHeight - coin.Height
			if confirms < CoinbaseMaturity {
				str := fmt.Sprintf("transaction %v input %d spends "+
					"immature coinbase output with %d of %d required "+
					"confirmations", txHash, i, confirms, uint64(CoinbaseMaturity))
				return nil, nil, txRuleError(message.RejectInvalid, str)
			}
		}
		totalIn += int64(coin.Amount)
	}
	var totalOut int64
	for _, txOut := range tx.Transaction().TxOut {
		totalOut += int64(txOut.Amount)
	}
	if totalIn < totalOut {
		str := fmt.Sprintf("transaction %v spends %v which is more than "+
			"its inputs provide (%v)", txHash, totalOut, totalIn)
		return nil, nil, txRuleError(message.RejectInsufficientFunds, str)
	}
	txFee := totalIn - totalOut

	serializedSize := int64(tx.Transaction().SerializeSize())
	minFee := calcMinRequiredTxRelayFee(serializedSize, mp.cfg.Policy.MinRelayTxFee)
	if !skipChecks && txFee < minFee {
		if !rateLimit {
			str := fmt.Sprintf("transaction %v has %d fees which is under "+
				"the required amount of %d", txHash, txFee, minFee)
			return nil, nil, txRuleError(message.RejectInsufficientFee, str)
		}

		// Free-to-relay transactions are rate limited here to prevent
		// penny-flooding with tiny transactions as a form of attack.
		nowUnix := roughtime.Now().Unix()
		// Decay passed data with an exponentially decaying ~10 minute
		// window.
		mp.pennyTotal *= math.Pow(2.0,
			-float64(nowUnix-mp.lastPennyUnix)/(10*60))
		mp.lastPennyUnix = nowUnix

		// Are we still over the limit?
		if mp.pennyTotal >= mp.cfg.Policy.FreeTxRelayLimit*10*1000 {
			str := fmt.Sprintf("transaction %v has been rejected by the "+
				"rate limiter due to low fees", txHash)
			return nil, nil, txRuleError(message.RejectInsufficientFee, str)
		}
		oldTotal := mp.pennyTotal
		mp.pennyTotal += float64(serializedSize)
		log.Trace(fmt.Sprintf("rate limit: curTotal %v, nextTotal: %v, limit %v",
			oldTotal, mp.pennyTotal, mp.cfg.Policy.FreeTxRelayLimit*10*1000))
	}

	// A fee wildly above the relay minimum is almost certainly a wallet
	// bug rather than intent.
	if !allowHighFees {
		maxFee := calcMinRequiredTxRelayFee(serializedSize,
			mp.cfg.Policy.MinRelayTxFee*maxRelayFeeMultiplier)
		if txFee > maxFee {
			str := fmt.Sprintf("transaction %v has %d fee which is above "+
				"the allowHighFee check threshold amount of %d", txHash,
				txFee, maxFee)
			return nil, nil, txRuleError(message.RejectInvalid, str)
		}
	}

	// Verify scripts and signatures outside the pool mutex.  The
	// verifier only sees the transaction and its resolved coins, never
	// pool state, so the unlock cannot expose partial mutations.
	mp.mtx.Unlock()
	verr := mp.cfg.Verifier.VerifyTransaction(tx, coins, flags)
	mp.mtx.Lock()
	if verr != nil {
		if verify.IsUnavailable(verr) {
			str := fmt.Sprintf("transaction %v could not be verified: %v",
				txHash, verr)
			return nil, nil, txRuleError(message.RejectVerifierUnavailable, str)
		}
		str := fmt.Sprintf("transaction %v failed script verification: %v",
			txHash, verr)
		if verify.IsMalleated(verr) {
			return nil, nil, txRuleErrorMalleated(message.RejectScriptInvalid, str)
		}
		return nil, nil, txRuleError(message.RejectScriptInvalid, str)
	}

	// The pool may have changed while the lock was released.  Revalidate
	// everything the commit depends on before mutating state.
	if mp.isTransactionInPool(txHash) || (rejectDupOrphans &&
		mp.isOrphanInPool(txHash)) {

		str := fmt.Sprintf("already have transaction %v", txHash)
		return nil, nil, txRuleError(message.RejectDuplicate, str)
	}
	if err := mp.checkPoolDoubleSpend(tx); err != nil {
		return nil, nil, err
	}
	if _, missing, err = mp.fetchInputCoins(tx); err != nil {
		return nil, nil, err
	}
	if len(missing) > 0 {
		return missing, nil, nil
	}

	txD := mp.addTransaction(tx, nextBlockHeight, txFee)
	return nil, txD, nil
}

// MaybeAcceptTransaction is the primary interface for adding new
// transactions to the mempool.  It includes the full admission pipeline but
// does not park orphans or cascade orphan resolution.  The returned slice
// holds the outpoints the transaction is waiting on when it is an orphan
// candidate.
func (mp *TxPool) MaybeAcceptTransaction(tx *types.Tx, isNew, rateLimit bool) ([]types.TxOutPoint, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	missing, _, err := mp.maybeAcceptTransaction(tx, isNew, rateLimit, true,
		true, false)
	if err != nil {
		mp.recordRejection(tx, err)
	}
	return missing, err
}

// processOrphans determines if there are any orphans which depend on the
// passed transaction (they are no longer orphans if true) and potentially
// accepts them.  It repeats the process for the newly accepted transactions
// until there are no more.  The cascade is bounded so an adversarial
// dependency graph cannot monopolize the pool.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) processOrphans(acceptedTx *types.Tx) []*TxDesc {
	var acceptedTxns []*TxDesc
	processed := 0

	processList := []*types.Tx{acceptedTx}
	for len(processList) > 0 {
		processItem := processList[0]
		processList = processList[1:]

		prevOut := types.TxOutPoint{Hash: *processItem.Hash()}
		for txOutIdx := range processItem.Transaction().TxOut {
			// Look up all orphans that redeem the output that is now
			// available.  This will typically only be one, but it could
			// be multiple if the orphan pool contains double spends.
			prevOut.OutIndex = uint32(txOutIdx)
			orphans, exists := mp.orphansByPrev[prevOut]
			if !exists {
				continue
			}

			for _, orphan := range orphans {
				if processed >= maxOrphanCascade {
					return acceptedTxns
				}
				processed++

				// The candidate is still parked while it is
				// re-evaluated, so duplicate-orphan rejection must be
				// off or no orphan could ever be promoted.
				missing, txD, err := mp.maybeAcceptTransaction(orphan,
					true, true, false, false, false)
				if err != nil {
					// The orphan is now invalid, so there is no way
					// any other orphans which redeem any of its
					// outputs can be accepted.  Remove them all.
					mp.removeOrphan(orphan, true)
					mp.recordRejection(orphan, err)
					break
				}
				if len(missing) > 0 {
					// The orphan is still waiting on other parents.
					continue
				}

				// The orphan was accepted, so remove it from the orphan
				// pool and add its outputs to the set to process.
				mp.removeOrphan(orphan, false)
				mp.metrics.resolved.Inc(1)
				acceptedTxns = append(acceptedTxns, txD)
				processList = append(processList, orphan)

				// Only one transaction for this outpoint can be
				// accepted, so the rest are necessarily double spends.
				break
			}
		}
	}

	// Remove any orphans that double spend outpoints claimed by the
	// passed transaction or the accepted orphans.  They can never become
	// valid now.
	mp.removeOrphanDoubleSpends(acceptedTx)
	for _, txD := range acceptedTxns {
		mp.removeOrphanDoubleSpends(txD.Tx)
	}
	return acceptedTxns
}

// ProcessOrphans determines if there are any orphans which depend on the
// passed transaction and potentially accepts them to the memory pool.  It
// returns the transactions, if any, that were accepted.
func (mp *TxPool) ProcessOrphans(acceptedTx *types.Tx) []*TxDesc {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	return mp.processOrphans(acceptedTx)
}

// ProcessTransaction is the main workhorse for handling insertion of new
// free-standing transactions into the memory pool.  It includes the full
// admission pipeline, orphan parking, orphan resolution cascades, and
// recording of cacheable rejections.
//
// It returns a slice of transactions added to the mempool.  When the error
// is nil, the first entry is the passed transaction itself unless it was
// parked as an orphan, and any additional entries are formerly-orphaned
// descendants that became acceptable.
func (mp *TxPool) ProcessTransaction(tx *types.Tx, allowOrphan, rateLimit,
	allowHighFees bool) ([]*TxDesc, error) {

	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	log.Tracef("Processing transaction %v: %v", tx.Hash(),
		l.NewLogClosure(func() string {
			return spew.Sdump(tx.Transaction())
		}))

	missing, txD, err := mp.maybeAcceptTransaction(tx, true, rateLimit,
		allowHighFees, true, false)
	if err != nil {
		mp.recordRejection(tx, err)
		return nil, err
	}

	if len(missing) == 0 {
		acceptedTxs := append([]*TxDesc{txD}, mp.processOrphans(tx)...)
		return acceptedTxs, nil
	}

	// The transaction is an orphan (has inputs missing).
	if !allowOrphan {
		// Only use the first missing outpoint in the error message.
		// The exact transaction with the missing parent is not
		// relevant to the caller anyway.
		str := fmt.Sprintf("orphan transaction %v references outputs of "+
			"unknown or fully-spent transaction %v", tx.Hash(),
			missing[0].Hash)
		return nil, txRuleError(message.RejectDuplicate, str)
	}

	// Potentially park the orphan, subject to limits.
	if err := mp.maybeAddOrphan(tx, missing); err != nil {
		mp.recordRejection(tx, err)
		return nil, err
	}
	return nil, nil
}

// PruneExpiredTx evicts pooled transactions whose expiry height has passed
// or that have outlived the configured retention window.
func (mp *TxPool) PruneExpiredTx() {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	nextBlockHeight := mp.cfg.BestHeight() + 1
	expiry := mp.cfg.Policy.Expiry
	if expiry <= 0 {
		expiry = DefaultMempoolExpiry
	}
	cutoff := roughtime.Now().Add(-expiry)

	for _, txD := range mp.expiredDescs(nextBlockHeight, cutoff) {
		log.Debug(fmt.Sprintf("Pruning expired transaction %v", txD.Tx.Hash()))
		mp.removeTransaction(txD.Tx, true, RemoveReasonExpired)
	}
}

// expiredDescs collects the descriptors eligible for expiry pruning.  It
// snapshots before removal so eviction recursion cannot invalidate the map
// iteration.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) expiredDescs(nextBlockHeight uint64, cutoff time.Time) []*TxDesc {
	var expired []*TxDesc
	for _, txD := range mp.pool {
		if isExpired(txD.Tx, nextBlockHeight) || txD.Added.Before(cutoff) {
			expired = append(expired, txD)
		}
	}
	return expired
}
