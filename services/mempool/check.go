// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2017-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"time"

	"github.com/aurumproject/aurum/core/message"
	"github.com/aurumproject/aurum/core/types"
)

// maxNullDataOutputs is the maximum number of data-carrier outputs in a
// transaction, after which it is considered non-standard.
const maxNullDataOutputs = 4

// isFinalized returns whether the transaction's lock time has been reached
// relative to the given block height and median time, making it eligible
// for inclusion in the next block.  A transaction whose inputs all carry
// the maximum sequence number is final regardless of its lock time.
func isFinalized(tx *types.Tx, blockHeight uint64, medianTime time.Time) bool {
	msgTx := tx.Transaction()

	// Lock time of zero means the transaction is finalized.
	lockTime := msgTx.LockTime
	if lockTime == 0 {
		return true
	}

	// The lock time field of a transaction is either a block height at
	// which the transaction is finalized or a timestamp depending on if
	// the value is before the LockTimeThreshold.
	var blockTimeOrHeight int64
	if lockTime < types.LockTimeThreshold {
		blockTimeOrHeight = int64(blockHeight)
	} else {
		blockTimeOrHeight = medianTime.Unix()
	}
	if int64(lockTime) < blockTimeOrHeight {
		return true
	}

	// At this point, the transaction's lock time hasn't occurred yet,
	// but the transaction might still be finalized if the sequence
	// number for all transaction inputs is maxed out.
	for _, txIn := range msgTx.TxIn {
		if txIn.Sequence != types.MaxTxInSequenceNum {
			return false
		}
	}
	return true
}

// isExpired returns whether the transaction is expired as of the given
// block height.
func isExpired(tx *types.Tx, blockHeight uint64) bool {
	expire := tx.Transaction().Expire
	return expire != types.NoExpiryValue && uint64(expire) <= blockHeight
}

// checkTransactionSanity performs context-free structural checks that hold
// for every transaction regardless of policy.
func checkTransactionSanity(tx *types.Tx) error {
	msgTx := tx.Transaction()

	if len(msgTx.TxIn) == 0 {
		return txRuleError(message.RejectMalformed, "transaction has no inputs")
	}
	if len(msgTx.TxOut) == 0 {
		return txRuleError(message.RejectMalformed, "transaction has no outputs")
	}

	var total int64
	for i, txOut := range msgTx.TxOut {
		amount := int64(txOut.Amount)
		if amount < 0 {
			str := fmt.Sprintf("transaction output %d has negative value %d", i, amount)
			return txRuleError(message.RejectInvalid, str)
		}
		if amount > types.MaxAmount {
			str := fmt.Sprintf("transaction output %d of %d is higher than the max allowed value of %d", i, amount, int64(types.MaxAmount))
			return txRuleError(message.RejectInvalid, str)
		}
		total += amount
		if total > types.MaxAmount {
			str := fmt.Sprintf("total value of all transaction outputs exceeds the max allowed value of %d", int64(types.MaxAmount))
			return txRuleError(message.RejectInvalid, str)
		}
	}

	// Check for duplicate transaction inputs.
	existingOutPoints := make(map[types.TxOutPoint]struct{})
	for _, txIn := range msgTx.TxIn {
		if _, exists := existingOutPoints[txIn.PreviousOut]; exists {
			return txRuleError(message.RejectInvalid,
				"transaction contains duplicate inputs")
		}
		existingOutPoints[txIn.PreviousOut] = struct{}{}
	}
	return nil
}

// checkTransactionStandard performs a series of checks on a transaction to
// ensure it is a "standard" transaction.  A standard transaction is one
// that conforms to several additional limiting cases over what is
// considered a "sane" transaction such as having a version in the
// supported range, being finalized, conforming to more stringent size
// constraints, and not containing "dust" outputs (those that are so small
// it costs more to process them than they are worth).
func checkTransactionStandard(tx *types.Tx, height uint64,
	medianTime time.Time, minRelayTxFee types.Amount,
	maxTxVersion uint16) error {

	msgTx := tx.Transaction()

	// The transaction must be a currently supported version.
	if msgTx.Version > uint32(maxTxVersion) || msgTx.Version < 1 {
		str := fmt.Sprintf("transaction version %d is not in the "+
			"valid range of %d-%d", msgTx.Version, 1, maxTxVersion)
		return txRuleError(message.RejectNonstandard, str)
	}

	// Since extremely large transactions with a lot of inputs can cost
	// almost as much to process as the sender fees, limit the maximum
	// size of a transaction.  This also helps mitigate CPU exhaustion
	// attacks.
	serializedLen := msgTx.SerializeSize()
	if serializedLen > maxStandardTxSize {
		str := fmt.Sprintf("transaction size of %v is larger than max "+
			"allowed size of %v", serializedLen, maxStandardTxSize)
		return txRuleError(message.RejectNonstandard, str)
	}

	for i, txIn := range msgTx.TxIn {
		// Each transaction input signature script must not exceed the
		// maximum size allowed for a standard transaction.  See the
		// comment on maxStandardSigScriptSize for more details.
		sigScriptLen := len(txIn.SignScript)
		if sigScriptLen > maxStandardSigScriptSize {
			str := fmt.Sprintf("transaction input %d: signature "+
				"script size of %d bytes is larger than max "+
				"allowed size of %d bytes", i, sigScriptLen,
				maxStandardSigScriptSize)
			return txRuleError(message.RejectNonstandard, str)
		}
	}

	// None of the outputs may be "dust" except data-carrier scripts, and
	// a standard transaction must not carry more than a handful of
	// those.
	numNullDataOutputs := 0
	for i, txOut := range msgTx.TxOut {
		if isDataCarrier(txOut.PkScript) {
			numNullDataOutputs++
			continue
		}
		if isDust(txOut, minRelayTxFee) {
			str := fmt.Sprintf("transaction output %d: payment "+
				"of %d is dust", i, txOut.Amount)
			return txRuleError(message.RejectDust, str)
		}
	}

	if numNullDataOutputs > maxNullDataOutputs {
		str := fmt.Sprintf("more than %d data-carrier outputs", maxNullDataOutputs)
		return txRuleError(message.RejectNonstandard, str)
	}

	return nil
}

// checkPoolDoubleSpend checks whether or not the passed transaction is
// attempting to spend coins already spent by other transactions in the
// pool.  Note it does not check for double spends against transactions
// already in the main chain.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) checkPoolDoubleSpend(tx *types.Tx) error {
	for _, txIn := range tx.Transaction().TxIn {
		if txR, exists := mp.outpoints[txIn.PreviousOut]; exists {
			str := fmt.Sprintf("output %v already spent by "+
				"transaction %v in the pool", txIn.PreviousOut, txR.Hash())
			return txRuleError(message.RejectConflict, str)
		}
	}
	return nil
}
