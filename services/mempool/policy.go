// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2017-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"

	"github.com/aurumproject/aurum/core/types"
	"github.com/aurumproject/aurum/engine/verify"
)

const (
	// maxStandardTxSize is the maximum size allowed for transactions that
	// are considered standard and will therefore be relayed and
	// considered for mining.
	maxStandardTxSize = 100000

	// maxStandardSigScriptSize is the maximum size allowed for a
	// transaction input signature script to be considered standard.  This
	// value allows for a 15-of-15 CHECKMULTISIG pay-to-script-hash with
	// compressed keys.
	maxStandardSigScriptSize = 1650

	// DefaultMinRelayTxFee is the minimum fee in atoms that is required
	// for a transaction to be treated as free.  It is also used to help
	// determine if a transaction is considered dust and as a base for
	// calculating minimum required fees for larger transactions.  This
	// value is in atoms/kB.
	DefaultMinRelayTxFee = types.Amount(1e4)

	// maxRelayFeeMultiplier is the factor that we disallow fees / kB
	// above the minimum tx fee.
	maxRelayFeeMultiplier = 1e4

	// DefaultMaxOrphanTxs is the default maximum number of orphan
	// transactions that can be queued.
	DefaultMaxOrphanTxs = 100

	// DefaultMaxOrphanTxSize is the default maximum size allowed for
	// orphan transactions.
	DefaultMaxOrphanTxSize = 5000

	// DefaultMempoolExpiry is the default duration a pooled transaction
	// is retained before it becomes eligible for expiry pruning.
	DefaultMempoolExpiry = time.Hour * 24

	// orphanTTL is the maximum amount of time an orphan is allowed to
	// stay in the orphan pool before it expires and is evicted during
	// the next scan.
	orphanTTL = time.Minute * 15

	// orphanExpireScanInterval is the minimum amount of time in between
	// scans of the orphan pool to evict expired transactions.
	orphanExpireScanInterval = time.Minute * 5

	// maxOrphanCascade bounds the total number of orphans re-admitted by
	// a single resolution cascade.  Outpoints strictly reference earlier
	// transactions so a cycle cannot occur, but the bound keeps an
	// adversarial dependency graph from monopolizing the serialized
	// section.
	maxOrphanCascade = 1000

	// CoinbaseMaturity is the number of blocks a coinbase output must
	// age before the pool accepts a spend of it.
	CoinbaseMaturity = 16
)

// Policy houses the policy (configuration parameters) which is used to
// control the mempool.
type Policy struct {
	// MaxTxVersion is the max transaction version that the mempool
	// should accept.  All transactions above this version are rejected
	// as non-standard.
	MaxTxVersion uint16

	// AcceptNonStd defines whether to accept and relay non-standard
	// transactions to the network.  If true, non-standard transactions
	// will be accepted into the mempool and relayed to the rest of the
	// network.  Otherwise, all non-standard transactions will be
	// rejected.
	AcceptNonStd bool

	// FreeTxRelayLimit defines the given amount in thousands of bytes
	// per minute that transactions with no fee are rate limited to.
	FreeTxRelayLimit float64

	// MaxOrphanTxs is the maximum number of orphan transactions that
	// can be queued.
	MaxOrphanTxs int

	// MaxOrphanTxSize is the maximum size allowed for orphan
	// transactions.  This helps prevent memory exhaustion attacks from
	// sending a lot of big orphans.
	MaxOrphanTxSize int

	// MinRelayTxFee defines the minimum transaction fee in atoms/kB.
	MinRelayTxFee types.Amount

	// Expiry is how long a pooled transaction is retained before
	// PruneExpiredTx evicts it.
	Expiry time.Duration

	// StandardVerifyFlags defines the function to retrieve the flags to
	// use for verifying scripts for the block after the current best
	// block.
	//
	// This function must be safe for concurrent access.
	StandardVerifyFlags func() (verify.Flags, error)
}

// calcMinRequiredTxRelayFee returns the minimum transaction fee required
// for a transaction with the passed serialized size to be accepted into
// the memory pool and relayed.
func calcMinRequiredTxRelayFee(serializedSize int64, minRelayTxFee types.Amount) int64 {
	// Calculate the minimum fee for a transaction to be allowed into the
	// mempool and relayed by scaling the base fee.  minRelayTxFee is in
	// atoms/kB so multiply by serializedSize (which is in bytes) and
	// divide by 1000 to get minimum atoms.
	minFee := (serializedSize * int64(minRelayTxFee)) / 1000

	if minFee == 0 && minRelayTxFee > 0 {
		minFee = int64(minRelayTxFee)
	}

	// Set the minimum fee to the maximum possible value if the calculated
	// fee is not in the valid range for monetary amounts.
	if minFee < 0 || minFee > types.MaxAmount {
		minFee = types.MaxAmount
	}

	return minFee
}

// isDust returns whether or not the passed transaction output amount is
// considered dust or not based on the passed minimum transaction relay fee.
// Dust is defined in terms of the minimum transaction relay fee.  In
// particular, if the cost to the network to spend coins is more than 1/3 of
// the minimum transaction relay fee, it is considered dust.
func isDust(txOut *types.TxOutput, minRelayTxFee types.Amount) bool {
	// Unspendable outputs are considered dust.
	if len(txOut.PkScript) == 0 {
		return true
	}

	// Data-carrier outputs are provably unspendable and therefore exempt
	// from the dust value comparison.
	if isDataCarrier(txOut.PkScript) {
		return false
	}

	// The total serialized size consists of the output and the
	// associated input script to redeem it.  Since there is no input
	// script to redeem it yet, use the minimum size of a typical p2pkh
	// input script (165 bytes).
	totalSize := txOut.SerializeSize() + 165

	// The output is considered dust if the cost to the network to spend
	// the coins is more than 1/3 of the minimum free transaction relay
	// fee.  minRelayTxFee is in atoms/kB, so multiply by 1000 to convert
	// to bytes.
	//
	// The following is equivalent to (value/totalSize) * (1/3) * 1000
	// without needing to do floating point math.
	return int64(txOut.Amount)*1000/(3*int64(totalSize)) < int64(minRelayTxFee)
}

// opReturn is the opcode marking a data-carrier output script.
const opReturn = 0x6a

// isDataCarrier reports whether the script is a null-data script that only
// carries data.
func isDataCarrier(pkScript []byte) bool {
	return len(pkScript) > 0 && pkScript[0] == opReturn
}
