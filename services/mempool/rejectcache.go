// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/core/types"
	"github.com/aurumproject/aurum/engine/verify"
	"github.com/decred/dcrd/lru"
)

// defaultRejectCacheLimit is the maximum number of identity hashes retained
// by the reject cache.
const defaultRejectCacheLimit = 50000

// rejectCache is the negative cache of identity hashes known to fail
// admission.  It exists to amortize repeated submissions of the same
// invalid transaction; membership is advisory and bounded, never a
// consensus judgement.
//
// Writers must never record a malleation-classified rejection: the same
// identity hash could be resubmitted with corrected witness bytes, and a
// cached entry would poison it permanently.  That filtering happens in
// shouldCacheRejection before any write reaches this type.
//
// Premature-locktime rejections are deterministic for the identity but
// only until the chain reaches the declared lock time, so they are held in
// a separate gated set whose entries stop matching once the gate opens.
//
// The cache is owned by the pool's serialized section and performs no
// locking of its own.
type rejectCache struct {
	limit  uint32
	hashes lru.Cache

	// gated maps identities rejected for premature locktime to the raw
	// lock time that must pass before they become eligible again.
	gated map[hash.Hash]uint32

	// flags pins the script flag set the cached verdicts were produced
	// under.  A different flag set can turn cached failures into
	// successes, so the cache resets when it changes.
	flags verify.Flags
}

func newRejectCache(limit uint32) *rejectCache {
	return &rejectCache{
		limit:  limit,
		hashes: lru.NewCache(uint(limit)),
		gated:  make(map[hash.Hash]uint32),
	}
}

// isRejected returns whether the identity hash is recorded as known
// invalid as of the passed next block height and median time.  A gated
// entry whose lock time has passed no longer matches and is dropped.
func (rc *rejectCache) isRejected(h *hash.Hash, nextHeight uint64, medianTime time.Time) bool {
	if rc.hashes.Contains(*h) {
		return true
	}
	gate, ok := rc.gated[*h]
	if !ok {
		return false
	}

	var blockTimeOrHeight int64
	if gate < types.LockTimeThreshold {
		blockTimeOrHeight = int64(nextHeight)
	} else {
		blockTimeOrHeight = medianTime.Unix()
	}
	if int64(gate) < blockTimeOrHeight {
		delete(rc.gated, *h)
		return false
	}
	return true
}

// reject records the identity hash as known invalid.
func (rc *rejectCache) reject(h *hash.Hash) {
	rc.hashes.Add(*h)
}

// rejectGated records the identity hash as invalid until the chain passes
// the transaction's declared lock time.
func (rc *rejectCache) rejectGated(h *hash.Hash, lockTime uint32) {
	if uint32(len(rc.gated)) >= rc.limit {
		for k := range rc.gated {
			delete(rc.gated, k)
			break
		}
	}
	rc.gated[*h] = lockTime
}

// clear removes a stale entry, typically because the hash was confirmed in
// a block or superseded, so a previously-rejected identity is not
// permanently blacklisted.
func (rc *rejectCache) clear(h *hash.Hash) {
	rc.hashes.Delete(*h)
	delete(rc.gated, *h)
}

// reset drops every entry.  It runs on reorg boundaries where the active
// script flags changed since the verdicts were cached.
func (rc *rejectCache) reset() {
	rc.hashes = lru.NewCache(uint(rc.limit))
	rc.gated = make(map[hash.Hash]uint32)
}

// checkFlags resets the cache when the active script flag set differs from
// the one the cached verdicts were produced under.
func (rc *rejectCache) checkFlags(flags verify.Flags) {
	if flags != rc.flags {
		rc.flags = flags
		rc.reset()
	}
}
