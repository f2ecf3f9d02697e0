// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2017-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"

	"github.com/aurumproject/aurum/core/event"
	"github.com/aurumproject/aurum/core/types"
	"github.com/aurumproject/aurum/engine/verify"
)

// Config is a descriptor containing the memory pool configuration.  The
// chain authority and the verification engine are injected as callbacks so
// the pool carries no process-wide state of its own.
type Config struct {
	// Policy defines the various mempool configuration options related
	// to policy.
	Policy Policy

	// FetchCoin defines the function to use to fetch the unspent output
	// for an outpoint from the confirmed chain.  It returns nil (with a
	// nil error) when the outpoint does not exist or is already spent.
	FetchCoin func(types.TxOutPoint) (*types.Coin, error)

	// BestHeight defines the function to use to access the block height
	// of the current best chain.
	BestHeight func() uint64

	// PastMedianTime defines the function to use in order to access the
	// median time calculated from the point-of-view of the current chain
	// tip within the best chain.
	PastMedianTime func() time.Time

	// Verifier executes script and signature validation.  It is invoked
	// outside the pool mutex and must therefore be safe for concurrent
	// access.
	Verifier verify.Verifier

	// Events receives the pool's notifications in commit order.  It may
	// be nil when no collaborator subscribes.
	Events *event.Feed

	// DataDir is the directory the mempool snapshot file is written to.
	DataDir string

	// Persist enables loading and saving the snapshot file.
	Persist bool

	// NoMempoolBar disables the progress bar shown while loading a
	// snapshot.
	NoMempoolBar bool
}
