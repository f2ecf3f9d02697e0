// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package worker

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/core/types"
	"github.com/aurumproject/aurum/engine/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// funcVerifier adapts a function to the verify.Verifier interface.
type funcVerifier func(tx *types.Tx, coins []*types.Coin, flags verify.Flags) error

func (f funcVerifier) VerifyTransaction(tx *types.Tx, coins []*types.Coin, flags verify.Flags) error {
	return f(tx, coins, flags)
}

func testJobTx(t *testing.T) (*types.Tx, []*types.Coin) {
	t.Helper()

	prevHash := hash.DoubleHashH([]byte("worker test funding"))
	mtx := types.NewTransaction()
	mtx.Timestamp = time.Unix(1700000000, 0)
	mtx.AddTxIn(&types.TxInput{
		PreviousOut: types.TxOutPoint{Hash: prevHash, OutIndex: 0},
		Sequence:    types.MaxTxInSequenceNum,
		SignScript:  []byte{0x01, 0x02, 0x03},
	})
	mtx.AddTxOut(&types.TxOutput{Amount: 90000, PkScript: []byte{0x51}})

	coins := []*types.Coin{{
		Amount:   100000,
		PkScript: []byte{0x51},
		Height:   10,
	}}
	return types.NewTx(mtx), coins
}

func TestJobFrameRoundTrip(t *testing.T) {
	tx, coins := testJobTx(t)
	in := &job{id: 7, flags: verify.StandardFlags, tx: tx, coins: coins}

	var buf bytes.Buffer
	require.NoError(t, writeJob(&buf, in))

	out, err := readJob(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.id, out.id)
	assert.Equal(t, in.flags, out.flags)
	assert.True(t, tx.Hash().IsEqual(out.tx.Hash()))
	require.Equal(t, len(coins), len(out.coins))
	assert.Equal(t, coins[0], out.coins[0])
}

func TestVerdictFrameRoundTrip(t *testing.T) {
	in := &verdict{id: 9, status: statusMalleated, reason: "signature not DER"}

	var buf bytes.Buffer
	require.NoError(t, writeVerdict(&buf, in))

	out, err := readVerdict(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	err = verdictError(out)
	require.Error(t, err)
	assert.True(t, verify.IsMalleated(err))
	assert.False(t, verify.IsUnavailable(err))
}

func TestPoolVerifies(t *testing.T) {
	accept := funcVerifier(func(tx *types.Tx, coins []*types.Coin, flags verify.Flags) error {
		if flags != verify.StandardFlags {
			return verify.NewError("unexpected flags", false)
		}
		return nil
	})

	pool, err := NewPool(Config{Workers: 2, Spawn: PipeSpawner(accept)})
	require.NoError(t, err)
	defer pool.Close()

	tx, coins := testJobTx(t)
	assert.NoError(t, pool.VerifyTransaction(tx, coins, verify.StandardFlags))
}

func TestPoolPropagatesVerdicts(t *testing.T) {
	reject := funcVerifier(func(tx *types.Tx, coins []*types.Coin, flags verify.Flags) error {
		return verify.NewError("script returned false", false)
	})

	pool, err := NewPool(Config{Workers: 1, Spawn: PipeSpawner(reject)})
	require.NoError(t, err)
	defer pool.Close()

	tx, coins := testJobTx(t)
	err = pool.VerifyTransaction(tx, coins, verify.StandardFlags)
	require.Error(t, err)
	assert.Equal(t, "script returned false", err.Error())
	assert.False(t, verify.IsUnavailable(err))
	assert.False(t, verify.IsMalleated(err))
}

func TestPoolPropagatesMalleation(t *testing.T) {
	malleated := funcVerifier(func(tx *types.Tx, coins []*types.Coin, flags verify.Flags) error {
		return verify.NewError("high S signature", true)
	})

	pool, err := NewPool(Config{Workers: 1, Spawn: PipeSpawner(malleated)})
	require.NoError(t, err)
	defer pool.Close()

	tx, coins := testJobTx(t)
	err = pool.VerifyTransaction(tx, coins, verify.StandardFlags)
	require.Error(t, err)
	assert.True(t, verify.IsMalleated(err))
}

// brokenTransport fails every operation, simulating a worker that died
// immediately.
type brokenTransport struct{}

func (brokenTransport) Read(p []byte) (int, error)  { return 0, assert.AnError }
func (brokenTransport) Write(p []byte) (int, error) { return 0, assert.AnError }
func (brokenTransport) Close() error                { return nil }

func TestPoolWorkerLoss(t *testing.T) {
	pool, err := NewPool(Config{
		Workers: 1,
		Spawn:   func() (Transport, error) { return brokenTransport{}, nil },
	})
	require.NoError(t, err)
	defer pool.Close()

	tx, coins := testJobTx(t)
	err = pool.VerifyTransaction(tx, coins, verify.StandardFlags)
	require.Error(t, err)
	assert.True(t, verify.IsUnavailable(err))
}

func TestPoolConcurrentJobs(t *testing.T) {
	accept := funcVerifier(func(tx *types.Tx, coins []*types.Coin, flags verify.Flags) error {
		return nil
	})

	pool, err := NewPool(Config{Workers: 4, Spawn: PipeSpawner(accept)})
	require.NoError(t, err)
	defer pool.Close()

	tx, coins := testJobTx(t)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := 0; i < len(errs); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = pool.VerifyTransaction(tx, coins, verify.StandardFlags)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestPoolClosed(t *testing.T) {
	accept := funcVerifier(func(tx *types.Tx, coins []*types.Coin, flags verify.Flags) error {
		return nil
	})

	pool, err := NewPool(Config{Workers: 1, Spawn: PipeSpawner(accept)})
	require.NoError(t, err)
	pool.Close()

	tx, coins := testJobTx(t)
	err = pool.VerifyTransaction(tx, coins, verify.StandardFlags)
	assert.True(t, verify.IsUnavailable(err))
}
