// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"testing"
	"time"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTx() *Transaction {
	prevHash := hash.MustHexToHash("66e2b6cbc2ec4a2a6b0b1b4c6e5ccab8e5b83908b5a3ffa4bd7a4a1e32e4b6f3")
	tx := NewTransaction()
	tx.Timestamp = time.Unix(1700000000, 0)
	tx.AddTxIn(&TxInput{
		PreviousOut: TxOutPoint{Hash: prevHash, OutIndex: 1},
		Sequence:    MaxTxInSequenceNum,
		SignScript:  []byte{0x04, 0x31, 0xdc, 0x00, 0x1b},
	})
	tx.AddTxOut(&TxOutput{
		Amount:   0x3000000000,
		PkScript: []byte{0x51},
	})
	return tx
}

func TestTxSerializeRoundTrip(t *testing.T) {
	tx := testTx()

	serialized, err := tx.Serialize()
	require.NoError(t, err)
	assert.Equal(t, tx.SerializeSize(), len(serialized))

	var decoded Transaction
	require.NoError(t, decoded.Deserialize(bytes.NewReader(serialized)))

	assert.Equal(t, tx.Version, decoded.Version)
	assert.Equal(t, tx.LockTime, decoded.LockTime)
	assert.Equal(t, tx.Expire, decoded.Expire)
	assert.Equal(t, tx.Timestamp.Unix(), decoded.Timestamp.Unix())
	require.Equal(t, len(tx.TxIn), len(decoded.TxIn))
	assert.Equal(t, tx.TxIn[0].PreviousOut, decoded.TxIn[0].PreviousOut)
	assert.Equal(t, tx.TxIn[0].SignScript, decoded.TxIn[0].SignScript)
	require.Equal(t, len(tx.TxOut), len(decoded.TxOut))
	assert.Equal(t, tx.TxOut[0].Amount, decoded.TxOut[0].Amount)
	assert.Equal(t, tx.TxOut[0].PkScript, decoded.TxOut[0].PkScript)
}

func TestTxSerializeNoWitness(t *testing.T) {
	tx := testTx()

	serialized, err := tx.SerializeNoWitness()
	require.NoError(t, err)
	assert.Equal(t, tx.SerializeSizeNoWitness(), len(serialized))

	var decoded Transaction
	require.NoError(t, decoded.Deserialize(bytes.NewReader(serialized)))
	require.Equal(t, 1, len(decoded.TxIn))
	assert.Nil(t, decoded.TxIn[0].SignScript)
}

// The identity hash covers only the prefix, so mutating the signature script
// must leave TxHash unchanged while changing TxHashFull.
func TestTxHashMalleability(t *testing.T) {
	tx := testTx()
	idHash := tx.TxHash()
	fullHash := tx.TxHashFull()

	mutated := testTx()
	mutated.TxIn[0].SignScript = []byte{0x04, 0x31, 0xdc, 0x00, 0x1c}

	mutatedID := mutated.TxHash()
	mutatedFull := mutated.TxHashFull()
	assert.True(t, idHash.IsEqual(&mutatedID))
	assert.False(t, fullHash.IsEqual(&mutatedFull))
}

func TestTxHashCaching(t *testing.T) {
	tx := testTx()
	h1 := tx.CachedTxHash()
	h2 := tx.CachedTxHash()
	assert.Same(t, h1, h2)

	want := tx.TxHash()
	assert.True(t, want.IsEqual(h1))

	wrapped := NewTx(tx)
	assert.True(t, want.IsEqual(wrapped.Hash()))
	assert.Equal(t, TxIndexUnknown, wrapped.Index())
}

func TestIsCoinBase(t *testing.T) {
	coinbase := NewTransaction()
	coinbase.AddTxIn(&TxInput{
		PreviousOut: TxOutPoint{Hash: hash.ZeroHash, OutIndex: MaxPrevOutIndex},
		Sequence:    MaxTxInSequenceNum,
	})
	coinbase.AddTxOut(&TxOutput{Amount: 50 * AtomsPerCoin, PkScript: []byte{0x51}})
	assert.True(t, coinbase.IsCoinBase())

	assert.False(t, testTx().IsCoinBase())
}

func TestCoinRoundTrip(t *testing.T) {
	coin := &Coin{
		Amount:   12345,
		PkScript: []byte{0x76, 0xa9, 0x14},
		Height:   88,
		CoinBase: true,
	}

	var buf bytes.Buffer
	require.NoError(t, coin.Encode(&buf))
	assert.Equal(t, coin.SerializeSize(), buf.Len())

	var decoded Coin
	require.NoError(t, decoded.Decode(&buf))
	assert.Equal(t, coin, &decoded)

	clone := coin.Clone()
	assert.Equal(t, coin, clone)
	clone.PkScript[0] = 0x00
	assert.NotEqual(t, coin.PkScript, clone.PkScript)
}

func TestAmountFormatting(t *testing.T) {
	a, err := NewAmount(1.5)
	require.NoError(t, err)
	assert.Equal(t, Amount(150000000), a)
	assert.Equal(t, 1.5, a.ToCoin())
}
