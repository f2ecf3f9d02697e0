// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package verify

import (
	"testing"
	"time"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structuralTx(signScript []byte) *types.Tx {
	mtx := &types.Transaction{
		Version:   types.TxVersion,
		Timestamp: time.Unix(1700000000, 0),
	}
	mtx.AddTxIn(&types.TxInput{
		PreviousOut: types.TxOutPoint{Hash: hash.Hash{0x01}, OutIndex: 0},
		SignScript:  signScript,
		Sequence:    types.MaxTxInSequenceNum,
	})
	mtx.AddTxOut(types.NewTxOutput(1000, []byte{0x76, 0xa9}))
	return types.NewTx(mtx)
}

func TestStructuralVerifierAccepts(t *testing.T) {
	v := StructuralVerifier{}
	coins := []*types.Coin{{Amount: 2000, PkScript: []byte{0x76, 0xa9}}}

	err := v.VerifyTransaction(structuralTx([]byte{0x51}), coins, StandardFlags)
	assert.NoError(t, err)
}

func TestStructuralVerifierStrippedWitness(t *testing.T) {
	v := StructuralVerifier{}
	coins := []*types.Coin{{Amount: 2000, PkScript: []byte{0x76, 0xa9}}}

	err := v.VerifyTransaction(structuralTx(nil), coins, StandardFlags)
	require.Error(t, err)
	assert.True(t, IsMalleated(err))
}

func TestStructuralVerifierUnexpectedWitness(t *testing.T) {
	v := StructuralVerifier{}
	coins := []*types.Coin{{Amount: 2000, PkScript: nil}}

	err := v.VerifyTransaction(structuralTx([]byte{0x51}), coins, StandardFlags)
	require.Error(t, err)
	assert.True(t, IsMalleated(err))
}

func TestStructuralVerifierCoinMismatch(t *testing.T) {
	v := StructuralVerifier{}

	err := v.VerifyTransaction(structuralTx([]byte{0x51}), nil, StandardFlags)
	require.Error(t, err)
	assert.False(t, IsMalleated(err))
}
