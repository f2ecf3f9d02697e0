// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hash

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/blake2b"
)

func TestHashB(t *testing.T) {
	data := []byte("aurum test vector")
	want := blake2b.Sum256(data)
	assert.Equal(t, want[:], HashB(data))
	assert.Equal(t, Hash(want), HashH(data))
}

func TestDoubleHash(t *testing.T) {
	data := []byte("aurum test vector")
	first := blake2b.Sum256(data)
	second := blake2b.Sum256(first[:])
	assert.Equal(t, second[:], DoubleHashB(data))
	assert.Equal(t, Hash(second), DoubleHashH(data))
}

func TestGetHasher(t *testing.T) {
	sizes := map[HashType]int{
		SHA256:      32,
		SHA3_256:    32,
		Ripemd160:   20,
		Blake2b_256: 32,
		Blake2b_512: 64,
		Blake256:    32,
	}
	for ht, size := range sizes {
		hasher := GetHasher(ht)
		if hasher == nil {
			t.Fatalf("no hasher for type %d", ht)
		}
		hasher.Write([]byte{0x01})
		if got := len(hasher.Sum(nil)); got != size {
			t.Errorf("hash type %d: got digest size %d, want %d", ht, got, size)
		}
	}
	assert.Nil(t, GetHasher(HashType(0xff)))
}

func TestHash160(t *testing.T) {
	digest := Hash160([]byte("pay to me"))
	assert.Equal(t, 20, len(digest))

	// Hash160 is ripemd160 over the blake2b-256 digest.
	inner := HashB([]byte("pay to me"))
	assert.Equal(t, CalcHash(inner, GetHasher(Ripemd160)), digest)
}

func TestHashStringRoundTrip(t *testing.T) {
	h := DoubleHashH([]byte("round trip"))
	parsed, err := NewHashFromStr(h.String())
	assert.NoError(t, err)
	assert.True(t, h.IsEqual(parsed))

	_, err = NewHashFromStr(string(bytes.Repeat([]byte{'a'}, MaxHashStringSize+1)))
	assert.Equal(t, ErrHashStrSize, err)
}

func TestSetBytes(t *testing.T) {
	var h Hash
	err := h.SetBytes(make([]byte, HashSize-1))
	assert.Error(t, err)
	err = h.SetBytes(make([]byte, HashSize))
	assert.NoError(t, err)
	assert.True(t, h.IsEqual(&ZeroHash))
}
