// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hash

import (
	h "hash"
)

// CalcHash calculates the hash of hasher over buf.
func CalcHash(buf []byte, hasher h.Hash) []byte {
	defer hasher.Reset()
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates the hash ripemd160(blake2b256(b)).
func Hash160(buf []byte) []byte {
	return CalcHash(HashB(buf), GetHasher(Ripemd160))
}
