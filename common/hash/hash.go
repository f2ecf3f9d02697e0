// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hash

import (
	"crypto"
	_ "crypto/sha256"
	"encoding/hex"
	"fmt"
	h "hash"

	"github.com/dchest/blake256"
	"golang.org/x/crypto/sha3"

	_ "golang.org/x/crypto/blake2b"
	_ "golang.org/x/crypto/ripemd160"
)

// HashSize of array used to store hashes.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a hash
// string that has too many characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is used in several of the messages and common structures.  It
// typically represents the double blake2b-256 of data.
type Hash [HashSize]byte

// ZeroHash is the zero value hash (all zeros).
var ZeroHash = Hash{}

// Hasher is the common interface implemented by all supported hash
// functions.
type Hasher interface {
	h.Hash
}

// HashType selects one of the supported hash functions.
type HashType byte

const (
	SHA256 HashType = iota
	SHA3_256
	Ripemd160
	Blake2b_256
	Blake2b_512
	Blake256
)

// GetHasher returns a new hasher instance for the given hash type, or nil
// when the type is unknown.
func GetHasher(ht HashType) Hasher {
	switch ht {
	case SHA256:
		return crypto.SHA256.New()
	case SHA3_256:
		return sha3.New256()
	case Ripemd160:
		return crypto.RIPEMD160.New()
	case Blake2b_256:
		return crypto.BLAKE2b_256.New()
	case Blake2b_512:
		return crypto.BLAKE2b_512.New()
	case Blake256:
		return blake256.New()
	}
	return nil
}

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash.
func (hash Hash) String() string {
	for i := 0; i < HashSize/2; i++ {
		hash[i], hash[HashSize-1-i] = hash[HashSize-1-i], hash[i]
	}
	return hex.EncodeToString(hash[:])
}

// Bytes returns internal bytes of hash
func (hash *Hash) Bytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, hash[:])
	return newHash
}

// CloneBytes returns a copy of the bytes which represent the hash as a byte
// slice.
//
// NOTE: It is generally cheaper to just slice the hash directly thereby
// reusing the same bytes rather than calling this method.
func (hash *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, hash[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash.  An error is returned if
// the number of bytes passed in is not HashSize.
func (hash *Hash) SetBytes(newHash []byte) error {
	nhlen := len(newHash)
	if nhlen != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", nhlen,
			HashSize)
	}
	copy(hash[:], newHash)

	return nil
}

// IsEqual returns true if target is the same as hash.
func (hash *Hash) IsEqual(target *Hash) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

// NewHash returns a new Hash from a byte slice.  An error is returned if
// the number of bytes passed in is not HashSize.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, err
}

// NewHashFromStr creates a Hash from a hash string.  The string should be
// the hexadecimal string of a byte-reversed hash, but any missing characters
// result in zero padding at the end of the Hash.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the byte-reversed hexadecimal string encoding of a Hash to a
// destination.
func Decode(dst *Hash, src string) error {
	// Return error if hash string is too long.
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	// Hex decoder expects the hash to be a multiple of two.  When not, pad
	// with a leading zero.
	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	// Hex decode the source bytes to a temporary destination.
	var reversedHash Hash
	_, err := hex.Decode(reversedHash[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}

	// Reverse copy from the temporary hash to destination.  Because the
	// temporary was zeroed, the written result will be correctly padded.
	for i, b := range reversedHash[:HashSize/2] {
		dst[i], dst[HashSize-1-i] = reversedHash[HashSize-1-i], b
	}

	return nil
}

// MustHexToHash parses a hexadecimal (not byte-reversed) hash string and
// panics when the string is malformed.  It is intended for hard-coded
// constants and tests.
func MustHexToHash(s string) Hash {
	data, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	var hash Hash
	if err := hash.SetBytes(data); err != nil {
		panic(err)
	}
	return hash
}
