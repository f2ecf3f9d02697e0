// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

import (
	"encoding/binary"
	"io"

	s "github.com/aurumproject/aurum/core/serialization"
)

// Coin houses the state of a single transaction output: the amount and
// script needed to spend it plus the provenance needed to enforce maturity
// and reorg handling.
type Coin struct {
	// Amount is the value of the output in atoms.
	Amount Amount

	// PkScript is the public key script that must be satisfied to spend
	// the output.
	PkScript []byte

	// Height is the height of the block containing the creating
	// transaction, or the admission height for an unconfirmed output.
	Height uint64

	// CoinBase denotes whether the creating transaction is a coinbase.
	CoinBase bool
}

// Clone returns a deep copy of the coin.
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	pkScript := make([]byte, len(c.PkScript))
	copy(pkScript, c.PkScript)
	return &Coin{
		Amount:   c.Amount,
		PkScript: pkScript,
		Height:   c.Height,
		CoinBase: c.CoinBase,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// coin.
func (c *Coin) SerializeSize() int {
	// Amount 8 bytes + Height 8 bytes + CoinBase flag 1 byte + varint
	// size of PkScript + PkScript bytes.
	return 17 + s.VarIntSerializeSize(uint64(len(c.PkScript))) + len(c.PkScript)
}

// Encode serializes the coin to w.
func (c *Coin) Encode(w io.Writer) error {
	err := s.BinarySerializer.PutUint64(w, binary.LittleEndian, uint64(c.Amount))
	if err != nil {
		return err
	}
	err = s.BinarySerializer.PutUint64(w, binary.LittleEndian, c.Height)
	if err != nil {
		return err
	}
	var flag uint8
	if c.CoinBase {
		flag = 1
	}
	err = s.BinarySerializer.PutUint8(w, flag)
	if err != nil {
		return err
	}
	return s.WriteVarBytes(w, 0, c.PkScript)
}

// Decode deserializes a coin from r.
func (c *Coin) Decode(r io.Reader) error {
	amount, err := s.BinarySerializer.Uint64(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	c.Amount = Amount(amount)
	c.Height, err = s.BinarySerializer.Uint64(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	flag, err := s.BinarySerializer.Uint8(r)
	if err != nil {
		return err
	}
	c.CoinBase = flag != 0
	c.PkScript, err = s.ReadVarBytes(r, 0, MaxMessagePayload, "public key script")
	return err
}
