// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/aurumproject/aurum/common/hash"
	"github.com/aurumproject/aurum/common/roughtime"
	s "github.com/aurumproject/aurum/core/serialization"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion uint32 = 1

	// defaultTxInOutAlloc is the default size used for the backing array
	// for transaction inputs and outputs.  The array will dynamically grow
	// as needed, but this figure is intended to provide enough space for
	// the number of inputs and outputs in a typical transaction without
	// needing to grow the backing array multiple times.
	defaultTxInOutAlloc = 15

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.  A transaction whose inputs all carry
	// this value is final regardless of its lock time.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be.  It doubles as the marker index of a coinbase
	// input's null previous outpoint.
	MaxPrevOutIndex uint32 = 0xffffffff

	// LockTimeThreshold is the number below which a transaction lock time
	// is interpreted as a block height rather than a unix timestamp.
	LockTimeThreshold uint32 = 5e8 // Tue Nov 5 00:53:20 1985 UTC

	// NoExpiryValue is the value of expiry that indicates the transaction
	// has no expiry.
	NoExpiryValue uint32 = 0

	// MaxMessagePayload is the maximum bytes a message can be regardless
	// of other individual limits imposed by messages themselves.
	MaxMessagePayload = 1024 * 1024 * 32 // 32MB

	// minTxInPayload is the minimum payload size for a transaction input.
	// PreviousOut.Hash + PreviousOut.OutIndex 4 bytes + Sequence 4 bytes.
	minTxInPayload = 8 + hash.HashSize

	// maxTxInPerMessage is the maximum number of transaction inputs that
	// a transaction which fits into a message could possibly have.
	maxTxInPerMessage = (MaxMessagePayload / minTxInPayload) + 1

	// minTxOutPayload is the minimum payload size for a transaction
	// output.  Amount 8 bytes + varint for PkScript length 1 byte.
	minTxOutPayload = 9

	// maxTxOutPerMessage is the maximum number of transaction outputs
	// that a transaction which fits into a message could possibly have.
	maxTxOutPerMessage = (MaxMessagePayload / minTxOutPayload) + 1
)

// TxIndexUnknown is the value returned for a transaction index that is
// unknown.  This is typically because the transaction has not been inserted
// into a block yet.
const TxIndexUnknown = -1

// TxSerializeType represents the serialized type of a transaction.
type TxSerializeType uint16

const (
	// TxSerializeFull indicates a transaction be serialized with the
	// prefix and all witness data.
	TxSerializeFull TxSerializeType = iota

	// TxSerializeNoWitness indicates a transaction be serialized with
	// only the prefix.
	TxSerializeNoWitness
)

// Transaction is the primitive transaction as it crosses the wire.  The
// witness data (the signature scripts of the inputs) is serialized after the
// prefix so that the transaction identity hash, which covers the prefix only,
// is stable under signature malleation.
type Transaction struct {
	Version   uint32
	TxIn      []*TxInput
	TxOut     []*TxOutput
	LockTime  uint32
	Expire    uint32
	Timestamp time.Time

	CachedHash *hash.Hash
}

// NewTransaction returns a new transaction with a default version of
// TxVersion and no inputs or outputs.  The lock time is set to zero to
// indicate the transaction is valid immediately as opposed to some time in
// the future.
func NewTransaction() *Transaction {
	return &Transaction{
		Version:   TxVersion,
		TxIn:      make([]*TxInput, 0, defaultTxInOutAlloc),
		TxOut:     make([]*TxOutput, 0, defaultTxInOutAlloc),
		Timestamp: roughtime.Now(),
	}
}

// AddTxIn adds a transaction input to the transaction.
func (tx *Transaction) AddTxIn(ti *TxInput) {
	tx.TxIn = append(tx.TxIn, ti)
}

// AddTxOut adds a transaction output to the transaction.
func (tx *Transaction) AddTxOut(to *TxOutput) {
	tx.TxOut = append(tx.TxOut, to)
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction with all witness data.
func (tx *Transaction) SerializeSize() int {
	// Version 4 bytes + LockTime 4 bytes + Expire 4 bytes + Timestamp 4
	// bytes + serialized varint size for the number of transaction
	// inputs (x2) and outputs.  The number of inputs is added twice
	// because it's encoded once in both the witness and the prefix.
	n := 16 + s.VarIntSerializeSize(uint64(len(tx.TxIn))) +
		s.VarIntSerializeSize(uint64(len(tx.TxOut))) +
		s.VarIntSerializeSize(uint64(len(tx.TxIn)))

	for _, txIn := range tx.TxIn {
		n += txIn.SerializeSizePrefix()
	}
	for _, txOut := range tx.TxOut {
		n += txOut.SerializeSize()
	}
	for _, txIn := range tx.TxIn {
		n += txIn.SerializeSizeWitness()
	}
	return n
}

// SerializeSizeNoWitness returns the number of bytes it would take to
// serialize the transaction prefix only.
func (tx *Transaction) SerializeSizeNoWitness() int {
	// Version 4 bytes + LockTime 4 bytes + Expire 4 bytes + serialized
	// varint size for the number of transaction inputs and outputs.
	n := 12 + s.VarIntSerializeSize(uint64(len(tx.TxIn))) +
		s.VarIntSerializeSize(uint64(len(tx.TxOut)))

	for _, txIn := range tx.TxIn {
		n += txIn.SerializeSizePrefix()
	}
	for _, txOut := range tx.TxOut {
		n += txOut.SerializeSize()
	}
	return n
}

// mustSerialize returns the serialization of the transaction for the
// provided serialization type without modifying the original transaction.
// It will panic if any errors occur.
func (tx *Transaction) mustSerialize(serType TxSerializeType) []byte {
	var serialized []byte
	var err error

	switch serType {
	case TxSerializeNoWitness:
		serialized, err = tx.SerializeNoWitness()
	case TxSerializeFull:
		serialized, err = tx.Serialize()
	default:
		panic("unknown TxSerializeType")
	}
	if err != nil {
		panic("tx failed serializing")
	}
	return serialized
}

// Serialize returns the full serialization of the transaction including all
// witness data.
func (tx *Transaction) Serialize() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, tx.SerializeSize()))
	err := tx.Encode(buf, 0, TxSerializeFull)
	return buf.Bytes(), err
}

// SerializeNoWitness returns the serialization of the transaction prefix.
func (tx *Transaction) SerializeNoWitness() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, tx.SerializeSizeNoWitness()))
	err := tx.Encode(buf, 0, TxSerializeNoWitness)
	return buf.Bytes(), err
}

// Encode serializes the transaction to w using the provided serialization
// type.  The serialized encoding of the version includes the real
// transaction version in the lower 16 bits and the serialization type in the
// upper 16 bits.
func (tx *Transaction) Encode(w io.Writer, pver uint32, serType TxSerializeType) error {
	serializedVersion := tx.Version | uint32(serType)<<16
	err := s.BinarySerializer.PutUint32(w, binary.LittleEndian, serializedVersion)
	if err != nil {
		return err
	}
	err = tx.encodePrefix(w, pver)
	if err != nil {
		return err
	}
	if serType != TxSerializeFull {
		return nil
	}
	err = s.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(tx.Timestamp.Unix()))
	if err != nil {
		return err
	}
	return tx.encodeWitness(w, pver)
}

// encodePrefix encodes a transaction prefix into a writer.
func (tx *Transaction) encodePrefix(w io.Writer, pver uint32) error {
	count := uint64(len(tx.TxIn))
	err := s.WriteVarInt(w, pver, count)
	if err != nil {
		return err
	}

	for _, ti := range tx.TxIn {
		err = writeTxInPrefix(w, pver, ti)
		if err != nil {
			return err
		}
	}

	count = uint64(len(tx.TxOut))
	err = s.WriteVarInt(w, pver, count)
	if err != nil {
		return err
	}

	for _, to := range tx.TxOut {
		err = writeTxOut(w, pver, to)
		if err != nil {
			return err
		}
	}

	err = s.BinarySerializer.PutUint32(w, binary.LittleEndian, tx.LockTime)
	if err != nil {
		return err
	}
	return s.BinarySerializer.PutUint32(w, binary.LittleEndian, tx.Expire)
}

// writeTxInPrefix encodes the prefix portion of a transaction input to w.
func writeTxInPrefix(w io.Writer, pver uint32, ti *TxInput) error {
	err := WriteOutPoint(w, pver, &ti.PreviousOut)
	if err != nil {
		return err
	}
	return s.BinarySerializer.PutUint32(w, binary.LittleEndian, ti.Sequence)
}

// WriteOutPoint encodes an OutPoint to w.
func WriteOutPoint(w io.Writer, pver uint32, op *TxOutPoint) error {
	_, err := w.Write(op.Hash[:])
	if err != nil {
		return err
	}
	return s.BinarySerializer.PutUint32(w, binary.LittleEndian, op.OutIndex)
}

// writeTxOut encodes a transaction output to w.
func writeTxOut(w io.Writer, pver uint32, to *TxOutput) error {
	err := s.BinarySerializer.PutUint64(w, binary.LittleEndian, uint64(to.Amount))
	if err != nil {
		return err
	}
	return s.WriteVarBytes(w, pver, to.PkScript)
}

// encodeWitness encodes a transaction witness into a writer.
func (tx *Transaction) encodeWitness(w io.Writer, pver uint32) error {
	count := uint64(len(tx.TxIn))
	err := s.WriteVarInt(w, pver, count)
	if err != nil {
		return err
	}

	for _, ti := range tx.TxIn {
		err = s.WriteVarBytes(w, pver, ti.SignScript)
		if err != nil {
			return err
		}
	}
	return nil
}

// Deserialize decodes a transaction from r into the receiver using a format
// that is suitable for long-term storage such as a database while respecting
// the Version field in the transaction.
func (tx *Transaction) Deserialize(r io.Reader) error {
	return tx.Decode(r, 0)
}

// Decode deserializes a transaction from r.  The serialization type is read
// from the upper 16 bits of the encoded version field.
func (tx *Transaction) Decode(r io.Reader, pver uint32) error {
	version, err := s.BinarySerializer.Uint32(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	tx.Version = version & 0xffff
	serType := TxSerializeType(version >> 16)

	switch serType {
	case TxSerializeFull:
		err = tx.decodePrefix(r, pver)
		if err != nil {
			return err
		}
		sec, err := s.BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		tx.Timestamp = time.Unix(int64(sec), 0)
		return tx.decodeWitness(r, pver)
	case TxSerializeNoWitness:
		return tx.decodePrefix(r, pver)
	default:
		return fmt.Errorf("Transaction.Decode: unknown transaction serialization type [%d]", serType)
	}
}

// decodePrefix decodes a transaction prefix and stores the contents in the
// receiver.
func (tx *Transaction) decodePrefix(r io.Reader, pver uint32) error {
	count, err := s.ReadVarInt(r, pver)
	if err != nil {
		return err
	}

	// Prevent more input transactions than could possibly fit into a
	// message.  It would be possible to cause memory exhaustion and
	// panics without a sane upper bound on this count.
	if count > uint64(maxTxInPerMessage) {
		return fmt.Errorf("Transaction.decodePrefix: too many inputs to fit into max message size [count %d, max %d]", count, maxTxInPerMessage)
	}

	txIns := make([]TxInput, count)
	tx.TxIn = make([]*TxInput, count)
	for i := uint64(0); i < count; i++ {
		ti := &txIns[i]
		tx.TxIn[i] = ti
		err = readTxInPrefix(r, pver, ti)
		if err != nil {
			return err
		}
	}

	count, err = s.ReadVarInt(r, pver)
	if err != nil {
		return err
	}

	if count > uint64(maxTxOutPerMessage) {
		return fmt.Errorf("Transaction.decodePrefix: too many outputs to fit into max message size [count %d, max %d]", count, maxTxOutPerMessage)
	}

	txOuts := make([]TxOutput, count)
	tx.TxOut = make([]*TxOutput, count)
	for i := uint64(0); i < count; i++ {
		to := &txOuts[i]
		tx.TxOut[i] = to
		err = readTxOut(r, pver, to)
		if err != nil {
			return err
		}
	}

	tx.LockTime, err = s.BinarySerializer.Uint32(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	tx.Expire, err = s.BinarySerializer.Uint32(r, binary.LittleEndian)
	return err
}

// readTxInPrefix reads the next sequence of bytes from r as the prefix
// portion of a transaction input.
func readTxInPrefix(r io.Reader, pver uint32, ti *TxInput) error {
	err := ReadOutPoint(r, pver, &ti.PreviousOut)
	if err != nil {
		return err
	}
	ti.Sequence, err = s.BinarySerializer.Uint32(r, binary.LittleEndian)
	return err
}

// ReadOutPoint reads the next sequence of bytes from r as an OutPoint.
func ReadOutPoint(r io.Reader, pver uint32, op *TxOutPoint) error {
	_, err := io.ReadFull(r, op.Hash[:])
	if err != nil {
		return err
	}
	op.OutIndex, err = s.BinarySerializer.Uint32(r, binary.LittleEndian)
	return err
}

// readTxOut reads the next sequence of bytes from r as a transaction output.
func readTxOut(r io.Reader, pver uint32, to *TxOutput) error {
	value, err := s.BinarySerializer.Uint64(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	to.Amount = Amount(value)
	to.PkScript, err = s.ReadVarBytes(r, pver, MaxMessagePayload, "public key script")
	return err
}

// decodeWitness reads the witness section of a full serialization and copies
// the signature scripts into the inputs already generated by decodePrefix.
func (tx *Transaction) decodeWitness(r io.Reader, pver uint32) error {
	count, err := s.ReadVarInt(r, pver)
	if err != nil {
		return err
	}

	// Don't allow the deserializer to panic by accessing memory that
	// doesn't exist.
	if int(count) != len(tx.TxIn) {
		return fmt.Errorf("Transaction.decodeWitness: non equal witness and prefix txin quantities (witness %v, prefix %v)", count, len(tx.TxIn))
	}

	for i := uint64(0); i < count; i++ {
		tx.TxIn[i].SignScript, err = s.ReadVarBytes(r, pver,
			MaxMessagePayload, "signature script")
		if err != nil {
			return err
		}
	}
	return nil
}

// CachedTxHash is equivalent to calling TxHash, however it caches the result
// so subsequent calls do not have to recalculate the hash.  It can be
// recalculated later with RecacheTxHash.
func (tx *Transaction) CachedTxHash() *hash.Hash {
	if tx.CachedHash == nil {
		return tx.RecacheTxHash()
	}
	return tx.CachedHash
}

// RecacheTxHash is equivalent to calling TxHash, however it replaces the
// cached result so future calls to CachedTxHash will return this newly
// calculated hash.
func (tx *Transaction) RecacheTxHash() *hash.Hash {
	h := tx.TxHash()
	tx.CachedHash = &h
	return tx.CachedHash
}

// TxHash generates the hash for the transaction prefix.  Since it does not
// contain any witness data, it is not malleable and therefore is stable for
// use in unconfirmed transaction chains.
func (tx *Transaction) TxHash() hash.Hash {
	return hash.DoubleHashH(tx.mustSerialize(TxSerializeNoWitness))
}

// TxHashFull generates the hash for the transaction prefix || witness.  Two
// transactions that differ only in their signature scripts share a TxHash
// but have distinct full hashes.
func (tx *Transaction) TxHashFull() hash.Hash {
	return hash.DoubleHashH(tx.mustSerialize(TxSerializeFull))
}

// IsCoinBase determines whether or not the transaction is a coinbase.  A
// coinbase is a special transaction created by miners that has a single
// input with a null previous outpoint.
func (tx *Transaction) IsCoinBase() bool {
	if len(tx.TxIn) != 1 {
		return false
	}
	prevOut := &tx.TxIn[0].PreviousOut
	return prevOut.OutIndex == MaxPrevOutIndex && prevOut.Hash.IsEqual(&hash.ZeroHash)
}

// Tx defines a transaction that provides easier and more efficient
// manipulation of raw transactions.  It also memorizes the hash for the
// transaction on its first access so subsequent accesses don't have to
// repeat the relatively expensive hashing operations.
type Tx struct {
	Tx      *Transaction // Underlying Transaction
	hash    hash.Hash    // Cached transaction hash
	txIndex int          // Position within a block or TxIndexUnknown
}

// Transaction returns the underlying Transaction.
func (t *Tx) Transaction() *Transaction {
	return t.Tx
}

// Hash returns the identity hash of the transaction.  This is equivalent to
// calling TxHash on the underlying Transaction, however it caches the result
// so subsequent calls are more efficient.
func (t *Tx) Hash() *hash.Hash {
	return &t.hash
}

// RefreshHash recomputes the cached identity hash from the underlying
// transaction.
func (t *Tx) RefreshHash() {
	t.hash = t.Tx.TxHash()
}

// SetIndex sets the index of the transaction within a block.
func (t *Tx) SetIndex(index int) {
	t.txIndex = index
}

// Index returns the index of the transaction within a block, or
// TxIndexUnknown.
func (t *Tx) Index() int {
	return t.txIndex
}

// NewTx returns a new instance of a transaction given an underlying
// Transaction.  See Tx.
func NewTx(t *Transaction) *Tx {
	return &Tx{
		hash:    t.TxHash(),
		Tx:      t,
		txIndex: TxIndexUnknown,
	}
}

// NewTxFromBytes returns a new instance of a transaction given its
// serialized bytes.  See Tx.
func NewTxFromBytes(serializedTx []byte) (*Tx, error) {
	br := bytes.NewReader(serializedTx)
	return NewTxFromReader(br)
}

// NewTxFromReader returns a new instance of a transaction given a reader to
// deserialize the transaction from.  See Tx.
func NewTxFromReader(r io.Reader) (*Tx, error) {
	var mtx Transaction
	err := mtx.Deserialize(r)
	if err != nil {
		return nil, err
	}

	t := Tx{
		Tx:      &mtx,
		hash:    mtx.TxHash(),
		txIndex: TxIndexUnknown,
	}
	return &t, nil
}

// TxOutPoint defines a data type that is used to track previous transaction
// outputs.
type TxOutPoint struct {
	Hash     hash.Hash
	OutIndex uint32
}

// NewOutPoint returns a new transaction outpoint with the provided hash and
// index.
func NewOutPoint(hash *hash.Hash, index uint32) *TxOutPoint {
	return &TxOutPoint{
		Hash:     *hash,
		OutIndex: index,
	}
}

// String returns the outpoint in the human-readable form "hash:index".
func (op TxOutPoint) String() string {
	return fmt.Sprintf("%s:%d", op.Hash, op.OutIndex)
}

// TxInput defines a transaction input.
type TxInput struct {
	PreviousOut TxOutPoint
	SignScript  []byte
	Sequence    uint32
}

// NewTxInput returns a new transaction input with the provided previous
// outpoint and signature script with a default sequence of
// MaxTxInSequenceNum.
func NewTxInput(prevOut *TxOutPoint, signScript []byte) *TxInput {
	return &TxInput{
		PreviousOut: *prevOut,
		Sequence:    MaxTxInSequenceNum,
		SignScript:  signScript,
	}
}

// SerializeSizePrefix returns the number of bytes it would take to serialize
// the transaction input for a prefix.
func (ti *TxInput) SerializeSizePrefix() int {
	// Outpoint Hash 32 bytes + Outpoint Index 4 bytes + Sequence 4 bytes.
	return 40
}

// SerializeSizeWitness returns the number of bytes it would take to
// serialize the transaction input for a witness.
func (ti *TxInput) SerializeSizeWitness() int {
	return s.VarIntSerializeSize(uint64(len(ti.SignScript))) + len(ti.SignScript)
}

// TxOutput defines a transaction output.
type TxOutput struct {
	Amount   Amount
	PkScript []byte
}

// NewTxOutput returns a new transaction output with the provided amount and
// public key script.
func NewTxOutput(amount Amount, pkScript []byte) *TxOutput {
	return &TxOutput{
		Amount:   amount,
		PkScript: pkScript,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (to *TxOutput) SerializeSize() int {
	// Amount 8 bytes + serialized varint size for the length of PkScript
	// + PkScript bytes.
	return 8 + s.VarIntSerializeSize(uint64(len(to.PkScript))) + len(to.PkScript)
}

// TxDesc is a descriptor about a transaction in a transaction source along
// with additional metadata.
type TxDesc struct {
	// Tx is the transaction associated with the entry.
	Tx *Tx

	// Added is the time when the entry was added to the source pool.
	Added time.Time

	// Height is the block height when the entry was added to the source
	// pool.
	Height uint64

	// Fee is the total fee the transaction associated with the entry
	// pays.
	Fee Amount

	// FeePerKB is the fee the transaction pays in atoms per 1000 bytes.
	FeePerKB int64
}
