// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package worker

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	s "github.com/aurumproject/aurum/core/serialization"
	"github.com/aurumproject/aurum/core/types"
	"github.com/aurumproject/aurum/engine/verify"
)

// maxFramePayload bounds the size of a single job or verdict frame.  It is
// sized to hold a maximum-size transaction plus its resolved coins.
const maxFramePayload = 1024 * 1024 * 64

// Verdict status bytes carried in result frames.
const (
	statusOK          uint8 = 0x00
	statusInvalid     uint8 = 0x01
	statusMalleated   uint8 = 0x02
	statusUnavailable uint8 = 0x03
)

// job is a single verification request dispatched to a worker.
type job struct {
	id    uint64
	flags verify.Flags
	tx    *types.Tx
	coins []*types.Coin
}

// verdict is the worker's response for a job.
type verdict struct {
	id     uint64
	status uint8
	reason string
}

// writeJob serializes a job frame to w.  The payload layout is the job id,
// the verification flags, the full transaction serialization and the
// resolved coin for each input in input order, all behind a u32 length
// prefix.
func writeJob(w io.Writer, j *job) error {
	serializedTx, err := j.tx.Transaction().Serialize()
	if err != nil {
		return err
	}

	var payload bytes.Buffer
	err = s.BinarySerializer.PutUint64(&payload, binary.LittleEndian, j.id)
	if err != nil {
		return err
	}
	err = s.BinarySerializer.PutUint32(&payload, binary.LittleEndian, uint32(j.flags))
	if err != nil {
		return err
	}
	err = s.WriteVarBytes(&payload, 0, serializedTx)
	if err != nil {
		return err
	}
	err = s.WriteVarInt(&payload, 0, uint64(len(j.coins)))
	if err != nil {
		return err
	}
	for _, coin := range j.coins {
		err = coin.Encode(&payload)
		if err != nil {
			return err
		}
	}

	err = s.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(payload.Len()))
	if err != nil {
		return err
	}
	_, err = w.Write(payload.Bytes())
	return err
}

// readJob deserializes a job frame from r.
func readJob(r io.Reader) (*job, error) {
	payload, err := readFrame(r)
	if err != nil {
		return nil, err
	}

	pr := bytes.NewReader(payload)
	j := &job{}
	j.id, err = s.BinarySerializer.Uint64(pr, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	flags, err := s.BinarySerializer.Uint32(pr, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	j.flags = verify.Flags(flags)

	serializedTx, err := s.ReadVarBytes(pr, 0, maxFramePayload, "transaction")
	if err != nil {
		return nil, err
	}
	j.tx, err = types.NewTxFromBytes(serializedTx)
	if err != nil {
		return nil, err
	}

	count, err := s.ReadVarInt(pr, 0)
	if err != nil {
		return nil, err
	}
	if count != uint64(len(j.tx.Transaction().TxIn)) {
		return nil, fmt.Errorf("job frame: coin count %d does not match input count %d", count, len(j.tx.Transaction().TxIn))
	}
	j.coins = make([]*types.Coin, count)
	for i := uint64(0); i < count; i++ {
		coin := &types.Coin{}
		if err := coin.Decode(pr); err != nil {
			return nil, err
		}
		j.coins[i] = coin
	}
	return j, nil
}

// writeVerdict serializes a verdict frame to w.
func writeVerdict(w io.Writer, v *verdict) error {
	var payload bytes.Buffer
	err := s.BinarySerializer.PutUint64(&payload, binary.LittleEndian, v.id)
	if err != nil {
		return err
	}
	err = s.BinarySerializer.PutUint8(&payload, v.status)
	if err != nil {
		return err
	}
	err = s.WriteVarString(&payload, 0, v.reason)
	if err != nil {
		return err
	}

	err = s.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(payload.Len()))
	if err != nil {
		return err
	}
	_, err = w.Write(payload.Bytes())
	return err
}

// readVerdict deserializes a verdict frame from r.
func readVerdict(r io.Reader) (*verdict, error) {
	payload, err := readFrame(r)
	if err != nil {
		return nil, err
	}

	pr := bytes.NewReader(payload)
	v := &verdict{}
	v.id, err = s.BinarySerializer.Uint64(pr, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	v.status, err = s.BinarySerializer.Uint8(pr)
	if err != nil {
		return nil, err
	}
	v.reason, err = s.ReadVarString(pr, 0, maxFramePayload)
	return v, err
}

// readFrame reads a single length-prefixed payload from r.
func readFrame(r io.Reader) ([]byte, error) {
	size, err := s.BinarySerializer.Uint32(r, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	if size > maxFramePayload {
		return nil, fmt.Errorf("frame payload of %d bytes exceeds limit of %d", size, maxFramePayload)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// verdictError maps a verdict to the error contract of verify.Verifier.
func verdictError(v *verdict) error {
	switch v.status {
	case statusOK:
		return nil
	case statusInvalid:
		return verify.NewError(v.reason, false)
	case statusMalleated:
		return verify.NewError(v.reason, true)
	default:
		return verify.ErrUnavailable
	}
}
