// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aurumproject/aurum/common/roughtime"
	s "github.com/aurumproject/aurum/core/serialization"
	"github.com/aurumproject/aurum/core/types"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

const (
	// mempoolDatVersion is the snapshot file format version.
	mempoolDatVersion = uint32(1)

	// mempoolDatName is the snapshot file name inside the data directory.
	mempoolDatName = "mempool.dat"
)

// MempoolTxData is one snapshot record: the raw transaction and the time it
// entered the pool, so expiry survives a restart.
type MempoolTxData struct {
	Tx    *types.Transaction
	Added time.Time
}

// Encode writes the record to w.
func (mtd *MempoolTxData) Encode(w io.Writer) error {
	raw, err := mtd.Tx.Serialize()
	if err != nil {
		return err
	}
	if err := s.WriteVarBytes(w, 0, raw); err != nil {
		return err
	}
	return s.BinarySerializer.PutUint64(w, binary.LittleEndian,
		uint64(mtd.Added.Unix()))
}

// Decode reads the record from r.
func (mtd *MempoolTxData) Decode(r io.Reader) error {
	txBytes, err := s.ReadVarBytes(r, 0, types.MaxMessagePayload,
		"mempool transaction")
	if err != nil {
		return err
	}
	mtd.Tx = &types.Transaction{}
	if err := mtd.Tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return err
	}
	added, err := s.BinarySerializer.Uint64(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	mtd.Added = time.Unix(int64(added), 0)
	return nil
}

// snapshotPath returns the snapshot file location for the configured data
// directory.
func (mp *TxPool) snapshotPath() string {
	return filepath.Join(mp.cfg.DataDir, mempoolDatName)
}

// Save writes the pool's transactions to the snapshot file in commit order.
// It returns the number of records written.
func (mp *TxPool) Save() (int, error) {
	if !mp.cfg.Persist {
		return 0, nil
	}

	mp.mtx.RLock()
	records := make([]*MempoolTxData, 0, len(mp.pool))
	for _, h := range mp.history {
		txD, exists := mp.pool[h]
		if !exists {
			continue
		}
		records = append(records, &MempoolTxData{
			Tx:    txD.Tx.Transaction(),
			Added: txD.Added,
		})
	}
	mp.mtx.RUnlock()

	var buf bytes.Buffer
	if err := s.BinarySerializer.PutUint32(&buf, binary.LittleEndian,
		mempoolDatVersion); err != nil {
		return 0, err
	}
	if err := s.BinarySerializer.PutUint64(&buf, binary.LittleEndian,
		uint64(len(records))); err != nil {
		return 0, err
	}
	for _, record := range records {
		if err := record.Encode(&buf); err != nil {
			return 0, err
		}
	}

	outPath := mp.snapshotPath()
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return 0, errors.Wrapf(err, "failed to write %s", outPath)
	}

	log.Info(fmt.Sprintf("Saved mempool snapshot: %d transactions to %s",
		len(records), outPath))
	return len(records), nil
}

// Load reads the snapshot file and offers its transactions back through the
// full admission pipeline.  Records older than the expiry window are
// skipped, and records that no longer pass admission are dropped.  It
// returns the number of transactions accepted back into the pool.
func (mp *TxPool) Load() (int, error) {
	if !mp.cfg.Persist {
		return 0, nil
	}

	inPath := mp.snapshotPath()
	data, err := os.ReadFile(inPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "failed to read %s", inPath)
	}
	r := bytes.NewReader(data)

	version, err := s.BinarySerializer.Uint32(r, binary.LittleEndian)
	if err != nil {
		return 0, err
	}
	count, err := s.BinarySerializer.Uint64(r, binary.LittleEndian)
	if err != nil {
		return 0, err
	}
	if version != mempoolDatVersion {
		return 0, fmt.Errorf("unsupported mempool snapshot version %d "+
			"(expected %d)", version, mempoolDatVersion)
	}

	var bar *progressbar.ProgressBar
	if !mp.cfg.NoMempoolBar && count > 0 {
		bar = progressbar.Default(int64(count), "Loading mempool:")
	}

	expiry := mp.cfg.Policy.Expiry
	if expiry <= 0 {
		expiry = DefaultMempoolExpiry
	}
	cutoff := roughtime.Now().Add(-expiry)

	accepted := 0
	for i := uint64(0); i < count; i++ {
		if bar != nil {
			bar.Add(1)
		}
		record := &MempoolTxData{}
		if err := record.Decode(r); err != nil {
			return accepted, errors.Wrapf(err,
				"corrupt mempool snapshot record %d", i)
		}
		if record.Added.Before(cutoff) {
			continue
		}

		tx := types.NewTx(record.Tx)
		if _, err := mp.ProcessTransaction(tx, true, false, true); err != nil {
			log.Debug(fmt.Sprintf("Snapshot transaction %v not "+
				"re-admitted: %v", tx.Hash(), err))
		} else {
			accepted++
		}
	}

	log.Info(fmt.Sprintf("Loaded mempool snapshot: %d of %d transactions "+
		"accepted", accepted, count))
	return accepted, nil
}
