// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// aurumd runs the unconfirmed-transaction pool as a standalone service.
// Chain and relay collaborators attach through the mempool's exported
// surface; script verification runs on a worker pool that can live
// in-process or in child processes started with the "worker" subcommand.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/aurumproject/aurum/common/roughtime"
	"github.com/aurumproject/aurum/config"
	"github.com/aurumproject/aurum/core/event"
	"github.com/aurumproject/aurum/core/types"
	"github.com/aurumproject/aurum/engine/verify"
	"github.com/aurumproject/aurum/engine/verify/worker"
	l "github.com/aurumproject/aurum/log"
	"github.com/aurumproject/aurum/services/mempool"
)

const version = "0.1.0"

const logFileName = "aurumd.log"

var log = l.New("AURD")

func main() {
	if len(os.Args) > 1 && os.Args[1] == "worker" {
		runWorker()
		return
	}
	if err := aurumdMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// stdioTransport adapts the process's standard streams to the worker
// transport so a child started by ProcessSpawner can serve jobs.
type stdioTransport struct{}

func (stdioTransport) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioTransport) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioTransport) Close() error                { return os.Stdout.Close() }

func runWorker() {
	if err := worker.Serve(stdioTransport{}, verify.StructuralVerifier{}); err != nil {
		os.Exit(1)
	}
}

// chainState is the chain authority the pool validates against.  It holds
// the confirmed output set and tip data fed in by a block source.
type chainState struct {
	mtx        sync.RWMutex
	height     uint64
	medianTime time.Time
	coins      map[types.TxOutPoint]*types.Coin
}

func newChainState() *chainState {
	return &chainState{
		medianTime: time.Now(),
		coins:      make(map[types.TxOutPoint]*types.Coin),
	}
}

func (c *chainState) FetchCoin(op types.TxOutPoint) (*types.Coin, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	coin, ok := c.coins[op]
	if !ok {
		return nil, nil
	}
	return coin.Clone(), nil
}

func (c *chainState) BestHeight() uint64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.height
}

func (c *chainState) PastMedianTime() time.Time {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.medianTime
}

func aurumdMain() error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Printf("aurumd version %s\n", version)
		return nil
	}

	if !cfg.NoFileLogging {
		if err := l.InitLogRotator(filepath.Join(cfg.LogDir, logFileName)); err != nil {
			return err
		}
		defer l.Close()
	}
	log.Info(fmt.Sprintf("Starting aurumd %s", version))
	mempool.UseLogger(l.New("MEMP"))
	roughtime.Init()

	spawn := worker.PipeSpawner(verify.StructuralVerifier{})
	if cfg.VerifyWorkerBin != "" {
		spawn = worker.ProcessSpawner(cfg.VerifyWorkerBin, "worker")
	}
	verifyPool, err := worker.NewPool(worker.Config{
		Workers: cfg.VerifyWorkers,
		Spawn:   spawn,
		Timeout: cfg.VerifyTimeout,
	})
	if err != nil {
		return err
	}
	defer verifyPool.Close()

	minRelayTxFee, err := cfg.MinRelayTxFeeAmount()
	if err != nil {
		return err
	}

	feed := &event.Feed{}
	events := make(chan *event.Event, 256)
	sub := feed.Subscribe(events)
	defer sub.Unsubscribe()
	go drainEvents(events)

	chain := newChainState()
	txPool := mempool.New(&mempool.Config{
		Policy: mempool.Policy{
			MaxTxVersion:     uint16(types.TxVersion),
			AcceptNonStd:     cfg.AcceptNonStd,
			FreeTxRelayLimit: cfg.FreeTxRelayLimit,
			MaxOrphanTxs:     cfg.MaxOrphanTxs,
			MaxOrphanTxSize:  cfg.MaxOrphanTxSize,
			MinRelayTxFee:    minRelayTxFee,
			Expiry:           cfg.MempoolExpiry,
			StandardVerifyFlags: func() (verify.Flags, error) {
				return verify.StandardFlags, nil
			},
		},
		FetchCoin:      chain.FetchCoin,
		BestHeight:     chain.BestHeight,
		PastMedianTime: chain.PastMedianTime,
		Verifier:       verifyPool,
		Events:         feed,
		DataDir:        cfg.DataDir,
		Persist:        cfg.PersistMempool,
		NoMempoolBar:   cfg.NoMempoolBar,
	})

	if _, err := txPool.Load(); err != nil {
		log.Warn(fmt.Sprintf("Failed to load mempool snapshot: %v", err))
	}

	quit := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pruneLoop(txPool, quit)
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	log.Info("Shutting down...")

	close(quit)
	wg.Wait()

	if _, err := txPool.Save(); err != nil {
		log.Warn(fmt.Sprintf("Failed to save mempool snapshot: %v", err))
	}
	log.Info("Shutdown complete")
	return nil
}

// pruneLoop periodically evicts expired transactions until quit closes.
func pruneLoop(txPool *mempool.TxPool, quit <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			txPool.PruneExpiredTx()
		case <-quit:
			return
		}
	}
}

// drainEvents logs pool notifications.  Relay and wallet collaborators
// subscribe to the same feed.
func drainEvents(events <-chan *event.Event) {
	for ev := range events {
		switch data := ev.Data.(type) {
		case mempool.TxAddedEvent:
			log.Debug(fmt.Sprintf("Pool accepted %v (fee %v, %d bytes)",
				data.Hash, data.Fee, data.Size))
		case mempool.TxRemovedEvent:
			log.Debug(fmt.Sprintf("Pool removed %v (%s)", data.Hash, data.Reason))
		case mempool.OrphanParkedEvent:
			log.Debug(fmt.Sprintf("Parked orphan %v waiting on %d outpoints",
				data.Hash, len(data.Missing)))
		case mempool.BlockProcessedEvent:
			log.Debug(fmt.Sprintf("Processed block height %d (connected=%v)",
				data.Height, data.Connected))
		}
	}
}
