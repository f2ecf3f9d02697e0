// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package worker implements a verification engine backed by a pool of
// workers reached over byte-framed transports.  Workers may live in-process
// or behind a child process pipe; the pool only sees an io.ReadWriteCloser.
package worker

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aurumproject/aurum/core/types"
	"github.com/aurumproject/aurum/engine/verify"
	"github.com/aurumproject/aurum/log"
	"github.com/pkg/errors"
)

var logger = log.New("WRKR")

// ErrWorkerLost is returned when the transport to a worker fails before a
// verdict is read.  It satisfies verify.IsUnavailable so callers treat the
// loss as a transient outage rather than a judgement on the transaction.
var ErrWorkerLost = errors.Wrap(verify.ErrUnavailable, "worker lost")

// ErrPoolClosed is returned for jobs submitted after Close.
var ErrPoolClosed = errors.Wrap(verify.ErrUnavailable, "worker pool closed")

// Transport is the byte stream connecting the pool to a single worker.
type Transport io.ReadWriteCloser

// SpawnFunc creates the transport for a new worker.  It is called once per
// worker slot at startup and again whenever a worker is lost.
type SpawnFunc func() (Transport, error)

// Config holds the configuration options for a worker pool.
type Config struct {
	// Workers is the number of concurrent workers to maintain.
	Workers int

	// Spawn creates worker transports.
	Spawn SpawnFunc

	// Timeout bounds how long the pool waits for a verdict before the
	// worker is considered lost.  Zero means wait forever.
	Timeout time.Duration
}

// request pairs a job with the channel its result is delivered on.
type request struct {
	job    *job
	result chan error
}

// Pool dispatches verification jobs across a fixed number of workers.  It
// implements verify.Verifier.
type Pool struct {
	cfg    Config
	nextID uint64

	jobs chan *request
	quit chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewPool creates a worker pool and spawns its workers.
func NewPool(cfg Config) (*Pool, error) {
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("worker pool requires at least one worker, got %d", cfg.Workers)
	}
	if cfg.Spawn == nil {
		return nil, fmt.Errorf("worker pool requires a spawn function")
	}

	p := &Pool{
		cfg:  cfg,
		jobs: make(chan *request),
		quit: make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		t, err := cfg.Spawn()
		if err != nil {
			p.Close()
			return nil, errors.Wrap(err, "spawn worker")
		}
		p.wg.Add(1)
		go p.workerLoop(i, t)
	}
	return p, nil
}

// VerifyTransaction dispatches the transaction to an idle worker and blocks
// until a verdict arrives.  This is part of the verify.Verifier interface
// implementation.
func (p *Pool) VerifyTransaction(tx *types.Tx, coins []*types.Coin, flags verify.Flags) error {
	req := &request{
		job: &job{
			id:    atomic.AddUint64(&p.nextID, 1),
			flags: flags,
			tx:    tx,
			coins: coins,
		},
		result: make(chan error, 1),
	}

	select {
	case p.jobs <- req:
	case <-p.quit:
		return ErrPoolClosed
	}

	select {
	case err := <-req.result:
		return err
	case <-p.quit:
		return ErrPoolClosed
	}
}

// Close shuts the pool down and waits for all workers to exit.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}

// workerLoop owns a single worker slot.  It forwards jobs over the
// transport and respawns the worker whenever the transport fails.
func (p *Pool) workerLoop(slot int, t Transport) {
	defer p.wg.Done()
	defer func() {
		if t != nil {
			t.Close()
		}
	}()

	for {
		select {
		case req := <-p.jobs:
			err := p.runJob(t, req.job)
			req.result <- err

			if errors.Is(err, ErrWorkerLost) {
				t.Close()
				t = p.respawn(slot)
				if t == nil {
					return
				}
			}
		case <-p.quit:
			return
		}
	}
}

// runJob executes a single job over the transport.  Any transport failure
// is reported as ErrWorkerLost.
func (p *Pool) runJob(t Transport, j *job) error {
	if err := writeJob(t, j); err != nil {
		logger.Debugf("Failed to send job %d: %v", j.id, err)
		return ErrWorkerLost
	}

	type readResult struct {
		v   *verdict
		err error
	}
	read := make(chan readResult, 1)
	go func() {
		v, err := readVerdict(t)
		read <- readResult{v, err}
	}()

	var timeout <-chan time.Time
	if p.cfg.Timeout > 0 {
		timer := time.NewTimer(p.cfg.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case rr := <-read:
		if rr.err != nil {
			logger.Debugf("Failed to read verdict for job %d: %v", j.id, rr.err)
			return ErrWorkerLost
		}
		if rr.v.id != j.id {
			logger.Warnf("Verdict id %d does not match job id %d", rr.v.id, j.id)
			return ErrWorkerLost
		}
		return verdictError(rr.v)
	case <-timeout:
		// Closing the transport unblocks the pending read.
		logger.Warnf("Worker timed out on job %d after %v", j.id, p.cfg.Timeout)
		return ErrWorkerLost
	case <-p.quit:
		return ErrPoolClosed
	}
}

// respawn replaces a lost worker.  It returns nil when the pool is shutting
// down or the spawn fails, permanently retiring the slot.
func (p *Pool) respawn(slot int) Transport {
	select {
	case <-p.quit:
		return nil
	default:
	}

	t, err := p.cfg.Spawn()
	if err != nil {
		logger.Errorf("Failed to respawn worker %d: %v", slot, err)
		return nil
	}
	logger.Debugf("Respawned worker %d", slot)
	return t
}
