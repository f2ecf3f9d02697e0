// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/rcrowley/go-metrics"
)

// poolMetrics holds the counters and gauges of a single pool instance.
// Each pool owns a private registry so multiple pools in one process do
// not share counts.
type poolMetrics struct {
	registry metrics.Registry

	added      metrics.Counter
	rejected   metrics.Counter
	malleated  metrics.Counter
	cacheHits  metrics.Counter
	orphaned   metrics.Counter
	resolved   metrics.Counter
	confirmed  metrics.Counter
	conflicted metrics.Counter

	poolSize   metrics.Gauge
	orphanSize metrics.Gauge
}

func newPoolMetrics() *poolMetrics {
	r := metrics.NewRegistry()
	return &poolMetrics{
		registry: r,

		added:      metrics.NewRegisteredCounter("mempool/added", r),
		rejected:   metrics.NewRegisteredCounter("mempool/rejected", r),
		malleated:  metrics.NewRegisteredCounter("mempool/rejected/malleated", r),
		cacheHits:  metrics.NewRegisteredCounter("mempool/rejectcache/hits", r),
		orphaned:   metrics.NewRegisteredCounter("mempool/orphans/parked", r),
		resolved:   metrics.NewRegisteredCounter("mempool/orphans/resolved", r),
		confirmed:  metrics.NewRegisteredCounter("mempool/confirmed", r),
		conflicted: metrics.NewRegisteredCounter("mempool/conflicted", r),

		poolSize:   metrics.NewRegisteredGauge("mempool/size", r),
		orphanSize: metrics.NewRegisteredGauge("mempool/orphans/size", r),
	}
}

// Stats is a point-in-time snapshot of the pool's metrics.
type Stats struct {
	Added      int64
	Rejected   int64
	Malleated  int64
	CacheHits  int64
	Parked     int64
	Resolved   int64
	Confirmed  int64
	Conflicted int64
	PoolSize   int64
	OrphanSize int64
}

// Stats returns a snapshot of the pool's counters and gauges.
func (mp *TxPool) Stats() Stats {
	m := mp.metrics
	return Stats{
		Added:      m.added.Count(),
		Rejected:   m.rejected.Count(),
		Malleated:  m.malleated.Count(),
		CacheHits:  m.cacheHits.Count(),
		Parked:     m.orphaned.Count(),
		Resolved:   m.resolved.Count(),
		Confirmed:  m.confirmed.Count(),
		Conflicted: m.conflicted.Count(),
		PoolSize:   m.poolSize.Value(),
		OrphanSize: m.orphanSize.Value(),
	}
}

// MetricsRegistry exposes the pool's registry so a node can attach a
// go-metrics reporter to it.
func (mp *TxPool) MetricsRegistry() metrics.Registry {
	return mp.metrics.registry
}

// updateGauges refreshes the size gauges.  Called from the serialized
// section after any mutation.
func (mp *TxPool) updateGauges() {
	mp.metrics.poolSize.Update(int64(len(mp.pool)))
	mp.metrics.orphanSize.Update(int64(len(mp.orphans)))
}
