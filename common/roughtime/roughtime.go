// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package roughtime provides a clock calibrated against the Roughtime
// ecosystem.  Until Init is called the package falls back to the system
// clock, so library consumers pay nothing unless the node opts in.
package roughtime

import (
	"log"
	"time"

	"github.com/cloudflare/roughtime"
)

// RecalibrationInterval is how often the offset against the Roughtime
// servers is refreshed.
const RecalibrationInterval = time.Hour

var offset time.Duration

// Init starts the background recalibration loop.
func Init() {
	recalibrate()
	runT := time.NewTicker(RecalibrationInterval)
	go func() {
		for range runT.C {
			recalibrate()
		}
	}()
}

func recalibrate() {
	t0 := time.Now()
	results := roughtime.Do(roughtime.Ecosystem, roughtime.DefaultQueryAttempts,
		roughtime.DefaultQueryTimeout, nil)
	// Average the deltas between the system clock and the Roughtime
	// responses, rejecting responses whose radii are larger than 2
	// seconds.
	var err error
	offset, err = roughtime.AvgDeltaWithRadiusThresh(results, t0, 2*time.Second)
	if err != nil {
		log.Printf("Failed to calculate roughtime offset, system time will be used by default.(%s)", err)
	}
}

// Now returns the current local time given the roughtime offset.
func Now() time.Time {
	if offset == 0 {
		return time.Now()
	}
	return time.Now().Add(offset)
}

// Since returns the duration since t, based on the roughtime response.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}

// Offset returns the current calibration offset.
func Offset() time.Duration {
	return offset
}
