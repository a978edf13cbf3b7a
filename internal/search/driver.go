// Package search drives the Y-sweep loop that ties the CPU prefix hasher,
// the Y-bit layout, and the GPU orchestrator together into a full collision
// search.
package search

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oisee/ipl3hasher/internal/apperr"
	"github.com/oisee/ipl3hasher/internal/gpu"
	"github.com/oisee/ipl3hasher/internal/hash"
	"github.com/oisee/ipl3hasher/internal/layout"
)

// Workgroups is the GPU dispatch shape; total candidates per x_round
// dispatch is X*Y*Z*256.
type Workgroups struct {
	X, Y, Z uint32
}

// Hit is a found (Y, X) collision, CPU-verified against Target.
type Hit struct {
	Y, X uint32
}

// Dispatcher is the GPU side of one x_round exchange. *gpu.Orchestrator
// satisfies it; tests substitute CPU-only fakes that return canned results.
type Dispatcher interface {
	XRound(target uint64, sY hash.State, y, data, prev, xOffset uint32, wx, wy, wz uint32) (gpu.Result, error)
}

// Driver owns everything needed to run the Y-sweep loop: the IPL3 payload,
// the hash seed and target, the Y-bit layout, and the GPU orchestrator.
type Driver struct {
	P          [hash.NumWords]uint32
	Seed       uint8
	L          layout.Layout
	Target     uint64
	Workgroups Workgroups

	GPU Dispatcher

	y uint32

	// Checkpoint, if set, is invoked after each Y value is fully swept
	// (found no hit) with the just-completed Y. It is a side effect only
	// and never alters which Y values Run examines.
	Checkpoint func(y uint32)

	// Progress, if set, receives a report roughly every 10 seconds.
	Progress func(Report)

	checked atomic.Uint64
}

// Report is one periodic progress observation, purely informational.
type Report struct {
	Elapsed    time.Duration
	Y          uint32
	MaxY       uint64
	Candidates uint64
	Rate       float64 // candidates/sec since the last report
	ETA        time.Duration
}

// Resume sets the Y value Run starts sweeping from, letting a caller
// re-enter the loop after a checkpoint load or an explicit --y-init flag.
func (d *Driver) Resume(y uint32) {
	d.y = y
}

// maxY returns the inclusive upper bound on Y: 2^|L| - 1.
func (d *Driver) maxY() uint64 {
	return (uint64(1) << len(d.L)) - 1
}

// Run sweeps Y from its current value (0, unless Resume was called) up to
// 2^|L|-1. For each Y it computes the CPU prefix state, then repeatedly
// dispatches x_round until the GPU reports a hit or the X space for that Y
// is exhausted, verifying any reported hit against the CPU reference hash
// before trusting it. It returns the first verified hit, or a zero Hit with
// ok=false if the whole (Y, X) space is exhausted without one.
func (d *Driver) Run() (hit Hit, ok bool, err error) {
	maxY := d.maxY()
	startTime := time.Now()
	lastReport := startTime
	var lastChecked uint64

	reportTicker := time.NewTicker(10 * time.Second)
	defer reportTicker.Stop()

yLoop:
	for {
		if uint64(d.y) > maxY {
			return Hit{}, false, nil
		}

		mutatedP := layout.Inject(d.P, d.L, d.y, 0)
		sY := hash.YRound(&mutatedP, d.Seed)
		data, prev := mutatedP[1006], mutatedP[1005]

		var xOffset uint32
		for {
			result, err := d.GPU.XRound(d.Target, sY, d.y, data, prev, xOffset, d.Workgroups.X, d.Workgroups.Y, d.Workgroups.Z)
			if err != nil {
				return Hit{}, false, err
			}

			switch result.Kind {
			case gpu.Hit:
				verify := hash.Verify(layout.Inject(d.P, d.L, result.Y, result.X), d.Seed, result.X)
				if verify != d.Target {
					return Hit{}, false, &apperr.VerifyError{Y: result.Y, X: result.X, Observed: verify}
				}
				return Hit{Y: result.Y, X: result.X}, true, nil
			case gpu.Continue:
				d.checked.Add(uint64(result.Step))
				xOffset += result.Step
			case gpu.End:
				if d.Checkpoint != nil {
					d.Checkpoint(d.y)
				}
				if uint64(d.y) == maxY {
					return Hit{}, false, nil
				}
				d.y++
				continue yLoop
			}

			select {
			case <-reportTicker.C:
				d.reportProgress(&lastReport, &lastChecked, startTime, maxY)
			default:
			}
		}
	}
}

func (d *Driver) reportProgress(lastReport *time.Time, lastChecked *uint64, startTime time.Time, maxY uint64) {
	if d.Progress == nil {
		return
	}
	now := time.Now()
	checked := d.checked.Load()

	dt := now.Sub(*lastReport).Seconds()
	dc := checked - *lastChecked
	rate := float64(dc) / dt

	var eta time.Duration
	if d.y > 0 {
		elapsed := now.Sub(startTime)
		remaining := time.Duration(float64(elapsed) * float64(maxY-uint64(d.y)) / float64(d.y))
		eta = remaining.Round(time.Second)
	}

	d.Progress(Report{
		Elapsed:    now.Sub(startTime).Round(time.Second),
		Y:          d.y,
		MaxY:       maxY,
		Candidates: checked,
		Rate:       rate,
		ETA:        eta,
	})

	*lastReport = now
	*lastChecked = checked
}

// FormatReport renders a Report the way a long-running worker pool prints
// its periodic status line.
func FormatReport(r Report) string {
	pct := float64(r.Y) / float64(r.MaxY) * 100
	return fmt.Sprintf("  [%s] Y=%08X/%08X (%.4f%%) | %.1fM checks/s | ETA %s",
		r.Elapsed, r.Y, r.MaxY, pct, r.Rate/1e6, r.ETA)
}
