// This file is part of armjit.
//
// armjit is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// armjit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with armjit.  If not, see <https://www.gnu.org/licenses/>.

package performance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/environment"
	"github.com/jetsetilly/armjit/jit"
	"github.com/jetsetilly/armjit/jit/frontend"
	"github.com/jetsetilly/armjit/jit/guest"
	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/jetsetilly/armjit/preferences"
	"golang.org/x/sync/errgroup"
)

// MeasurementFailed is the error pattern for errors returned by Measure().
const MeasurementFailed = "performance: engine %d: %v"

// the context is only checked after this many calls to Engine.Run(). checking
// on every call is relatively expensive
const performanceBrake = 100

// Result of a performance measurement. Counts are totals over all engines.
type Result struct {
	Workload string
	Engines  int
	Duration time.Duration

	// number of calls to Engine.Run() and the number of times the workload
	// ran to completion
	Runs     int
	Programs int

	Stats jit.Stats
}

// BlocksPerSecond returns the number of blocks run per second.
func (r Result) BlocksPerSecond() float64 {
	return float64(r.Stats.Runs) / r.Duration.Seconds()
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %d engines: %d blocks (%.0f blocks/sec) %d programs in %.2f seconds",
		r.Workload, r.Engines, r.Stats.Runs, r.BlocksPerSecond(), r.Programs, r.Duration.Seconds())
}

func accumulate(a *jit.Stats, b jit.Stats) {
	a.Compiles += b.Compiles
	a.Runs += b.Runs
	a.Chained += b.Chained
	a.Hits += b.Hits
	a.Misses += b.Misses
	a.Evictions += b.Evictions
	a.Invalidations += b.Invalidations
	a.ArenaReuses += b.ArenaReuses
	a.Folded += b.Folded
	a.Removed += b.Removed
}

// Measure runs the workload on the specified number of engines concurrently
// for the duration. Each engine has its own guest memory and state. The first
// engine is the main engine and is the only one that will log.
func Measure(ctx context.Context, prefs *preferences.Preferences, wl Workload, engines int, duration time.Duration) (Result, error) {
	if engines < 1 {
		engines = 1
	}

	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	type partial struct {
		runs     int
		programs int
		stats    jit.Stats
	}
	results := make([]partial, engines)

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := range engines {
		g.Go(func() error {
			label := environment.MainEngine
			if i > 0 {
				label = environment.Label(fmt.Sprintf("perf%d", i))
			}
			env, err := environment.NewEnvironment(label, prefs)
			if err != nil {
				return curated.Errorf(MeasurementFailed, i, err)
			}

			ram, err := wl.Memory()
			if err != nil {
				return curated.Errorf(MeasurementFailed, i, err)
			}
			st := guest.NewState(ram)

			eng, err := jit.NewEngine(env, frontend.NewTranslator(env, ram), st, nil)
			if err != nil {
				return curated.Errorf(MeasurementFailed, i, err)
			}

			res := &results[i]
			addr := wl.Entry
			brake := 0

			for {
				brake++
				if brake >= performanceBrake {
					brake = 0
					select {
					case <-gctx.Done():
						res.stats = eng.Stats()
						return nil
					default:
					}
				}

				exit, err := eng.Run(addr)
				if err != nil {
					return curated.Errorf(MeasurementFailed, i, err)
				}
				res.runs++

				// a call successor is an instruction that the engine cannot
				// run. there is no interpreter to hand over to so the
				// workload is restarted
				if exit.Kind == ir.SuccessorJump {
					addr = exit.Next
				} else {
					res.programs++
					addr = wl.Entry
					for r := range ir.NumHostRegisters {
						st.SetRegister(r, 0)
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{
		Workload: wl.Name,
		Engines:  engines,
		Duration: time.Since(start),
	}
	for _, p := range results {
		res.Runs += p.runs
		res.Programs += p.programs
		accumulate(&res.Stats, p.stats)
	}

	return res, nil
}

// Check the performance of the JIT engine with the supplied workload. The
// measurement is run through RunProfiler() with the profile argument.
func Check(output io.Writer, profile Profile, prefs *preferences.Preferences, wl Workload, engines int, duration string) error {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return fmt.Errorf("performance: %w", err)
	}

	var res Result
	err = RunProfiler(profile, "performance", func() error {
		var err error
		res, err = Measure(context.Background(), prefs, wl, engines, dur)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(output, res.String())
	fmt.Fprintf(output, "compiles: %d  chained: %d  hits: %d  misses: %d  evictions: %d  invalidations: %d\n",
		res.Stats.Compiles, res.Stats.Chained, res.Stats.Hits, res.Stats.Misses,
		res.Stats.Evictions, res.Stats.Invalidations)
	fmt.Fprintf(output, "arena reuses: %d  folded: %d  removed: %d\n",
		res.Stats.ArenaReuses, res.Stats.Folded, res.Stats.Removed)

	return nil
}
