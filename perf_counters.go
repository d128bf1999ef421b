// Package gusort performance counter integration for benchmark harnesses
package gusort

import "time"

// PerfCounters holds hardware counter measurements around one sort run
type PerfCounters struct {
	Duration     time.Duration
	Cycles       uint64
	Instructions uint64
	CacheMisses  uint64

	// Derived metrics
	IPC        float64 // Instructions per cycle
	KeysPerSec float64 // Keys sorted per second
}

// derive fills in the derived metrics after a measurement window closes.
func (p *PerfCounters) derive(keys int64) {
	if p.Cycles > 0 {
		p.IPC = float64(p.Instructions) / float64(p.Cycles)
	}
	if p.Duration > 0 {
		p.KeysPerSec = float64(keys) / p.Duration.Seconds()
	}
}

// MeasureSort times fn (a single sort invocation over the given key count)
// and collects hardware counters where the platform supports them.
func MeasureSort(keys int64, fn func() error) (PerfCounters, error) {
	mon, monErr := newPerfMonitor()

	start := time.Now()
	if mon != nil {
		mon.start()
	}
	err := fn()
	var pc PerfCounters
	if mon != nil {
		pc = mon.stop()
		mon.close()
	}
	pc.Duration = time.Since(start)
	pc.derive(keys)

	if err != nil {
		return pc, err
	}
	// A missing counter facility is not an error; timing still stands.
	_ = monErr
	return pc, nil
}
