//go:build !linux

package gusort

import "errors"

// perfMonitor is unavailable off Linux; MeasureSort falls back to timing.
type perfMonitor struct{}

func newPerfMonitor() (*perfMonitor, error) {
	return nil, errors.New("gusort: hardware counters unsupported on this platform")
}

func (m *perfMonitor) start()             {}
func (m *perfMonitor) stop() PerfCounters { return PerfCounters{} }
func (m *perfMonitor) close()             {}
