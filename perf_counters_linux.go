//go:build linux

package gusort

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// perfMonitor reads CPU cycle, instruction and cache-miss counters through
// the perf_event_open interface, scoped to the calling process.
type perfMonitor struct {
	fds [3]int
}

var perfEvents = [3]struct {
	typ    uint32
	config uint64
}{
	{unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CPU_CYCLES},
	{unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_INSTRUCTIONS},
	{unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_MISSES},
}

func newPerfMonitor() (*perfMonitor, error) {
	m := &perfMonitor{fds: [3]int{-1, -1, -1}}
	for i, ev := range perfEvents {
		attr := unix.PerfEventAttr{
			Type:   ev.typ,
			Size:   uint32(unix.PERF_ATTR_SIZE_VER5),
			Config: ev.config,
			Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
		}
		fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			m.close()
			return nil, err
		}
		m.fds[i] = fd
	}
	return m, nil
}

func (m *perfMonitor) start() {
	for _, fd := range m.fds {
		if fd >= 0 {
			unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0)
			unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0)
		}
	}
}

func (m *perfMonitor) stop() PerfCounters {
	var pc PerfCounters
	vals := [3]uint64{}
	for i, fd := range m.fds {
		if fd < 0 {
			continue
		}
		unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0)
		var buf [8]byte
		if n, err := unix.Read(fd, buf[:]); err == nil && n == 8 {
			vals[i] = binary.LittleEndian.Uint64(buf[:])
		}
	}
	pc.Cycles = vals[0]
	pc.Instructions = vals[1]
	pc.CacheMisses = vals[2]
	return pc
}

func (m *perfMonitor) close() {
	for i, fd := range m.fds {
		if fd >= 0 {
			unix.Close(fd)
			m.fds[i] = -1
		}
	}
}
