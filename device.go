package gusort

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks available CPU instruction set extensions. The sorting
// kernels are portable Go, but wide-SIMD availability is reported through
// Device properties so harnesses can record what hardware they measured on.
type CPUFeatures struct {
	HasAVX    bool
	HasAVX2   bool
	HasAVX512 bool
	HasSSE4   bool
	HasPOPCNT bool
}

// defaultSystemMemory is reported when the platform probe fails.
const defaultSystemMemory = 16 * 1024 * 1024 * 1024

// Global CPU feature detection
var cpuFeatures CPUFeatures

func init() {
	detectCPUFeatures()
}

// detectCPUFeatures populates the global cpuFeatures struct
func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasSSE4:   cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:    cpu.X86.HasAVX,
		HasAVX2:   cpu.X86.HasAVX2,
		HasAVX512: cpu.X86.HasAVX512F,
		HasPOPCNT: cpu.X86.HasPOPCNT,
	}
}

// GetCPUFeatures returns the detected CPU features
func GetCPUFeatures() CPUFeatures {
	return cpuFeatures
}

// deviceName builds a descriptive name for the emulated device.
func deviceName() string {
	simd := "scalar"
	switch {
	case cpuFeatures.HasAVX512:
		simd = "AVX-512"
	case cpuFeatures.HasAVX2:
		simd = "AVX2"
	case cpuFeatures.HasSSE4:
		simd = "SSE4"
	}
	return fmt.Sprintf("CPU (%s/%s, %s)", runtime.GOOS, runtime.GOARCH, simd)
}
