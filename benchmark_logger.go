package gusort

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// BenchmarkResult captures the result of a single benchmark run
type BenchmarkResult struct {
	Name       string        `json:"name"`
	Status     string        `json:"status"` // "pass", "fail"
	Keys       int64         `json:"keys,omitempty"`
	KeysPerSec float64       `json:"keys_per_sec,omitempty"`
	MBPerSec   float64       `json:"mb_per_sec,omitempty"`
	Passes     int           `json:"passes,omitempty"`
	Algorithm  string        `json:"algorithm,omitempty"`
	KeyType    string        `json:"key_type,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Error      string        `json:"error,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	DeviceName string        `json:"device_name,omitempty"`
}

// BenchmarkLogger manages logging of benchmark results to file
type BenchmarkLogger struct {
	mu          sync.Mutex
	results     []BenchmarkResult
	logDir      string
	sessionFile string
}

var globalLogger = &BenchmarkLogger{
	logDir: "benchmark_logs",
}

// InitBenchmarkLogger initializes the logger for a new benchmark session
func InitBenchmarkLogger(sessionName string) error {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	if err := os.MkdirAll(globalLogger.logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	globalLogger.sessionFile = filepath.Join(globalLogger.logDir,
		fmt.Sprintf("%s_%s.json", sessionName, timestamp))
	globalLogger.results = nil
	return nil
}

// LogBenchmarkResult records one benchmark result in the session
func LogBenchmarkResult(result BenchmarkResult) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	if result.DeviceName == "" {
		result.DeviceName = GetDevice().Name
	}
	globalLogger.results = append(globalLogger.results, result)
}

// FlushBenchmarkLog writes the session's results to the session file
func FlushBenchmarkLog() error {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	if globalLogger.sessionFile == "" {
		return nil
	}
	data, err := json.MarshalIndent(globalLogger.results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal benchmark results: %w", err)
	}
	return os.WriteFile(globalLogger.sessionFile, data, 0644)
}
