/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: profiler.go
Description: CPU and heap profiling for validator runs. Writes pprof files
into an output directory for the lifetime of a command.
*/

package monitoring

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ProfileResult describes one written profile
type ProfileResult struct {
	Type       string        `json:"type"`
	OutputFile string        `json:"output_file"`
	Duration   time.Duration `json:"duration"`
	Size       int64         `json:"size"`
}

// Profiler records a CPU profile between Start and Stop and a heap profile at Stop
type Profiler struct {
	outputDir string
	logger    *logrus.Logger

	mu        sync.Mutex
	running   bool
	cpuFile   *os.File
	startTime time.Time
}

// NewProfiler creates a profiler writing into outputDir
func NewProfiler(outputDir string, logger *logrus.Logger) *Profiler {
	return &Profiler{outputDir: outputDir, logger: logger}
}

// Start begins CPU profiling
func (p *Profiler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("profiler already running")
	}
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(p.outputDir, "cpu.prof"))
	if err != nil {
		return fmt.Errorf("failed to create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to start cpu profile: %w", err)
	}

	p.cpuFile = f
	p.running = true
	p.startTime = time.Now()
	p.logger.WithField("output_dir", p.outputDir).Debug("Profiler started")
	return nil
}

// Stop ends CPU profiling and writes a heap profile
func (p *Profiler) Stop() ([]ProfileResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil, fmt.Errorf("profiler not running")
	}
	p.running = false
	duration := time.Since(p.startTime)

	pprof.StopCPUProfile()
	cpuPath := p.cpuFile.Name()
	if err := p.cpuFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close cpu profile: %w", err)
	}

	heapPath := filepath.Join(p.outputDir, "heap.prof")
	if err := writeHeapProfile(heapPath); err != nil {
		return nil, err
	}

	results := []ProfileResult{
		{Type: "cpu", OutputFile: cpuPath, Duration: duration, Size: fileSize(cpuPath)},
		{Type: "heap", OutputFile: heapPath, Duration: duration, Size: fileSize(heapPath)},
	}
	for _, r := range results {
		p.logger.WithFields(logrus.Fields{
			"type":     r.Type,
			"file":     r.OutputFile,
			"size":     r.Size,
			"duration": r.Duration,
		}).Info("Profile written")
	}
	return results, nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heap profile: %w", err)
	}
	defer f.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write heap profile: %w", err)
	}
	return nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
