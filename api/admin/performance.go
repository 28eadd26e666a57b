// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package admin

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

var (
	errCPUProfilerRunning    = errors.New("cpu profiler already running")
	errCPUProfilerNotRunning = errors.New("cpu profiler doesn't exist")
)

// Performance provides helper methods for measuring the current CPU
// utilization of a running Driver. Unlike the teacher's profiler, which
// always writes to a fixed cpu.profile, this one names the profile file
// after the chain it was taken from so profiles pulled from several
// validators (or several runs of the same one) don't clobber each other.
type Performance struct {
	cpuProfileFile *os.File
}

// StartCPUProfiler starts measuring the CPU utilization of this node,
// writing the profile to "cpu-<label>.profile" on StopCPUProfiler.
func (p *Performance) StartCPUProfiler(label string) error {
	if p.cpuProfileFile != nil {
		return errCPUProfilerRunning
	}

	file, err := os.Create(fmt.Sprintf("cpu-%s.profile", label))
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		_ = file.Close() // Return the original error
		return err
	}
	runtime.SetMutexProfileFraction(1)

	p.cpuProfileFile = file
	return nil
}

// StopCPUProfiler stops measuring the cpu utilization of this node
func (p *Performance) StopCPUProfiler() error {
	if p.cpuProfileFile == nil {
		return errCPUProfilerNotRunning
	}

	pprof.StopCPUProfile()
	err := p.cpuProfileFile.Close()
	p.cpuProfileFile = nil
	return err
}
