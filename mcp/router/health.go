package router

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a snapshot of the machine the server runs on.
type HostStats struct {
	LogicalCores      int     `json:"logical_cores"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
}

// HealthResult is the body served by the health endpoint.
type HealthResult struct {
	Status  string     `json:"status"`
	Server  string     `json:"server"`
	Version string     `json:"version"`
	Host    *HostStats `json:"host,omitempty"`
}

// hostStatsFunc gathers host stats; swapped out in tests.
type hostStatsFunc func() (*HostStats, error)

// readHostStats never blocks: cpu.Percent with a zero interval compares
// against the previous call instead of sampling.
func readHostStats() (*HostStats, error) {
	var stats HostStats

	cores, err := cpu.Counts(true)
	if err != nil {
		return nil, fmt.Errorf("count cpus: %w", err)
	}
	stats.LogicalCores = cores

	percent, err := cpu.Percent(0, false)
	if err != nil {
		return nil, fmt.Errorf("read cpu usage: %w", err)
	}
	if len(percent) > 0 {
		stats.CPUPercent = percent[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("read memory usage: %w", err)
	}
	stats.MemoryUsedPercent = vm.UsedPercent

	return &stats, nil
}
