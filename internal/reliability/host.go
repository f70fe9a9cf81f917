// Package reliability checks that the host can carry a solve before it starts.
package reliability

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// cpuSampleWindow keeps the probe short; it runs once per invocation
const cpuSampleWindow = 100 * time.Millisecond

// headroomFraction is the share of available memory a solve may claim
const headroomFraction = 0.5

// HostStats is a point-in-time view of host resources
type HostStats struct {
	CPUPercent     float64
	LogicalCPUs    int
	MemUsedPercent float64
	MemAvailable   uint64 // bytes
	MemTotal       uint64 // bytes
}

// HostProbe samples CPU and memory usage
type HostProbe struct {
	log zerolog.Logger
}

// NewHostProbe creates a new host probe
func NewHostProbe(log zerolog.Logger) *HostProbe {
	return &HostProbe{
		log: log.With().Str("component", "host_probe").Logger(),
	}
}

// Sample reads CPU and memory statistics. Failures are logged and leave the
// corresponding fields at zero.
func (p *HostProbe) Sample() HostStats {
	var stats HostStats

	cpuPercent, err := cpu.Percent(cpuSampleWindow, false)
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(cpuPercent) > 0 {
		stats.CPUPercent = cpuPercent[0]
	}

	if n, err := cpu.Counts(true); err == nil {
		stats.LogicalCPUs = n
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return stats
	}
	stats.MemUsedPercent = memStat.UsedPercent
	stats.MemAvailable = memStat.Available
	stats.MemTotal = memStat.Total

	return stats
}

// CheckHeadroom samples the host and compares available memory against the
// bytes a solve is expected to need. The caller decides whether to go on.
func (p *HostProbe) CheckHeadroom(required uint64) (HostStats, error) {
	stats := p.Sample()

	p.log.Info().
		Float64("cpu_percent", stats.CPUPercent).
		Int("logical_cpus", stats.LogicalCPUs).
		Float64("mem_used_percent", stats.MemUsedPercent).
		Uint64("mem_available_mb", stats.MemAvailable/1024/1024).
		Uint64("solve_estimate_mb", required/1024/1024).
		Msg("Host resources before solve")

	return stats, stats.Headroom(required)
}

// Headroom reports an error when required exceeds the allowed share of available memory.
// Unknown availability (zero) is not an error.
func (s HostStats) Headroom(required uint64) error {
	if s.MemAvailable == 0 {
		return nil
	}
	allowed := uint64(float64(s.MemAvailable) * headroomFraction)
	if required > allowed {
		return fmt.Errorf("solve needs ~%d MB, only %d MB of %d MB available may be used",
			required/1024/1024, allowed/1024/1024, s.MemAvailable/1024/1024)
	}
	return nil
}
