package docker

import (
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/go-units"

	"dockstats/internal/models"
)

// FormatStats renders Engine API stats the way `docker stats` prints them, so
// both sources feed the same parsers.
func FormatStats(name string, s *types.StatsJSON) models.RawContainerStat {
	var rx, tx float64
	for _, n := range s.Networks {
		rx += float64(n.RxBytes)
		tx += float64(n.TxBytes)
	}
	return models.RawContainerStat{
		Container:  name,
		CPUPercent: fmt.Sprintf("%.2f%%", cpuPercent(s)),
		MemPercent: fmt.Sprintf("%.2f%%", memPercent(s)),
		NetIO:      units.HumanSizeWithPrecision(rx, 3) + " / " + units.HumanSizeWithPrecision(tx, 3),
	}
}

func cpuPercent(s *types.StatsJSON) float64 {
	cpuDelta := float64(s.CPUStats.CPUUsage.TotalUsage) - float64(s.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(s.CPUStats.SystemUsage) - float64(s.PreCPUStats.SystemUsage)
	cpus := float64(s.CPUStats.OnlineCPUs)
	if cpus == 0 {
		cpus = float64(len(s.CPUStats.CPUUsage.PercpuUsage))
		if cpus == 0 {
			cpus = 1
		}
	}
	if sysDelta > 0 && cpuDelta > 0 {
		return (cpuDelta / sysDelta) * cpus * 100
	}
	return 0
}

// memPercent excludes the page cache, using the cgroup v1 key when present
// and the v2 key otherwise.
func memPercent(s *types.StatsJSON) float64 {
	if s.MemoryStats.Limit == 0 {
		return 0
	}
	used := s.MemoryStats.Usage
	if v, ok := s.MemoryStats.Stats["total_inactive_file"]; ok && v < used {
		used -= v
	} else if v := s.MemoryStats.Stats["inactive_file"]; v < used {
		used -= v
	}
	return float64(used) / float64(s.MemoryStats.Limit) * 100
}
