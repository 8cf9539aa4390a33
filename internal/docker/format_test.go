package docker

import (
	"testing"

	"github.com/docker/docker/api/types"

	"dockstats/internal/metrics"
)

func sampleStats() *types.StatsJSON {
	var s types.StatsJSON
	s.CPUStats.SystemUsage = 200
	s.PreCPUStats.SystemUsage = 100
	s.CPUStats.CPUUsage.TotalUsage = 150
	s.PreCPUStats.CPUUsage.TotalUsage = 100
	s.CPUStats.OnlineCPUs = 2
	s.MemoryStats.Usage = 300
	s.MemoryStats.Limit = 1000
	s.MemoryStats.Stats = map[string]uint64{"inactive_file": 100}
	s.Networks = map[string]types.NetworkStats{
		"eth0": {RxBytes: 1000, TxBytes: 600},
		"eth1": {RxBytes: 500, TxBytes: 50},
	}
	return &s
}

func TestFormatStats(t *testing.T) {
	got := FormatStats("web-app", sampleStats())
	if got.Container != "web-app" || got.CPUPercent != "100.00%" || got.MemPercent != "20.00%" || got.NetIO != "1.5kB / 650B" {
		t.Fatalf("unexpected formatted stats: %+v", got)
	}
}

func TestFormatStatsFeedsParsers(t *testing.T) {
	samples, err := metrics.Build(FormatStats("web-app", sampleStats()))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := map[string]float64{
		"web_app_cpu_usage":            100,
		"web_app_mem_usage":            20,
		"web_app_network_input_bytes":  650,
		"web_app_network_output_bytes": 1500,
	}
	for _, s := range samples {
		if want[s.Name] != s.Value {
			t.Fatalf("%s = %v, want %v", s.Name, s.Value, want[s.Name])
		}
	}
}

func TestFormatStatsZeroes(t *testing.T) {
	var s types.StatsJSON
	got := FormatStats("idle", &s)
	if got.CPUPercent != "0.00%" || got.MemPercent != "0.00%" || got.NetIO != "0B / 0B" {
		t.Fatalf("unexpected formatted stats: %+v", got)
	}
}

func TestMemPercentPrefersCgroupV1Key(t *testing.T) {
	var s types.StatsJSON
	s.MemoryStats.Usage = 500
	s.MemoryStats.Limit = 1000
	s.MemoryStats.Stats = map[string]uint64{"total_inactive_file": 400, "inactive_file": 100}
	if got := memPercent(&s); got != 10 {
		t.Fatalf("memPercent = %v, want 10", got)
	}
}
