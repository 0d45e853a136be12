// Package status reports the bridge's own health: build metadata, backend
// session state, open streams, and a coarse host snapshot. For a service
// that fronts a monitoring system, being able to monitor the bridge itself
// is table stakes.
package status

import (
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostStats is a coarse snapshot of the machine the bridge runs on.
type HostStats struct {
	UptimeSec      uint64  `json:"uptime_sec"`
	MemTotalBytes  uint64  `json:"mem_total_bytes"`
	MemUsedPercent float64 `json:"mem_used_percent"`
	CPUPercent     float64 `json:"cpu_percent"`
}

// Snapshot is the bridge state served on /api/state.
type Snapshot struct {
	Version       string    `json:"version"`
	BuildSHA      string    `json:"build_sha"`
	BuildDate     string    `json:"build_date"`
	StartedAt     time.Time `json:"started_at"`
	Authenticated bool      `json:"authenticated"`
	OpenStreams   int       `json:"open_streams"`
	Host          HostStats `json:"host"`
}

// Reporter assembles Snapshots from the bridge's live components.
type Reporter struct {
	Version   string
	BuildSHA  string
	BuildDate string
	StartedAt time.Time

	Authenticated func() bool
	OpenStreams   func() int
}

// Snapshot collects current state. Host probes that fail leave their fields
// zero rather than failing the whole snapshot.
func (r *Reporter) Snapshot() Snapshot {
	s := Snapshot{
		Version:   r.Version,
		BuildSHA:  r.BuildSHA,
		BuildDate: r.BuildDate,
		StartedAt: r.StartedAt,
	}
	if r.Authenticated != nil {
		s.Authenticated = r.Authenticated()
	}
	if r.OpenStreams != nil {
		s.OpenStreams = r.OpenStreams()
	}
	if up, err := host.Uptime(); err == nil {
		s.Host.UptimeSec = up
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.Host.MemTotalBytes = vm.Total
		s.Host.MemUsedPercent = vm.UsedPercent
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.Host.CPUPercent = pct[0]
	}
	return s
}
