// Package sysmon samples host CPU, memory and load figures for the run
// report. On an embedded board sharing its fabric with the accelerator,
// host pressure is useful context when a completion wait runs long.
package sysmon

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of host resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	Load1      float64 // 1-minute load average
}

// Sample collects a host snapshot. CPU uses interval=0 (delta since last
// call). Fields that cannot be read stay zero.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	avg, err := load.Avg()
	if err == nil && avg != nil {
		s.Load1 = avg.Load1
	}
	return s
}
