package monitoring

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// cpuSampleInterval is the window over which CPU utilization is averaged.
// gopsutil takes one reading at the start and one at the end of the window,
// sleeping in between; callers must run Sample off the request path.
const cpuSampleInterval = 200 * time.Millisecond

// SystemSample is a point-in-time snapshot of host resource usage.
type SystemSample struct {
	// CPUUsage is the average CPU utilization in percent over the
	// sampling interval.
	CPUUsage float64

	TotalMemory uint64
	UsedMemory  uint64
	TotalSwap   uint64
	UsedSwap    uint64

	// Disk totals are restricted to the configured mount points.
	TotalDisksSpace uint64
	UsedDisksSpace  uint64
}

// SystemSampler gathers host resource metrics for a fixed set of disk
// mount points.
type SystemSampler struct {
	mountPoints []string
}

// NewSystemSampler creates a sampler monitoring the given mount points.
func NewSystemSampler(mountPoints []string) *SystemSampler {
	return &SystemSampler{mountPoints: mountPoints}
}

// Sample gathers a resource snapshot. The call blocks for roughly
// cpuSampleInterval while the CPU average is computed.
func (s *SystemSampler) Sample(ctx context.Context) (SystemSample, error) {
	sample := SystemSample{}

	percentages, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false)
	if err != nil {
		return sample, err
	}
	if len(percentages) > 0 {
		sample.CPUUsage = percentages[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return sample, err
	}
	sample.TotalMemory = vm.Total
	sample.UsedMemory = vm.Used

	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return sample, err
	}
	sample.TotalSwap = swap.Total
	sample.UsedSwap = swap.Used

	for _, mountPoint := range s.mountPoints {
		usage, err := disk.UsageWithContext(ctx, mountPoint)
		if err != nil {
			continue
		}
		sample.TotalDisksSpace += usage.Total
		sample.UsedDisksSpace += usage.Used
	}

	return sample, nil
}
