package manager

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

const (
	cpuSampleInterval = 250 * time.Millisecond
	mebibyte          = 1 << 20
	procStat          = "/proc/stat"
)

type cpuStats struct {
	idle  uint64
	total uint64
}

func readProcStat() (cpuStats, error) {
	file, err := os.Open(procStat)
	if err != nil {
		return cpuStats{}, err
	}
	defer file.Close()
	return parseProcStat(file)
}

// parseProcStat reads the aggregate "cpu" line. Time spent waiting for I/O
// counts as idle.
func parseProcStat(reader io.Reader) (cpuStats, error) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		var stats cpuStats
		for index, field := range fields[1:] {
			value, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return cpuStats{}, fmt.Errorf("error parsing %s: %s",
					procStat, err)
			}
			stats.total += value
			if index == 3 || index == 4 {
				stats.idle += value
			}
		}
		return stats, nil
	}
	if err := scanner.Err(); err != nil {
		return cpuStats{}, err
	}
	return cpuStats{}, fmt.Errorf("no cpu line in %s", procStat)
}

func cpuUsage(first, second cpuStats) float64 {
	if second.total <= first.total {
		return 0
	}
	total := float64(second.total - first.total)
	idle := float64(second.idle - first.idle)
	return 100 * (total - idle) / total
}

func (m *Manager) getStatus() (proto.Status, error) {
	first, err := m.readCpuStats()
	if err != nil {
		return proto.Status{}, err
	}
	time.Sleep(cpuSampleInterval)
	second, err := m.readCpuStats()
	if err != nil {
		return proto.Status{}, err
	}
	memInfo, err := m.readMemInfo()
	if err != nil {
		return proto.Status{}, err
	}
	unused := memInfo.Free + memInfo.Buffers + memInfo.Cached
	var used uint64
	if memInfo.Total > unused {
		used = memInfo.Total - unused
	}
	return proto.Status{
		Node: m.node,
		CPU:  cpuUsage(first, second),
		Memory: proto.MemoryStatus{
			Used:  float64(used) / mebibyte,
			Total: float64(memInfo.Total) / mebibyte,
		},
	}, nil
}
