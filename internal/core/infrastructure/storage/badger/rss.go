package badger

import (
	rt "runtime"
	"strconv"
	"strings"
	"syscall"

	"bufio"
	"os"
)

// currentRSSBytes reports the process's resident set size, used to log
// memory pressure around backup/compaction windows.
//
// linux: reads VmRSS from /proc/self/status (current, not peak).
// darwin: syscall.Getrusage only reports peak RSS, so current usage is
// estimated from HeapInuse/StackSys plus a sliding system-overhead margin
// that shrinks as HeapIdle grows relative to HeapInuse.
// other platforms: 0.
func currentRSSBytes() uint64 {
	switch rt.GOOS {
	case "linux":
		f, err := os.Open("/proc/self/status")
		if err != nil {
			return 0
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := sc.Text()
			if strings.HasPrefix(line, "VmRSS:") {
				fields := strings.Fields(line)
				if len(fields) >= 2 {
					kb, err := strconv.ParseUint(fields[1], 10, 64)
					if err != nil {
						return 0
					}
					return kb * 1024
				}
			}
		}
		return 0
	case "darwin":
		return estimateDarwinRSSBytes()
	default:
		return 0
	}
}

func estimateDarwinRSSBytes() uint64 {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	maxRSS := uint64(ru.Maxrss)

	var m rt.MemStats
	rt.ReadMemStats(&m)

	heapInuse := m.HeapInuse
	heapIdle := m.HeapIdle
	stackSys := m.StackSys
	sysTotal := m.Sys

	var systemOverhead uint64
	switch {
	case heapIdle > heapInuse:
		systemOverhead = 70 * 1024 * 1024
	case heapIdle > heapInuse/2:
		systemOverhead = 90 * 1024 * 1024
	default:
		systemOverhead = 120 * 1024 * 1024
	}

	estimated := heapInuse + stackSys + systemOverhead

	if heapIdle > heapInuse {
		estimated = heapInuse * 110 / 100
		if maxFromSys := sysTotal * 45 / 100; estimated > maxFromSys {
			estimated = maxFromSys
		}
		if maxFromPeak := maxRSS * 55 / 100; estimated > maxFromPeak {
			estimated = maxFromPeak
		}
		return estimated
	}

	if estimated > maxRSS {
		estimated = maxRSS
	}
	return estimated
}
