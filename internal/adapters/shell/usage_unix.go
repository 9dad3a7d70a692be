//go:build unix

package shell

import (
	"os"
	"runtime"
	"syscall"
	"time"

	"go.trai.ch/twin/internal/core/domain"
)

// processUsage extracts the child's CPU time and peak RSS.
func processUsage(state *os.ProcessState) (domain.ResourceUsage, bool) {
	if state == nil {
		return domain.ResourceUsage{}, false
	}
	ru, ok := state.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return domain.ResourceUsage{}, false
	}

	rss := int64(ru.Maxrss)
	// Darwin reports bytes, the other unixes kilobytes.
	if runtime.GOOS != "darwin" && runtime.GOOS != "ios" {
		rss *= 1024
	}

	return domain.ResourceUsage{
		CPUTime:     time.Duration(ru.Utime.Nano() + ru.Stime.Nano()),
		MaxRSSBytes: rss,
	}, true
}
