//go:build !unix

package shell

import (
	"os"

	"go.trai.ch/twin/internal/core/domain"
)

func processUsage(state *os.ProcessState) (domain.ResourceUsage, bool) {
	if state == nil {
		return domain.ResourceUsage{}, false
	}
	return domain.ResourceUsage{CPUTime: state.UserTime() + state.SystemTime()}, true
}
