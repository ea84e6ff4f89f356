package logger

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// ratioSampler passes the first N of every M events. A zero ratio means
// sampling is disabled and everything passes.
type ratioSampler struct {
	mu    sync.RWMutex
	allow int
	cycle int
	seq   atomic.Uint64
}

func newRatioSampler(allow, cycle int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(allow, cycle)
	return s
}

// Set replaces the ratio and restarts the cycle.
func (s *ratioSampler) Set(allow, cycle int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if allow <= 0 || cycle <= 0 {
		s.allow, s.cycle = 0, 0
	} else {
		s.allow, s.cycle = min(allow, cycle), cycle
	}
	s.seq.Store(0)
}

// Allow reports whether the current event falls inside the sampled window.
func (s *ratioSampler) Allow() bool {
	s.mu.RLock()
	allow, cycle := s.allow, s.cycle
	s.mu.RUnlock()
	if cycle <= 0 {
		return true
	}
	idx := s.seq.Add(1) - 1
	return int(idx%uint64(cycle)) < allow
}

// parseRatioSpec reads "N/M" or a bare denominator ("50" means 1/50).
// Anything unparsable or non-positive disables sampling.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if numPart, denPart, ok := strings.Cut(spec, "/"); ok {
		num, errN := strconv.Atoi(strings.TrimSpace(numPart))
		den, errD := strconv.Atoi(strings.TrimSpace(denPart))
		if errN == nil && errD == nil {
			return num, den
		}
		return 0, 0
	}
	if den, err := strconv.Atoi(spec); err == nil && den > 0 {
		return 1, den
	}
	return 0, 0
}
