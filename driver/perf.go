package driver

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/cpu"

	"github.com/wippyai/retro-runtime/abi"
)

// StandardPerf measures time with the Go monotonic clock and reports CPU
// features detected by golang.org/x/sys/cpu.
type StandardPerf struct {
	start    time.Time
	logger   *zap.Logger
	idents   []string
	reports  [][]PerfCounter
	features uint64
	mu       sync.Mutex
}

func NewStandardPerf() *StandardPerf {
	return &StandardPerf{start: time.Now(), features: detectSIMD(), logger: zap.NewNop()}
}

// WithLogger makes Report log each counter.
func (p *StandardPerf) WithLogger(logger *zap.Logger) *StandardPerf {
	p.logger = logger.Named("perf")
	return p
}

func (p *StandardPerf) TimeUsec() int64 {
	return time.Since(p.start).Microseconds()
}

func (p *StandardPerf) CPUFeatures() uint64 { return p.features }

// Counter returns nanoseconds since the driver was created.
func (p *StandardPerf) Counter() uint64 {
	return uint64(time.Since(p.start).Nanoseconds())
}

func (p *StandardPerf) Register(ident string) {
	p.mu.Lock()
	p.idents = append(p.idents, ident)
	p.mu.Unlock()
}

func (p *StandardPerf) Report(counters []PerfCounter) {
	p.mu.Lock()
	p.reports = append(p.reports, counters)
	p.mu.Unlock()
	for _, c := range counters {
		p.logger.Info("perf counter",
			zap.String("ident", c.Ident),
			zap.Uint64("total_ns", c.Total),
			zap.Uint64("calls", c.Calls))
	}
}

// Registered returns the counter identifiers registered so far.
func (p *StandardPerf) Registered() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.idents...)
}

// LastReport returns the counters passed to the latest Report.
func (p *StandardPerf) LastReport() []PerfCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.reports) == 0 {
		return nil
	}
	return p.reports[len(p.reports)-1]
}

func detectSIMD() uint64 {
	var f uint64
	set := func(bit uint64, ok bool) {
		if ok {
			f |= bit
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		// MMX, SSE and CMOV are implied by SSE2.
		set(abi.SIMDMMX|abi.SIMDMMXEXT|abi.SIMDSSE|abi.SIMDCMOV, cpu.X86.HasSSE2)
		set(abi.SIMDSSE2, cpu.X86.HasSSE2)
		set(abi.SIMDSSE3, cpu.X86.HasSSE3)
		set(abi.SIMDSSSE3, cpu.X86.HasSSSE3)
		set(abi.SIMDSSE4, cpu.X86.HasSSE41)
		set(abi.SIMDSSE42, cpu.X86.HasSSE42)
		set(abi.SIMDAVX, cpu.X86.HasAVX)
		set(abi.SIMDAVX2, cpu.X86.HasAVX2)
		set(abi.SIMDAES, cpu.X86.HasAES)
		set(abi.SIMDPOPCNT, cpu.X86.HasPOPCNT)
	case "arm64":
		set(abi.SIMDASIMD|abi.SIMDNEON, cpu.ARM64.HasASIMD)
		set(abi.SIMDAES, cpu.ARM64.HasAES)
	case "arm":
		set(abi.SIMDNEON, cpu.ARM.HasNEON)
		set(abi.SIMDVFPV3, cpu.ARM.HasVFPv3)
		set(abi.SIMDVFPV4, cpu.ARM.HasVFPv4)
	}
	return f
}
