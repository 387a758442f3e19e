package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/driver"
)

// perfCounters lists retro_perf_counter structs the core registered, in
// registration order. The structs live in core memory and are updated in
// place.
type perfCounters struct {
	addrs []uint64
	seen  map[uint64]bool
}

func (p *perfCounters) add(addr uint64) bool {
	if p.seen == nil {
		p.seen = make(map[uint64]bool)
	}
	if p.seen[addr] {
		return false
	}
	p.seen[addr] = true
	p.addrs = append(p.addrs, addr)
	return true
}

func (s *Session) perfRegister(addr uint64) {
	if s.reg.Perf == nil || addr == 0 {
		return
	}
	r := s.codec.Record(s.shapes.PerfCounter, addr)
	if r.Bool("registered") {
		return
	}
	ident := r.String("ident")
	r.SetBool("registered", true)
	if err := r.Err(); err != nil {
		s.log.Debug("perf counter unreadable", zap.Error(err))
		return
	}
	if s.perf.add(addr) {
		s.reg.Perf.Register(ident)
	}
}

func (s *Session) perfStart(addr uint64) {
	if s.reg.Perf == nil || addr == 0 {
		return
	}
	r := s.codec.Record(s.shapes.PerfCounter, addr)
	if !r.Bool("registered") {
		s.perfRegister(addr)
	}
	r.SetUint("call_cnt", r.Uint("call_cnt")+1)
	r.SetUint("start", s.reg.Perf.Counter())
	if err := r.Err(); err != nil {
		s.log.Debug("perf counter unreadable", zap.Error(err))
	}
}

func (s *Session) perfStop(addr uint64) {
	if s.reg.Perf == nil || addr == 0 {
		return
	}
	r := s.codec.Record(s.shapes.PerfCounter, addr)
	now := s.reg.Perf.Counter()
	r.SetUint("total", r.Uint("total")+now-r.Uint("start"))
	if err := r.Err(); err != nil {
		s.log.Debug("perf counter unreadable", zap.Error(err))
	}
}

// perfLog reports a snapshot of every registered counter.
func (s *Session) perfLog() {
	if s.reg.Perf == nil {
		return
	}
	out := make([]driver.PerfCounter, 0, len(s.perf.addrs))
	for _, addr := range s.perf.addrs {
		r := s.codec.Record(s.shapes.PerfCounter, addr)
		c := driver.PerfCounter{
			Ident: r.String("ident"),
			Start: r.Uint("start"),
			Total: r.Uint("total"),
			Calls: r.Uint("call_cnt"),
		}
		if r.Err() != nil {
			continue
		}
		out = append(out, c)
	}
	s.reg.Perf.Report(out)
}
