package runtime

import (
	"testing"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
)

func TestPerfCounters(t *testing.T) {
	c := newFakeCore()
	perf := driver.NewStandardPerf()
	s := newTestSession(t, c, driver.Registry{Perf: perf})

	cb := newRecord(t, c, c.codec.Shapes().PerfCallback)
	if !s.Dispatch(uint32(abi.GetPerfInterface), cb.Addr()) {
		t.Fatal("GET_PERF_INTERFACE refused")
	}
	counter := newRecord(t, c, c.codec.Shapes().PerfCounter)
	counter.SetPtr("ident", c.arena.CString("blit"))

	c.hostCall(t, cb.Ptr("perf_register"), counter.Addr())
	c.hostCall(t, cb.Ptr("perf_register"), counter.Addr())
	for i := 0; i < 3; i++ {
		c.hostCall(t, cb.Ptr("perf_start"), counter.Addr())
		c.hostCall(t, cb.Ptr("perf_stop"), counter.Addr())
	}
	c.hostCall(t, cb.Ptr("perf_log"))

	if !counter.Bool("registered") || counter.Uint("call_cnt") != 3 {
		t.Errorf("counter registered=%v calls=%d", counter.Bool("registered"), counter.Uint("call_cnt"))
	}
	if ids := perf.Registered(); len(ids) != 1 || ids[0] != "blit" {
		t.Errorf("registered = %v", ids)
	}
	report := perf.LastReport()
	if len(report) != 1 || report[0].Ident != "blit" || report[0].Calls != 3 {
		t.Errorf("report = %+v", report)
	}
}

func TestPerfStartRegistersImplicitly(t *testing.T) {
	c := newFakeCore()
	perf := driver.NewStandardPerf()
	s := newTestSession(t, c, driver.Registry{Perf: perf})

	counter := newRecord(t, c, c.codec.Shapes().PerfCounter)
	counter.SetPtr("ident", c.arena.CString("audio"))
	s.perfStart(counter.Addr())
	s.perfStop(counter.Addr())

	if ids := perf.Registered(); len(ids) != 1 || ids[0] != "audio" {
		t.Errorf("registered = %v", ids)
	}
	if counter.Uint("call_cnt") != 1 {
		t.Errorf("calls = %d", counter.Uint("call_cnt"))
	}
}
