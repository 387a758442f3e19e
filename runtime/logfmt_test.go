package runtime

import (
	"testing"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
)

type captureLog struct {
	levels []abi.LogLevel
	msgs   []string
}

func (l *captureLog) Log(level abi.LogLevel, msg string) {
	l.levels = append(l.levels, level)
	l.msgs = append(l.msgs, msg)
}

func TestFormatPrintf(t *testing.T) {
	c := newFakeCore()
	s := newTestSession(t, c, driver.Registry{})
	hello := c.arena.CString("hello")

	tests := []struct {
		name   string
		format string
		args   []uint64
		want   string
	}{
		{"plain", "no conversions", nil, "no conversions"},
		{"int", "%d apples", []uint64{42}, "42 apples"},
		{"negative int", "%d", []uint64{0xFFFFFFFD}, "-3"},
		{"unsigned", "%u", []uint64{0xFFFFFFFF}, "4294967295"},
		{"long long", "%lld", []uint64{^uint64(4)}, "-5"},
		{"char width", "%hhd", []uint64{0x1FF}, "-1"},
		{"size_t", "%zu bytes", []uint64{4096}, "4096 bytes"},
		{"width", "[%5d]", []uint64{42}, "[   42]"},
		{"left align", "[%-4d]", []uint64{7}, "[7   ]"},
		{"hex", "%x %X", []uint64{255, 255}, "ff FF"},
		{"zero pad hex", "%08x", []uint64{0xbeef}, "0000beef"},
		{"octal", "%o", []uint64{8}, "10"},
		{"char", "%c%c", []uint64{'o', 'k'}, "ok"},
		{"string", "%s world", []uint64{hello}, "hello world"},
		{"string precision", "%.3s", []uint64{hello}, "hel"},
		{"null string", "%s", []uint64{0}, "(null)"},
		{"pointer", "%p", []uint64{0x1234}, "0x1234"},
		{"percent", "100%%", nil, "100%"},
		{"trailing percent", "100%", nil, "100%"},
		{"missing argument", "%d and %d", []uint64{1}, "1 and %d"},
		{"float kept literal", "%f then %d", []uint64{7}, "%f then 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.formatPrintf(tt.format, tt.args); got != tt.want {
				t.Errorf("formatPrintf(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestArgSizeFollowsPointerSize(t *testing.T) {
	s := &Session{ptrSize: 4}
	if got := s.formatPrintf("%ld", []uint64{0xFFFFFFFF}); got != "-1" {
		t.Errorf("32-bit long = %q, want -1", got)
	}
	s.ptrSize = 8
	if got := s.formatPrintf("%ld", []uint64{0xFFFFFFFF}); got != "4294967295" {
		t.Errorf("64-bit long = %q, want 4294967295", got)
	}
}

func TestCoreLogThroughInterface(t *testing.T) {
	c := newFakeCore()
	logs := &captureLog{}
	s := newTestSession(t, c, driver.Registry{Log: logs})

	r := newRecord(t, c, c.codec.Shapes().LogCallback)
	if !s.Dispatch(uint32(abi.GetLogInterface), r.Addr()) {
		t.Fatal("GET_LOG_INTERFACE refused")
	}
	fn := r.Ptr("log")
	c.hostCall(t, fn, uint64(abi.LogWarn), c.arena.CString("loaded %d of %s\n"), 3, c.arena.CString("bios"))
	c.hostCall(t, fn, uint64(abi.LogInfo), 0)

	if len(logs.msgs) != 1 {
		t.Fatalf("messages = %q", logs.msgs)
	}
	if logs.msgs[0] != "loaded 3 of bios" || logs.levels[0] != abi.LogWarn {
		t.Errorf("log = %v %q", logs.levels[0], logs.msgs[0])
	}
}
