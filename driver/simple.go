package driver

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/options"
)

// ConstantPower always reports the same power state.
type ConstantPower struct {
	Power DevicePower
}

func (p *ConstantPower) DevicePower() (DevicePower, bool) { return p.Power, true }

// StandardUser reports a fixed user name and language. An empty name is
// reported as unavailable.
type StandardUser struct {
	Name string
	Lang abi.Language
}

func (u *StandardUser) Username() (string, bool) { return u.Name, u.Name != "" }
func (u *StandardUser) Language() abi.Language   { return u.Lang }

// StandardPath serves fixed directories. Empty entries are unavailable.
type StandardPath struct {
	SystemDir           string
	SaveDir             string
	CoreAssetsDir       string
	LibretroPath        string
	PlaylistDir         string
	FileBrowserStartDir string
}

func opt(s string) (string, bool) { return s, s != "" }

func (p *StandardPath) System() (string, bool)           { return opt(p.SystemDir) }
func (p *StandardPath) Save() (string, bool)             { return opt(p.SaveDir) }
func (p *StandardPath) CoreAssets() (string, bool)       { return opt(p.CoreAssetsDir) }
func (p *StandardPath) Libretro() (string, bool)         { return opt(p.LibretroPath) }
func (p *StandardPath) Playlist() (string, bool)         { return opt(p.PlaylistDir) }
func (p *StandardPath) FileBrowserStart() (string, bool) { return opt(p.FileBrowserStartDir) }

// LoggerMessage writes on-screen messages to a zap logger and keeps them.
type LoggerMessage struct {
	logger   *zap.Logger
	messages []MessageExt
	mu       sync.Mutex
}

func NewLoggerMessage(logger *zap.Logger) *LoggerMessage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggerMessage{logger: logger.Named("message")}
}

func (m *LoggerMessage) SetMessage(msg MessageText) bool {
	return m.SetMessageExt(MessageExt{
		Text:     msg.Text,
		Duration: uint32(float64(msg.Frames) * 1000 / 60),
		Level:    abi.LogInfo,
		Target:   abi.MessageTargetAll,
		Type:     abi.MessageTypeNotification,
		Progress: -1,
	})
}

func (m *LoggerMessage) SetMessageExt(msg MessageExt) bool {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	if msg.Target != abi.MessageTargetOSD {
		if ce := m.logger.Check(Level(msg.Level), msg.Text); ce != nil {
			ce.Write(zap.Uint32("duration_ms", msg.Duration), zap.Int8("progress", msg.Progress))
		}
	}
	return true
}

// Messages returns every message received, oldest first.
func (m *LoggerMessage) Messages() []MessageExt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MessageExt(nil), m.messages...)
}

// StandardOptions adapts an options.Model to the Options driver.
type StandardOptions struct {
	*options.Model
	// Categories reports v2 category support back to the core.
	Categories bool
}

func NewStandardOptions() *StandardOptions {
	return &StandardOptions{Model: options.New(), Categories: true}
}

func (o *StandardOptions) Define(set options.Set) bool {
	if err := o.Model.Define(set); err != nil {
		return false
	}
	return set.Version != options.VersionV2 || o.Categories
}

func (o *StandardOptions) Value(key string) (string, bool) { return o.Get(key) }
func (o *StandardOptions) SetValue(key, value string) bool { return o.Set(key, value) }
func (o *StandardOptions) Version() uint32                 { return abi.CoreOptionsVersion }

// StandardTiming reports wall-clock frame deltas, or the core's reference
// time when Fixed is set.
type StandardTiming struct {
	last        time.Time
	override    FastForwardingOverride
	Rate        float32
	mu          sync.Mutex
	Fixed       bool
	FastForward bool
}

func NewStandardTiming(refreshRate float32) *StandardTiming {
	return &StandardTiming{Rate: refreshRate}
}

func (t *StandardTiming) FrameDelta(reference int64) int64 {
	if t.Fixed {
		return reference
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		return reference
	}
	d := now.Sub(t.last).Microseconds()
	t.last = now
	return d
}

func (t *StandardTiming) FastForwarding() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.override.InhibitToggle {
		return t.override.FastForward
	}
	return t.FastForward || t.override.FastForward
}

func (t *StandardTiming) SetFastForwardingOverride(ov FastForwardingOverride) bool {
	t.mu.Lock()
	t.override = ov
	t.mu.Unlock()
	return true
}

func (t *StandardTiming) TargetRefreshRate() float32 { return t.Rate }

func (t *StandardTiming) ThrottleState() ThrottleState {
	if t.FastForwarding() {
		t.mu.Lock()
		defer t.mu.Unlock()
		return ThrottleState{Mode: abi.ThrottleFastForward, Rate: t.Rate * max(t.override.Ratio, 1)}
	}
	return ThrottleState{Mode: abi.ThrottleVSync, Rate: t.Rate}
}

// BufferedMIDI loops MIDI output into memory and serves queued input.
type BufferedMIDI struct {
	in      []byte
	out     []byte
	flushed [][]byte
	mu      sync.Mutex
	Input   bool
	Output  bool
}

func NewBufferedMIDI() *BufferedMIDI {
	return &BufferedMIDI{Input: true, Output: true}
}

func (m *BufferedMIDI) InputEnabled() bool  { return m.Input }
func (m *BufferedMIDI) OutputEnabled() bool { return m.Output }

func (m *BufferedMIDI) Read() (byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Input || len(m.in) == 0 {
		return 0, false
	}
	b := m.in[0]
	m.in = m.in[1:]
	return b, true
}

func (m *BufferedMIDI) Write(b byte, deltaTime uint32) bool {
	if !m.Output {
		return false
	}
	m.mu.Lock()
	m.out = append(m.out, b)
	m.mu.Unlock()
	return true
}

func (m *BufferedMIDI) Flush() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.out) > 0 {
		m.flushed = append(m.flushed, m.out)
		m.out = nil
	}
	return true
}

// Feed queues bytes for the core to read.
func (m *BufferedMIDI) Feed(data ...byte) {
	m.mu.Lock()
	m.in = append(m.in, data...)
	m.mu.Unlock()
}

// Flushed returns the output messages flushed by the core.
func (m *BufferedMIDI) Flushed() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.flushed...)
}
