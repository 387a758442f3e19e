package runtime

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/resource"
)

const (
	micTypeID = 1
	// maxMicRead bounds one read_mic call.
	maxMicRead = 1 << 20
)

// microphone is one open core microphone. Samples pulled from the source
// wait in fifo until the core reads them.
type microphone struct {
	src    driver.MicrophoneSource
	params driver.MicrophoneParams
	fifo   []int16
	active bool
}

func (m *microphone) Drop() { m.src.Close() }

// fill pulls from the source until want samples are buffered or the source
// has nothing more.
func (m *microphone) fill(want int) {
	for len(m.fifo) < want {
		chunk := m.src.Pull()
		if len(chunk) == 0 {
			return
		}
		m.fifo = append(m.fifo, chunk...)
	}
}

func (m *microphone) take(n int) []int16 {
	n = min(n, len(m.fifo))
	out := m.fifo[:n:n]
	m.fifo = m.fifo[n:]
	return out
}

// micTable maps the opaque retro_microphone_t values handed to the core to
// open microphones. Handles carry a generation, so a closed handle is never
// mistaken for a newer microphone in the same slot.
type micTable struct {
	table *resource.UnifiedTable
	mics  *resource.Typed[*microphone]
}

// newMicTable returns an empty table. obs, when set, sees every microphone
// opened and closed, including those closed by closeAll.
func newMicTable(obs resource.Observer) *micTable {
	t := resource.NewTable()
	if obs != nil {
		t.Subscribe(obs)
	}
	return &micTable{table: t, mics: resource.NewTyped[*microphone](t, micTypeID)}
}

func (t *micTable) open(m *microphone) uint64 {
	return uint64(t.mics.Insert(m))
}

func (t *micTable) get(h uint64) (*microphone, bool) {
	if h == 0 || h > uint64(^uint32(0)) {
		return nil, false
	}
	return t.mics.Get(resource.Handle(h))
}

func (t *micTable) close(h uint64) bool {
	if h == 0 || h > uint64(^uint32(0)) {
		return false
	}
	_, ok := t.mics.Remove(resource.Handle(h))
	return ok
}

func (t *micTable) len() int { return t.mics.Len() }

// closeAll closes every open microphone. The table stays usable.
func (t *micTable) closeAll() { t.table.Clear() }

// micOpen opens a microphone with the parameters at paramsPtr, or driver
// defaults when it is NULL. It returns 0 on failure. New microphones are
// inactive until the core enables them.
func (s *Session) micOpen(paramsPtr uint64) uint64 {
	if s.reg.Microphone == nil {
		return 0
	}
	var params driver.MicrophoneParams
	if paramsPtr != 0 {
		r := s.codec.Record(s.shapes.MicrophoneParams, paramsPtr)
		params.Rate = r.U32("rate")
		if err := r.Err(); err != nil {
			s.log.Debug("microphone params unreadable", zap.Error(err))
			return 0
		}
	}
	src, effective, err := s.reg.Microphone.Open(params)
	if err != nil {
		s.log.Debug("microphone open failed", zap.Error(err))
		return 0
	}
	src.SetActive(false)
	h := s.mics.open(&microphone{src: src, params: effective})
	if h == 0 {
		src.Close()
		return 0
	}
	return h
}

// micEvent logs microphones entering and leaving the table.
func (s *Session) micEvent(e resource.Event) {
	m, ok := e.Value.(*microphone)
	if !ok {
		return
	}
	s.log.Debug("microphone "+e.Type.String(),
		zap.Uint32("handle", uint32(e.Handle)),
		zap.Uint32("rate", m.params.Rate),
		zap.Int("open", s.mics.len()))
}

func (s *Session) micClose(h uint64) {
	if !s.mics.close(h) {
		s.log.Debug("close of unknown microphone", zap.Uint64("handle", h))
	}
}

func (s *Session) micGetParams(h, out uint64) bool {
	m, ok := s.mics.get(h)
	if !ok || out == 0 {
		return false
	}
	r := s.codec.Record(s.shapes.MicrophoneParams, out)
	r.SetUint("rate", uint64(m.params.Rate))
	return r.Err() == nil
}

func (s *Session) micSetState(h uint64, active bool) bool {
	m, ok := s.mics.get(h)
	if !ok {
		return false
	}
	m.active = active
	m.src.SetActive(active)
	return true
}

func (s *Session) micGetState(h uint64) bool {
	m, ok := s.mics.get(h)
	return ok && m.active
}

// micRead copies up to count samples into buf and returns how many were
// written. Unknown and inactive microphones report -1.
func (s *Session) micRead(h, buf, count uint64) int {
	m, ok := s.mics.get(h)
	if !ok || !m.active {
		return -1
	}
	if count == 0 {
		return 0
	}
	if buf == 0 || count > maxMicRead {
		return -1
	}
	m.fill(int(count))
	samples := m.take(int(count))
	if len(samples) == 0 {
		return 0
	}
	raw := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(v))
	}
	if err := s.mem.Write(buf, raw); err != nil {
		s.log.Debug("microphone read out of bounds", zap.Error(err))
		return -1
	}
	return len(samples)
}
