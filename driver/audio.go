package driver

import (
	"io"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ArrayAudio accumulates interleaved stereo samples in memory.
type ArrayAudio struct {
	samples      []int16
	bufferStatus AudioBufferStatusFunc
	av           AVInfo
	latency      uint32
	mu           sync.Mutex
	callback     bool
	Disabled     bool
}

func NewArrayAudio() *ArrayAudio {
	return &ArrayAudio{}
}

func (a *ArrayAudio) Sample(left, right int16) {
	a.mu.Lock()
	a.samples = append(a.samples, left, right)
	a.mu.Unlock()
}

func (a *ArrayAudio) SampleBatch(samples []int16) int {
	frames := len(samples) / 2
	a.mu.Lock()
	a.samples = append(a.samples, samples[:frames*2]...)
	a.mu.Unlock()
	return frames
}

func (a *ArrayAudio) SetSystemAVInfo(info AVInfo) {
	a.mu.Lock()
	a.av = info
	a.mu.Unlock()
}

func (a *ArrayAudio) Enabled() bool { return !a.Disabled }

func (a *ArrayAudio) SetCallback(enabled bool) bool {
	a.mu.Lock()
	a.callback = enabled
	a.mu.Unlock()
	return true
}

func (a *ArrayAudio) SetBufferStatusCallback(fn AudioBufferStatusFunc) bool {
	a.mu.Lock()
	a.bufferStatus = fn
	a.mu.Unlock()
	return true
}

func (a *ArrayAudio) SetMinimumLatency(ms uint32) bool {
	a.mu.Lock()
	a.latency = ms
	a.mu.Unlock()
	return true
}

// ReportBufferStatus forwards buffer state to the core, if it asked for it.
func (a *ArrayAudio) ReportBufferStatus(active bool, occupancy uint32, underrunLikely bool) bool {
	a.mu.Lock()
	fn := a.bufferStatus
	a.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(active, occupancy, underrunLikely)
	return true
}

// Samples returns a copy of everything received so far.
func (a *ArrayAudio) Samples() []int16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int16(nil), a.samples...)
}

// Frames returns the number of stereo frames received.
func (a *ArrayAudio) Frames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.samples) / 2
}

func (a *ArrayAudio) Reset() {
	a.mu.Lock()
	a.samples = a.samples[:0]
	a.mu.Unlock()
}

func (a *ArrayAudio) AVInfo() AVInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.av
}

func (a *ArrayAudio) MinimumLatency() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latency
}

func (a *ArrayAudio) CallbackEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.callback
}

// DefaultSampleRate is used by WAVAudio when the core never reports timing.
const DefaultSampleRate = 44100

// WAVAudio records core audio to a 16-bit stereo PCM WAV stream.
//
// The encoder is created on the first batch of samples using the sample rate
// from the most recent AV info. Close writes the header and must be called
// once the session is finished.
type WAVAudio struct {
	ArrayAudio
	w      io.WriteSeeker
	enc    *wav.Encoder
	buf    *audio.IntBuffer
	err    error
	frames int
}

func NewWAVAudio(w io.WriteSeeker) *WAVAudio {
	return &WAVAudio{w: w}
}

func (a *WAVAudio) Sample(left, right int16) {
	a.write([]int16{left, right})
}

func (a *WAVAudio) SampleBatch(samples []int16) int {
	frames := len(samples) / 2
	a.write(samples[:frames*2])
	return frames
}

func (a *WAVAudio) write(samples []int16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return
	}
	if a.enc == nil {
		rate := int(a.av.Timing.SampleRate + 0.5)
		if rate <= 0 {
			rate = DefaultSampleRate
		}
		a.enc = wav.NewEncoder(a.w, rate, 16, 2, 1)
		a.buf = &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
			SourceBitDepth: 16,
		}
	}
	a.buf.Data = a.buf.Data[:0]
	for _, s := range samples {
		a.buf.Data = append(a.buf.Data, int(s))
	}
	if err := a.enc.Write(a.buf); err != nil {
		a.err = err
		return
	}
	a.frames += len(samples) / 2
}

// Frames returns the number of stereo frames written.
func (a *WAVAudio) Frames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// Err returns the first write error.
func (a *WAVAudio) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Close finalizes the WAV header. It does not close the underlying writer.
func (a *WAVAudio) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enc == nil {
		a.enc = wav.NewEncoder(a.w, DefaultSampleRate, 16, 2, 1)
	}
	if err := a.enc.Close(); err != nil && a.err == nil {
		a.err = err
	}
	return a.err
}
