package driver

import (
	"errors"
	"sync"
)

// ErrMicrophoneUnavailable is returned when a driver cannot open more
// microphones.
var ErrMicrophoneUnavailable = errors.New("microphone unavailable")

// SampleGenerator produces the next chunk of samples for a microphone.
// It returns nil when nothing new is available.
type SampleGenerator func() []int16

// ChunkGenerator returns a generator that yields each chunk once, in order.
func ChunkGenerator(chunks ...[]int16) SampleGenerator {
	i := 0
	return func() []int16 {
		if i >= len(chunks) {
			return nil
		}
		c := chunks[i]
		i++
		return c
	}
}

// GeneratorMicrophone opens microphones fed by a generator. Each Open calls
// NewGenerator for a fresh sample stream.
type GeneratorMicrophone struct {
	NewGenerator func(params MicrophoneParams) SampleGenerator
	// Rate overrides the requested sample rate when non-zero.
	Rate uint32
	// Max limits concurrently open microphones when non-zero.
	Max int

	open int
	mu   sync.Mutex
}

func NewGeneratorMicrophone(gen func(MicrophoneParams) SampleGenerator) *GeneratorMicrophone {
	return &GeneratorMicrophone{NewGenerator: gen}
}

func (m *GeneratorMicrophone) Open(params MicrophoneParams) (MicrophoneSource, MicrophoneParams, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Max > 0 && m.open >= m.Max {
		return nil, MicrophoneParams{}, ErrMicrophoneUnavailable
	}
	if m.Rate != 0 {
		params.Rate = m.Rate
	}
	var gen SampleGenerator
	if m.NewGenerator != nil {
		gen = m.NewGenerator(params)
	}
	m.open++
	return &generatorSource{gen: gen, owner: m}, params, nil
}

// OpenCount returns the number of microphones currently open.
func (m *GeneratorMicrophone) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

type generatorSource struct {
	gen    SampleGenerator
	owner  *GeneratorMicrophone
	active bool
	closed bool
}

// Pull only produces samples while active, like a real device that is not
// recording.
func (s *generatorSource) Pull() []int16 {
	if s.closed || !s.active || s.gen == nil {
		return nil
	}
	return s.gen()
}

func (s *generatorSource) SetActive(active bool) { s.active = active }

func (s *generatorSource) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.owner.mu.Lock()
	s.owner.open--
	s.owner.mu.Unlock()
}
