package driver

import "sync"

// StaticLocation reports a fixed position while started.
type StaticLocation struct {
	pos      Position
	interval [2]uint32
	mu       sync.Mutex
	running  bool
}

func NewStaticLocation(pos Position) *StaticLocation {
	return &StaticLocation{pos: pos}
}

func (l *StaticLocation) Start() bool {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()
	return true
}

func (l *StaticLocation) Stop() {
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
}

func (l *StaticLocation) Position() (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return Position{}, false
	}
	return l.pos, true
}

func (l *StaticLocation) SetInterval(intervalMs, intervalDistance uint32) {
	l.mu.Lock()
	l.interval = [2]uint32{intervalMs, intervalDistance}
	l.mu.Unlock()
}

// Interval returns the last update interval requested by the core.
func (l *StaticLocation) Interval() (ms, distance uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval[0], l.interval[1]
}
