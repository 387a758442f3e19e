package driver

import "sync"

// DictLED records the last state of each LED.
type DictLED struct {
	states map[int32]int32
	mu     sync.Mutex
}

func NewDictLED() *DictLED {
	return &DictLED{states: make(map[int32]int32)}
}

func (l *DictLED) SetLEDState(led, state int32) {
	l.mu.Lock()
	l.states[led] = state
	l.mu.Unlock()
}

func (l *DictLED) LEDState(led int32) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states[led]
}
