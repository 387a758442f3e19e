package driver

import (
	"sync"

	"github.com/wippyai/retro-runtime/abi"
)

type sensorKey struct{ port, id uint32 }

// DictSensor serves sensor readings from a map. Readings for a sensor kind
// are only reported while the core has that kind enabled on the port.
type DictSensor struct {
	values  map[sensorKey]float32
	enabled map[sensorKey]bool // id field holds the first input id of the kind
	rates   map[sensorKey]uint32
	mu      sync.Mutex
}

func NewDictSensor() *DictSensor {
	return &DictSensor{
		values:  make(map[sensorKey]float32),
		enabled: make(map[sensorKey]bool),
		rates:   make(map[sensorKey]uint32),
	}
}

// sensorKind maps an action or input id to the first input id of its kind.
func sensorKind(id uint32) uint32 {
	switch {
	case id <= abi.SensorAccelerometerZ:
		return abi.SensorAccelerometerX
	case id <= abi.SensorGyroscopeZ:
		return abi.SensorGyroscopeX
	}
	return abi.SensorIlluminance
}

func (s *DictSensor) SetSensorState(port uint32, action abi.SensorAction, rate uint32) bool {
	if port >= MaxPorts {
		return false
	}
	var kind uint32
	switch action {
	case abi.SensorAccelerometerEnable, abi.SensorAccelerometerDisable:
		kind = abi.SensorAccelerometerX
	case abi.SensorGyroscopeEnable, abi.SensorGyroscopeDisable:
		kind = abi.SensorGyroscopeX
	case abi.SensorIlluminanceEnable, abi.SensorIlluminanceDisable:
		kind = abi.SensorIlluminance
	default:
		return false
	}
	enable := action%2 == 0
	s.mu.Lock()
	defer s.mu.Unlock()
	k := sensorKey{port, kind}
	s.enabled[k] = enable
	if enable {
		s.rates[k] = rate
	}
	return true
}

func (s *DictSensor) SensorInput(port, id uint32) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled[sensorKey{port, sensorKind(id)}] {
		return 0
	}
	return s.values[sensorKey{port, id}]
}

// Set stores a reading.
func (s *DictSensor) Set(port, id uint32, value float32) {
	s.mu.Lock()
	s.values[sensorKey{port, id}] = value
	s.mu.Unlock()
}

// Enabled reports whether the sensor kind containing id is enabled on port.
func (s *DictSensor) Enabled(port, id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled[sensorKey{port, sensorKind(id)}]
}
