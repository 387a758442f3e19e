package runtime

import "fmt"

// State is the position of a core in its load/init/run/unload sequence.
type State uint8

const (
	StateUnloaded State = iota
	StateLoaded
	StateInitialized
	StateGameLoaded
	StateRunning
	StateDeinitialized
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateInitialized:
		return "initialized"
	case StateGameLoaded:
		return "game_loaded"
	case StateRunning:
		return "running"
	case StateDeinitialized:
		return "deinitialized"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// HasGame reports whether content is loaded in this state.
func (s State) HasGame() bool {
	return s == StateGameLoaded || s == StateRunning
}

// live reports whether the core may be called at all.
func (s State) live() bool {
	return s != StateUnloaded && s != StateDeinitialized
}

// operation names a lifecycle call for precondition checks and errors.
type operation uint8

const (
	opInit operation = iota
	opSystemInfo
	opAVInfo
	opLoadGame
	opRun
	opReset
	opUnloadGame
	opDeinit
	opSerialize
	opCheat
	opPortDevice
	opMemory
	opRegion
	opProcAddress
)

var opNames = [...]string{
	opInit:        "retro_init",
	opSystemInfo:  "retro_get_system_info",
	opAVInfo:      "retro_get_system_av_info",
	opLoadGame:    "retro_load_game",
	opRun:         "retro_run",
	opReset:       "retro_reset",
	opUnloadGame:  "retro_unload_game",
	opDeinit:      "retro_deinit",
	opSerialize:   "retro_serialize",
	opCheat:       "retro_cheat_set",
	opPortDevice:  "retro_set_controller_port_device",
	opMemory:      "retro_get_memory_data",
	opRegion:      "retro_get_region",
	opProcAddress: "get_proc_address",
}

func (o operation) String() string { return opNames[o] }

// allowed reports whether op may be called in state s.
func (o operation) allowed(s State) bool {
	switch o {
	case opInit:
		return s == StateLoaded
	case opSystemInfo:
		return s.live()
	case opLoadGame:
		return s == StateInitialized
	case opAVInfo, opRun, opReset, opUnloadGame, opSerialize, opCheat, opMemory, opRegion:
		return s.HasGame()
	case opDeinit:
		return s == StateInitialized || s.HasGame()
	case opPortDevice, opProcAddress:
		return s == StateInitialized || s.HasGame()
	}
	return false
}
