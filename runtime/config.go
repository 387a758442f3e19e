package runtime

import (
	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/engine"
)

// Config holds the host facts a core can query that do not belong to any
// driver. Directories are served by the Path driver, not configured here.
type Config struct {
	// Engine configures the backend used by Open.
	Engine engine.Config

	// JITCapable answers GET_JIT_CAPABLE.
	JITCapable bool
	// Overscan answers GET_OVERSCAN.
	Overscan bool
	// SavestateContext answers GET_SAVESTATE_CONTEXT.
	SavestateContext abi.SavestateContext
	// FastSavestates sets the fast savestate bit of GET_AUDIO_VIDEO_ENABLE.
	FastSavestates bool
	// MaxUsers answers GET_INPUT_MAX_USERS when the input driver reports 0.
	MaxUsers uint32
	// Language answers GET_LANGUAGE when no User driver is registered.
	Language abi.Language
	// Options pre-seeds option values before the core defines its options.
	Options map[string]string
}

const defaultMaxUsers = 8
