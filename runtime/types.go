package runtime

import "github.com/wippyai/retro-runtime/driver"

// SystemInfo is retro_system_info.
type SystemInfo struct {
	LibraryName     string
	LibraryVersion  string
	ValidExtensions string
	NeedFullpath    bool
	BlockExtract    bool
}

// SubsystemMemory is retro_subsystem_memory_info.
type SubsystemMemory struct {
	Extension string
	Type      uint32
}

// SubsystemROM is retro_subsystem_rom_info.
type SubsystemROM struct {
	Desc            string
	ValidExtensions string
	Memory          []SubsystemMemory
	NeedFullpath    bool
	BlockExtract    bool
	Required        bool
}

// Subsystem is retro_subsystem_info.
type Subsystem struct {
	Desc  string
	Ident string
	ROMs  []SubsystemROM
	ID    uint32
}

// MemoryDescriptor is retro_memory_descriptor. Ptr is an address in core
// memory and stays valid while the game is loaded.
type MemoryDescriptor struct {
	AddrSpace  string
	Flags      uint64
	Ptr        uint64
	Offset     uint64
	Start      uint64
	Select     uint64
	Disconnect uint64
	Len        uint64
}

// ContentOverride is retro_system_content_info_override.
type ContentOverride struct {
	Extensions     string
	NeedFullpath   bool
	PersistentData bool
}

// Cheat is one retro_cheat_set call.
type Cheat struct {
	Code    string
	Index   uint32
	Enabled bool
}

type frameTimeCallback struct {
	fn        uint64
	reference int64
}

type audioCallback struct {
	fn       uint64
	setState uint64
	active   bool
}

type cameraCallbacks struct {
	frameRaw      uint64
	initialized   uint64
	deinitialized uint64
	announced     bool
	started       bool
}

type locationCallbacks struct {
	initialized   uint64
	deinitialized uint64
	announced     bool
}

type hwRenderCallbacks struct {
	req            driver.HWRender
	contextReset   uint64
	contextDestroy uint64
	set            bool
	reset          bool
}
