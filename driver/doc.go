// Package driver defines the capability interfaces a host implements to
// serve a libretro core, the Registry that selects one driver per
// capability, and standard in-memory implementations.
//
// # Capabilities
//
// Every subsystem a core can ask for has its own interface: Video, Audio,
// Input, Rumble, Sensor, Camera, Location, Microphone, Netpacket, Disk, LED,
// Log, Perf, Power, User, Message, Options, Timing, MIDI and Path. A nil
// Registry field means the host does not support that capability, and the
// session answers the corresponding environment commands with false.
//
//	reg := driver.Defaults()
//	reg.Rumble = driver.NewDictRumble()
//	reg.Audio = driver.NewWAVAudio(f)
//
// # Standard Drivers
//
// ArrayVideo and ArrayAudio keep output in memory for tests and tools.
// WAVAudio records audio with github.com/go-audio/wav. ZapLog and
// LoggerMessage write to zap. StandardPerf reports CPU features from
// golang.org/x/sys/cpu. The remaining drivers are small map or script backed
// implementations useful for headless runs.
//
// # Threading
//
// The session calls drivers from the goroutine that drives the core. The
// standard drivers also lock internally so a host may inspect them from
// other goroutines while a core runs.
package driver
