package driver

import "github.com/wippyai/retro-runtime/abi"

// Registry holds the driver chosen for each capability. A nil field means the
// capability is unsupported. A session copies the registry when it is
// created; later changes to the caller's value do not affect the session.
type Registry struct {
	Video      Video
	Audio      Audio
	Input      Input
	Rumble     Rumble
	Sensor     Sensor
	Camera     Camera
	Location   Location
	Microphone Microphone
	Netpacket  Netpacket
	Disk       Disk
	LED        LED
	Log        Log
	Perf       Perf
	Power      Power
	User       User
	Message    Message
	Options    Options
	Timing     Timing
	MIDI       MIDI
	Path       Path
}

// Capability names as reported by Supported.
const (
	CapVideo      = "video"
	CapAudio      = "audio"
	CapInput      = "input"
	CapRumble     = "rumble"
	CapSensor     = "sensor"
	CapCamera     = "camera"
	CapLocation   = "location"
	CapMicrophone = "microphone"
	CapNetpacket  = "netpacket"
	CapDisk       = "disk"
	CapLED        = "led"
	CapLog        = "log"
	CapPerf       = "perf"
	CapPower      = "power"
	CapUser       = "user"
	CapMessage    = "message"
	CapOptions    = "options"
	CapTiming     = "timing"
	CapMIDI       = "midi"
	CapPath       = "path"
)

// Supported returns the names of the registered capabilities.
func (r *Registry) Supported() []string {
	var out []string
	add := func(name string, present bool) {
		if present {
			out = append(out, name)
		}
	}
	add(CapVideo, r.Video != nil)
	add(CapAudio, r.Audio != nil)
	add(CapInput, r.Input != nil)
	add(CapRumble, r.Rumble != nil)
	add(CapSensor, r.Sensor != nil)
	add(CapCamera, r.Camera != nil)
	add(CapLocation, r.Location != nil)
	add(CapMicrophone, r.Microphone != nil)
	add(CapNetpacket, r.Netpacket != nil)
	add(CapDisk, r.Disk != nil)
	add(CapLED, r.LED != nil)
	add(CapLog, r.Log != nil)
	add(CapPerf, r.Perf != nil)
	add(CapPower, r.Power != nil)
	add(CapUser, r.User != nil)
	add(CapMessage, r.Message != nil)
	add(CapOptions, r.Options != nil)
	add(CapTiming, r.Timing != nil)
	add(CapMIDI, r.MIDI != nil)
	add(CapPath, r.Path != nil)
	return out
}

// Defaults returns a registry with the standard in-memory drivers for every
// capability except those that need host resources.
func Defaults() Registry {
	return Registry{
		Video:   NewArrayVideo(),
		Audio:   NewArrayAudio(),
		Input:   NewIterableInput(nil),
		Log:     NewZapLog(nil),
		Perf:    NewStandardPerf(),
		Options: NewStandardOptions(),
		Timing:  NewStandardTiming(60),
		User:    &StandardUser{Name: "retro", Lang: abi.LanguageEnglish},
		Path:    &StandardPath{},
		Message: NewLoggerMessage(nil),
	}
}
