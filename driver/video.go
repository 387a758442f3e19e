package driver

import (
	"sync"

	"github.com/wippyai/retro-runtime/abi"
)

// ArrayVideo keeps frames in memory. Keep bounds the number of retained
// frames; zero keeps every frame.
type ArrayVideo struct {
	frames   []Frame
	hw       *HWRender
	av       AVInfo
	geometry Geometry
	Keep     int
	count    int
	rotation uint32
	format   abi.PixelFormat
	mu       sync.Mutex

	// AllowHW makes SetHWRender and SetHWSharedContext succeed. The driver
	// still has no GPU context; hardware frames are only counted.
	AllowHW  bool
	Disabled bool
}

func NewArrayVideo() *ArrayVideo {
	return &ArrayVideo{format: abi.PixelFormat0RGB1555}
}

func (v *ArrayVideo) Refresh(frame Frame) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if frame.Format == 0 && !frame.Dupe && !frame.HW {
		frame.Format = v.format
	}
	v.count++
	v.frames = append(v.frames, frame)
	if v.Keep > 0 && len(v.frames) > v.Keep {
		v.frames = append(v.frames[:0], v.frames[len(v.frames)-v.Keep:]...)
	}
}

func (v *ArrayVideo) SetPixelFormat(format abi.PixelFormat) bool {
	if !format.Valid() {
		return false
	}
	v.mu.Lock()
	v.format = format
	v.mu.Unlock()
	return true
}

func (v *ArrayVideo) SetRotation(rotation uint32) bool {
	if rotation > 3 {
		return false
	}
	v.mu.Lock()
	v.rotation = rotation
	v.mu.Unlock()
	return true
}

func (v *ArrayVideo) SetGeometry(geom Geometry) {
	v.mu.Lock()
	v.geometry = geom
	v.av.Geometry = geom
	v.mu.Unlock()
}

func (v *ArrayVideo) SetSystemAVInfo(info AVInfo) {
	v.mu.Lock()
	v.av = info
	v.geometry = info.Geometry
	v.mu.Unlock()
}

func (v *ArrayVideo) CanDupe() bool { return true }
func (v *ArrayVideo) Enabled() bool { return !v.Disabled }

func (v *ArrayVideo) SetHWRender(req HWRender) bool {
	if !v.AllowHW {
		return false
	}
	v.mu.Lock()
	v.hw = &req
	v.mu.Unlock()
	return true
}

func (v *ArrayVideo) SetHWSharedContext() bool { return v.AllowHW }

func (v *ArrayVideo) PreferredHWRender() (abi.HWContextType, bool) {
	return abi.HWContextNone, true
}

func (v *ArrayVideo) CurrentFramebuffer() uint64         { return 0 }
func (v *ArrayVideo) HWProcAddress(symbol string) uint64 { return 0 }

// Frames returns the retained frames.
func (v *ArrayVideo) Frames() []Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Frame(nil), v.frames...)
}

// Last returns the most recent frame that carried pixel data.
func (v *ArrayVideo) Last() (Frame, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := len(v.frames) - 1; i >= 0; i-- {
		if !v.frames[i].Dupe && !v.frames[i].HW {
			return v.frames[i], true
		}
	}
	return Frame{}, false
}

// Count returns the number of refresh calls, including dropped frames.
func (v *ArrayVideo) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.count
}

func (v *ArrayVideo) PixelFormat() abi.PixelFormat {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.format
}

func (v *ArrayVideo) Rotation() uint32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rotation
}

func (v *ArrayVideo) Geometry() Geometry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.geometry
}

func (v *ArrayVideo) AVInfo() AVInfo {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.av
}

func (v *ArrayVideo) HWRender() (HWRender, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hw == nil {
		return HWRender{}, false
	}
	return *v.hw, true
}
