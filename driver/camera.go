package driver

import (
	"sync"

	"github.com/wippyai/retro-runtime/abi"
)

// StaticCamera serves the same raw frame every time it is asked, while
// started.
type StaticCamera struct {
	frame   CameraFrame
	cfg     CameraConfig
	mu      sync.Mutex
	running bool
}

// NewStaticCamera returns a camera producing a solid frame of the given size
// and XRGB8888 color.
func NewStaticCamera(width, height, color uint32) *StaticCamera {
	data := make([]uint32, width*height)
	for i := range data {
		data[i] = color
	}
	return &StaticCamera{frame: CameraFrame{Data: data, Width: width, Height: height, Pitch: width * 4}}
}

// Configure accepts raw framebuffer requests only.
func (c *StaticCamera) Configure(cfg CameraConfig) bool {
	if cfg.Caps&(1<<abi.CameraBufferRawFramebuffer) == 0 {
		return false
	}
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	return true
}

func (c *StaticCamera) Start() bool {
	c.mu.Lock()
	c.running = true
	c.mu.Unlock()
	return true
}

func (c *StaticCamera) Stop() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

func (c *StaticCamera) Frame() (CameraFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return CameraFrame{}, false
	}
	return c.frame, true
}

func (c *StaticCamera) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *StaticCamera) Config() CameraConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}
