package driver

import (
	"sync"
)

// StandardDisk keeps the core's disk control interface and offers the
// operations a frontend menu needs.
type StandardDisk struct {
	ctl *DiskControl
	mu  sync.Mutex
}

func NewStandardDisk() *StandardDisk {
	return &StandardDisk{}
}

func (d *StandardDisk) SetControl(ctl *DiskControl) bool {
	d.mu.Lock()
	d.ctl = ctl
	d.mu.Unlock()
	return true
}

func (d *StandardDisk) control() *DiskControl {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctl
}

// Version returns the interface version the core registered, or -1.
func (d *StandardDisk) Version() int {
	ctl := d.control()
	if ctl == nil {
		return -1
	}
	return int(ctl.Version)
}

func (d *StandardDisk) NumImages() uint32 {
	ctl := d.control()
	if ctl == nil || ctl.GetNumImages == nil {
		return 0
	}
	return ctl.GetNumImages()
}

func (d *StandardDisk) Index() uint32 {
	ctl := d.control()
	if ctl == nil || ctl.GetImageIndex == nil {
		return 0
	}
	return ctl.GetImageIndex()
}

func (d *StandardDisk) Ejected() bool {
	ctl := d.control()
	if ctl == nil || ctl.GetEjectState == nil {
		return false
	}
	return ctl.GetEjectState()
}

// Swap ejects the tray, selects index and closes the tray again.
func (d *StandardDisk) Swap(index uint32) bool {
	ctl := d.control()
	if ctl == nil || ctl.SetEjectState == nil || ctl.SetImageIndex == nil {
		return false
	}
	if index >= d.NumImages() {
		return false
	}
	wasEjected := ctl.GetEjectState != nil && ctl.GetEjectState()
	if !wasEjected && !ctl.SetEjectState(true) {
		return false
	}
	if !ctl.SetImageIndex(index) {
		return false
	}
	return ctl.SetEjectState(false)
}

// Append adds an image slot and fills it with info. The tray must be open.
func (d *StandardDisk) Append(info *GameInfo) bool {
	ctl := d.control()
	if ctl == nil || ctl.AddImageIndex == nil || ctl.ReplaceImageIndex == nil {
		return false
	}
	if !ctl.AddImageIndex() {
		return false
	}
	return ctl.ReplaceImageIndex(d.NumImages()-1, info)
}

// SetInitialImage tells an extended-interface core which image to boot.
func (d *StandardDisk) SetInitialImage(index uint32, path string) bool {
	ctl := d.control()
	if ctl == nil || ctl.SetInitialImage == nil {
		return false
	}
	return ctl.SetInitialImage(index, path)
}

func (d *StandardDisk) ImagePath(index uint32) (string, bool) {
	ctl := d.control()
	if ctl == nil || ctl.GetImagePath == nil {
		return "", false
	}
	return ctl.GetImagePath(index)
}

func (d *StandardDisk) ImageLabel(index uint32) (string, bool) {
	ctl := d.control()
	if ctl == nil || ctl.GetImageLabel == nil {
		return "", false
	}
	return ctl.GetImageLabel(index)
}
