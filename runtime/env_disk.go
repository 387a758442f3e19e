package runtime

import (
	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/engine"
	rterrors "github.com/wippyai/retro-runtime/errors"
	"github.com/wippyai/retro-runtime/transcoder"
)

var (
	sigDiskSetEject   = engine.Sig("b_b")
	sigDiskGetBool    = engine.Sig("b_")
	sigDiskGetUint    = engine.Sig("u_")
	sigDiskSetIndex   = engine.Sig("b_u")
	sigDiskReplace    = engine.Sig("b_up")
	sigDiskSetInitial = engine.Sig("b_up")
	sigDiskGetString  = engine.Sig("b_upz")
)

const diskStringMax = 4096

func (s *Session) envGetDiskControlInterfaceVersion(data uint64) (bool, error) {
	if s.reg.Disk == nil {
		return false, nil
	}
	return true, s.mem.WriteU32(data, abi.DiskControlInterfaceVersion)
}

func (s *Session) envSetDiskControl(data uint64) (bool, error) {
	if s.reg.Disk == nil {
		return false, nil
	}
	ctl, err := s.importDiskControl(s.codec.Record(s.shapes.DiskControlCallback, data), false)
	if err != nil {
		return false, err
	}
	return s.reg.Disk.SetControl(ctl), nil
}

func (s *Session) envSetDiskControlExt(data uint64) (bool, error) {
	if s.reg.Disk == nil {
		return false, nil
	}
	ctl, err := s.importDiskControl(s.codec.Record(s.shapes.DiskControlExtCallback, data), true)
	if err != nil {
		return false, err
	}
	return s.reg.Disk.SetControl(ctl), nil
}

// importDiskControl wraps the core's disk functions as closures. A closure
// whose pointer is NULL, or that fails inside the core, reports false or
// zero.
func (s *Session) importDiskControl(r *transcoder.Record, ext bool) (*driver.DiskControl, error) {
	ptrs := map[string]uint64{}
	names := []string{
		"set_eject_state", "get_eject_state", "get_image_index", "set_image_index",
		"get_num_images", "replace_image_index", "add_image_index",
	}
	if ext {
		names = append(names, "set_initial_image", "get_image_path", "get_image_label")
	}
	for _, name := range names {
		ptrs[name] = r.Ptr(name)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	call := func(name string, sig engine.Signature, args ...uint64) (uint64, bool) {
		if s.closed || ptrs[name] == 0 {
			return 0, false
		}
		v, err := s.callCore(name, ptrs[name], sig, args...)
		return v, err == nil
	}
	ok := func(v uint64, called bool) bool { return called && v != 0 }

	ctl := &driver.DiskControl{
		SetEjectState: func(ejected bool) bool {
			return ok(call("set_eject_state", sigDiskSetEject, b2u(ejected)))
		},
		GetEjectState: func() bool {
			return ok(call("get_eject_state", sigDiskGetBool))
		},
		GetImageIndex: func() uint32 {
			v, _ := call("get_image_index", sigDiskGetUint)
			return uint32(v)
		},
		SetImageIndex: func(index uint32) bool {
			return ok(call("set_image_index", sigDiskSetIndex, uint64(index)))
		},
		GetNumImages: func() uint32 {
			v, _ := call("get_num_images", sigDiskGetUint)
			return uint32(v)
		},
		ReplaceImageIndex: func(index uint32, info *driver.GameInfo) bool {
			var ptr uint64
			if info != nil {
				var err error
				if ptr, err = s.diskGameInfo(info); err != nil {
					s.log.Debug("disk image copy failed")
					return false
				}
			}
			return ok(call("replace_image_index", sigDiskReplace, uint64(index), ptr))
		},
		AddImageIndex: func() bool {
			return ok(call("add_image_index", sigDiskGetBool))
		},
	}
	if !ext {
		return ctl, nil
	}
	ctl.Version = 1
	ctl.SetInitialImage = func(index uint32, path string) bool {
		ptr, err := s.strs.get(path)
		if err != nil {
			return false
		}
		return ok(call("set_initial_image", sigDiskSetInitial, uint64(index), ptr))
	}
	ctl.GetImagePath = func(index uint32) (string, bool) {
		return s.diskString(call, "get_image_path", index)
	}
	ctl.GetImageLabel = func(index uint32) (string, bool) {
		return s.diskString(call, "get_image_label", index)
	}
	return ctl, nil
}

// diskString calls one of the string getters with a scratch buffer.
func (s *Session) diskString(call func(string, engine.Signature, ...uint64) (uint64, bool), name string, index uint32) (string, bool) {
	buf, err := s.alloc.Alloc(diskStringMax, 1)
	if err != nil {
		return "", false
	}
	defer s.alloc.Free(buf, diskStringMax, 1)
	if err := s.mem.WriteU8(buf, 0); err != nil {
		return "", false
	}
	v, called := call(name, sigDiskGetString, uint64(index), buf, diskStringMax)
	if !called || v == 0 {
		return "", false
	}
	str, err := transcoder.ReadCString(s.mem, buf, diskStringMax)
	if err != nil {
		return "", false
	}
	return str, true
}

// diskGameInfo builds a retro_game_info for a replacement image. Cores may
// keep the pointers, so the memory lives until the session closes.
func (s *Session) diskGameInfo(info *driver.GameInfo) (uint64, error) {
	r, err := s.codec.NewRecord(s.alloc, s.shapes.GameInfo)
	if err != nil {
		return 0, err
	}
	s.strs.keep(r.Addr(), r.Size(), s.codec.Layout(s.shapes.GameInfo).Align)
	var path, meta uint64
	if info.Path != "" {
		if path, err = s.strs.get(info.Path); err != nil {
			return 0, err
		}
	}
	if info.Meta != "" {
		if meta, err = s.strs.get(info.Meta); err != nil {
			return 0, err
		}
	}
	data, err := s.strs.bytes(info.Data, 16)
	if err != nil {
		return 0, rterrors.AllocationFailed(rterrors.PhaseEncode, uint32(len(info.Data)), 16, err)
	}
	r.SetPtr("path", path)
	r.SetPtr("data", data)
	r.SetUint("size", uint64(len(info.Data)))
	r.SetPtr("meta", meta)
	return r.Addr(), r.Err()
}
