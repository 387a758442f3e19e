package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	rterrors "github.com/wippyai/retro-runtime/errors"
)

// guestMemory adapts a wazero linear memory to retroruntime.Memory.
type guestMemory struct {
	mem api.Memory
}

func (m *guestMemory) offset(addr uint64, n uint32) (uint32, error) {
	if m.mem == nil {
		return 0, rterrors.Unsupported(rterrors.PhaseEngine, "core exports no memory")
	}
	if addr > 0xFFFFFFFF || addr+uint64(n) > uint64(m.mem.Size()) {
		return 0, rterrors.OutOfBounds(rterrors.PhaseEngine, addr, int(n))
	}
	return uint32(addr), nil
}

func (m *guestMemory) Read(addr uint64, length uint32) ([]byte, error) {
	off, err := m.offset(addr, length)
	if err != nil {
		return nil, err
	}
	b, ok := m.mem.Read(off, length)
	if !ok {
		return nil, rterrors.OutOfBounds(rterrors.PhaseEngine, addr, int(length))
	}
	return b, nil
}

func (m *guestMemory) Write(addr uint64, data []byte) error {
	off, err := m.offset(addr, uint32(len(data)))
	if err != nil {
		return err
	}
	if !m.mem.Write(off, data) {
		return rterrors.OutOfBounds(rterrors.PhaseEngine, addr, len(data))
	}
	return nil
}

func (m *guestMemory) ReadU8(addr uint64) (uint8, error) {
	off, err := m.offset(addr, 1)
	if err != nil {
		return 0, err
	}
	v, _ := m.mem.ReadByte(off)
	return v, nil
}

func (m *guestMemory) ReadU16(addr uint64) (uint16, error) {
	off, err := m.offset(addr, 2)
	if err != nil {
		return 0, err
	}
	v, _ := m.mem.ReadUint16Le(off)
	return v, nil
}

func (m *guestMemory) ReadU32(addr uint64) (uint32, error) {
	off, err := m.offset(addr, 4)
	if err != nil {
		return 0, err
	}
	v, _ := m.mem.ReadUint32Le(off)
	return v, nil
}

func (m *guestMemory) ReadU64(addr uint64) (uint64, error) {
	off, err := m.offset(addr, 8)
	if err != nil {
		return 0, err
	}
	v, _ := m.mem.ReadUint64Le(off)
	return v, nil
}

func (m *guestMemory) WriteU8(addr uint64, value uint8) error {
	off, err := m.offset(addr, 1)
	if err != nil {
		return err
	}
	m.mem.WriteByte(off, value)
	return nil
}

func (m *guestMemory) WriteU16(addr uint64, value uint16) error {
	off, err := m.offset(addr, 2)
	if err != nil {
		return err
	}
	m.mem.WriteUint16Le(off, value)
	return nil
}

func (m *guestMemory) WriteU32(addr uint64, value uint32) error {
	off, err := m.offset(addr, 4)
	if err != nil {
		return err
	}
	m.mem.WriteUint32Le(off, value)
	return nil
}

func (m *guestMemory) WriteU64(addr uint64, value uint64) error {
	off, err := m.offset(addr, 8)
	if err != nil {
		return err
	}
	m.mem.WriteUint64Le(off, value)
	return nil
}

// guestAllocator allocates through the core's exported malloc and free.
type guestAllocator struct {
	ctx    context.Context
	malloc api.Function
	free   api.Function
}

// maxGuestAlign is what wasi-libc's dlmalloc guarantees.
const maxGuestAlign = 16

func (a *guestAllocator) Alloc(size, align uint32) (uint64, error) {
	if a.malloc == nil {
		return 0, rterrors.AllocationFailed(rterrors.PhaseEngine, size, align,
			rterrors.NotFound(rterrors.PhaseLoad, "export", "malloc"))
	}
	if align > maxGuestAlign {
		return 0, rterrors.AllocationFailed(rterrors.PhaseEngine, size, align, nil)
	}
	if size == 0 {
		size = 1
	}
	res, err := a.malloc.Call(a.ctx, uint64(size))
	if err != nil {
		return 0, rterrors.AllocationFailed(rterrors.PhaseEngine, size, align, err)
	}
	ptr := uint64(uint32(res[0]))
	if ptr == 0 {
		return 0, rterrors.AllocationFailed(rterrors.PhaseEngine, size, align, nil)
	}
	return ptr, nil
}

func (a *guestAllocator) Free(ptr uint64, size, align uint32) {
	if a.free == nil || ptr == 0 {
		return
	}
	if _, err := a.free.Call(a.ctx, ptr); err != nil {
		Logger().Debug("guest free failed", zap.Uint64("ptr", ptr), zap.Error(err))
	}
}
