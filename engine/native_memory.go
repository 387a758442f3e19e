//go:build (darwin || linux || freebsd || netbsd) && (amd64 || arm64)

package engine

import (
	"encoding/binary"
	"runtime"
	"sync"
	"unsafe"

	rterrors "github.com/wippyai/retro-runtime/errors"
)

// nativeMemory reads and writes process memory directly. Native cores share
// the host's address space, so there is nothing to bounds-check against;
// only NULL is rejected.
type nativeMemory struct{}

func (nativeMemory) span(addr uint64, n uint32) ([]byte, error) {
	if addr == 0 {
		return nil, rterrors.NilPointer(rterrors.PhaseEngine, nil)
	}
	if n == 0 {
		return []byte{}, nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n), nil
}

func (m nativeMemory) Read(addr uint64, length uint32) ([]byte, error) {
	return m.span(addr, length)
}

func (m nativeMemory) Write(addr uint64, data []byte) error {
	b, err := m.span(addr, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

func (m nativeMemory) ReadU8(addr uint64) (uint8, error) {
	b, err := m.span(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m nativeMemory) ReadU16(addr uint64) (uint16, error) {
	b, err := m.span(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint16(b), nil
}

func (m nativeMemory) ReadU32(addr uint64) (uint32, error) {
	b, err := m.span(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(b), nil
}

func (m nativeMemory) ReadU64(addr uint64) (uint64, error) {
	b, err := m.span(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint64(b), nil
}

func (m nativeMemory) WriteU8(addr uint64, value uint8) error {
	b, err := m.span(addr, 1)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

func (m nativeMemory) WriteU16(addr uint64, value uint16) error {
	b, err := m.span(addr, 2)
	if err != nil {
		return err
	}
	binary.NativeEndian.PutUint16(b, value)
	return nil
}

func (m nativeMemory) WriteU32(addr uint64, value uint32) error {
	b, err := m.span(addr, 4)
	if err != nil {
		return err
	}
	binary.NativeEndian.PutUint32(b, value)
	return nil
}

func (m nativeMemory) WriteU64(addr uint64, value uint64) error {
	b, err := m.span(addr, 8)
	if err != nil {
		return err
	}
	binary.NativeEndian.PutUint64(b, value)
	return nil
}

// pinnedAllocator hands out Go memory pinned for the core to hold.
type pinnedAllocator struct {
	blocks map[uint64]*pinnedBlock
	mu     sync.Mutex
}

type pinnedBlock struct {
	buf []byte
	pin runtime.Pinner
}

func newPinnedAllocator() *pinnedAllocator {
	return &pinnedAllocator{blocks: make(map[uint64]*pinnedBlock)}
}

func (a *pinnedAllocator) Alloc(size, align uint32) (uint64, error) {
	if align == 0 || align&(align-1) != 0 {
		return 0, rterrors.AllocationFailed(rterrors.PhaseEngine, size, align, nil)
	}
	if size == 0 {
		size = 1
	}
	b := &pinnedBlock{buf: make([]byte, size+align-1)}
	base := uintptr(unsafe.Pointer(&b.buf[0]))
	off := (uintptr(align) - base%uintptr(align)) % uintptr(align)
	b.pin.Pin(&b.buf[0])
	ptr := uint64(base + off)

	a.mu.Lock()
	a.blocks[ptr] = b
	a.mu.Unlock()
	return ptr, nil
}

func (a *pinnedAllocator) Free(ptr uint64, size, align uint32) {
	a.mu.Lock()
	b, ok := a.blocks[ptr]
	delete(a.blocks, ptr)
	a.mu.Unlock()
	if ok {
		b.pin.Unpin()
	}
}

func (a *pinnedAllocator) releaseAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for ptr, b := range a.blocks {
		b.pin.Unpin()
		delete(a.blocks, ptr)
	}
}
