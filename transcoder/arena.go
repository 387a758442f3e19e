package transcoder

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// ArenaBase is the lowest address an Arena hands out.
const ArenaBase = 0x10000

// Arena is an in-process, little-endian address space implementing Memory and
// Allocator with 8-byte pointers. It stands in for a core's memory in tests
// and in-process fake cores.
//
// Freed blocks are filled with 0xDD and never reused, so use-after-free reads
// return visibly wrong data instead of plausible stale values.
type Arena struct {
	buf  []byte
	mu   sync.Mutex
	next uint64
}

// NewArena creates an arena with the given initial capacity in bytes.
func NewArena(capacity int) *Arena {
	return &Arena{buf: make([]byte, 0, capacity), next: ArenaBase}
}

func (a *Arena) span(addr uint64, n uint32) ([]byte, error) {
	if addr < ArenaBase {
		return nil, fmt.Errorf("read out of bounds: addr=0x%x, length=%d", addr, n)
	}
	off := addr - ArenaBase
	if off+uint64(n) > uint64(len(a.buf)) {
		return nil, fmt.Errorf("read out of bounds: addr=0x%x, length=%d", addr, n)
	}
	return a.buf[off : off+uint64(n)], nil
}

func (a *Arena) Read(addr uint64, length uint32) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.span(addr, length)
}

func (a *Arena) Write(addr uint64, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	dst, err := a.span(addr, uint32(len(data)))
	if err != nil {
		return fmt.Errorf("write out of bounds: addr=0x%x, length=%d", addr, len(data))
	}
	copy(dst, data)
	return nil
}

func (a *Arena) ReadU8(addr uint64) (uint8, error) {
	b, err := a.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (a *Arena) ReadU16(addr uint64) (uint16, error) {
	b, err := a.Read(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (a *Arena) ReadU32(addr uint64) (uint32, error) {
	b, err := a.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (a *Arena) ReadU64(addr uint64) (uint64, error) {
	b, err := a.Read(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (a *Arena) WriteU8(addr uint64, value uint8) error {
	return a.Write(addr, []byte{value})
}

func (a *Arena) WriteU16(addr uint64, value uint16) error {
	return a.Write(addr, binary.LittleEndian.AppendUint16(nil, value))
}

func (a *Arena) WriteU32(addr uint64, value uint32) error {
	return a.Write(addr, binary.LittleEndian.AppendUint32(nil, value))
}

func (a *Arena) WriteU64(addr uint64, value uint64) error {
	return a.Write(addr, binary.LittleEndian.AppendUint64(nil, value))
}

// Alloc returns zeroed memory.
func (a *Arena) Alloc(size, align uint32) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if align == 0 {
		align = 1
	}
	addr := uint64(alignTo(uint32(a.next-ArenaBase), align)) + ArenaBase
	end := addr + uint64(size)
	if size == 0 {
		end++
	}
	grow := int(end - ArenaBase - uint64(len(a.buf)))
	a.buf = append(a.buf, make([]byte, grow)...)
	a.next = end
	return addr, nil
}

func (a *Arena) Free(ptr uint64, size, align uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if dst, err := a.span(ptr, size); err == nil {
		for i := range dst {
			dst[i] = 0xDD
		}
	}
}

// Used returns the number of bytes handed out so far.
func (a *Arena) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buf)
}

// CString stores s with a terminating NUL and returns its address.
func (a *Arena) CString(s string) uint64 {
	ptr, _, err := WriteCString(a, a, s)
	if err != nil {
		panic(err)
	}
	return ptr
}

// Bytes stores a copy of data and returns its address.
func (a *Arena) Bytes(data []byte, align uint32) uint64 {
	ptr, err := a.Alloc(uint32(len(data)), align)
	if err != nil {
		panic(err)
	}
	if err := a.Write(ptr, data); err != nil {
		panic(err)
	}
	return ptr
}

var (
	_ Memory    = (*Arena)(nil)
	_ Allocator = (*Arena)(nil)
)
