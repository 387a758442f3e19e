package runtime

import (
	retroruntime "github.com/wippyai/retro-runtime"
	"github.com/wippyai/retro-runtime/transcoder"
)

// hostStrings keeps C strings the host hands to the core for the life of
// the session. GET commands return const char* that cores may keep, so
// every string is interned and freed only on Close.
type hostStrings struct {
	mem    retroruntime.Memory
	alloc  retroruntime.Allocator
	cache  map[string]uint64
	allocs *transcoder.AllocationList
}

func newHostStrings(mem retroruntime.Memory, alloc retroruntime.Allocator) *hostStrings {
	return &hostStrings{
		mem:    mem,
		alloc:  alloc,
		cache:  make(map[string]uint64),
		allocs: transcoder.NewAllocationList(),
	}
}

func (h *hostStrings) get(v string) (uint64, error) {
	if ptr, ok := h.cache[v]; ok {
		return ptr, nil
	}
	ptr, size, err := transcoder.WriteCString(h.mem, h.alloc, v)
	if err != nil {
		return 0, err
	}
	h.allocs.Add(ptr, size, 1)
	h.cache[v] = ptr
	return ptr, nil
}

func (h *hostStrings) free() {
	h.allocs.Free(h.alloc)
	h.allocs.Reset()
	h.cache = make(map[string]uint64)
}

// keep records an allocation that must outlive the call that made it.
func (h *hostStrings) keep(ptr uint64, size, align uint32) {
	h.allocs.Add(ptr, size, align)
}

// bytes copies data into core memory for the life of the session.
func (h *hostStrings) bytes(data []byte, align uint32) (uint64, error) {
	size := uint32(len(data))
	if size == 0 {
		return 0, nil
	}
	ptr, err := h.alloc.Alloc(size, align)
	if err != nil {
		return 0, err
	}
	if err := h.mem.Write(ptr, data); err != nil {
		h.alloc.Free(ptr, size, align)
		return 0, err
	}
	h.keep(ptr, size, align)
	return ptr, nil
}
