package transcoder

import (
	"bytes"

	"github.com/wippyai/retro-runtime/errors"
)

const (
	MaxCStringLen = 1 << 20 // 1 MB, longer strings are treated as corrupt
	MaxArrayLen   = 1 << 16 // bound for terminated and counted arrays
	cstringChunk  = 64
)

// ReadCString copies the NUL-terminated string at addr.
// The scan reads in chunks and falls back to single bytes near the end of
// memory so a string ending at the last mapped byte is still found.
func ReadCString(mem Memory, addr uint64, limit int) (string, error) {
	if addr == 0 {
		return "", errors.NilPointer(errors.PhaseDecode, []string{"char*"})
	}
	var buf []byte
	for len(buf) < limit {
		chunk, err := mem.Read(addr+uint64(len(buf)), cstringChunk)
		if err != nil {
			b, err := mem.ReadU8(addr + uint64(len(buf)))
			if err != nil {
				return "", errors.OutOfBounds(errors.PhaseDecode, addr, len(buf)+1)
			}
			if b == 0 {
				return string(buf), nil
			}
			buf = append(buf, b)
			continue
		}
		if i := bytes.IndexByte(chunk, 0); i >= 0 {
			buf = append(buf, chunk[:i]...)
			return string(buf), nil
		}
		buf = append(buf, chunk...)
	}
	return "", errors.InvalidData(errors.PhaseDecode, []string{"char*"}, "string exceeds length limit")
}

// WriteCString allocates s plus a terminating NUL in core memory.
func WriteCString(mem Memory, alloc Allocator, s string) (uint64, uint32, error) {
	size := uint32(len(s) + 1)
	ptr, err := alloc.Alloc(size, 1)
	if err != nil {
		return 0, 0, errors.AllocationFailed(errors.PhaseEncode, size, 1, err)
	}
	data := make([]byte, size)
	copy(data, s)
	if err := mem.Write(ptr, data); err != nil {
		alloc.Free(ptr, size, 1)
		return 0, 0, err
	}
	return ptr, size, nil
}

// CopyBytes copies length bytes at addr into Go memory.
func CopyBytes(mem Memory, addr uint64, length uint32) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if addr == 0 {
		return nil, errors.NilPointer(errors.PhaseDecode, []string{"void*"})
	}
	view, err := mem.Read(addr, length)
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseDecode, addr, int(length))
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}
