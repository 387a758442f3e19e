package retroruntime

// Memory is the address space a core shares with the host.
//
// Addresses are 64-bit so that native cores (real process addresses) and
// WebAssembly cores (32-bit linear memory offsets) share one interface.
// Slices returned by Read may alias core memory and must be copied before
// being retained past the current call.
type Memory interface {
	Read(addr uint64, length uint32) ([]byte, error)
	Write(addr uint64, data []byte) error
	ReadU8(addr uint64) (uint8, error)
	ReadU16(addr uint64) (uint16, error)
	ReadU32(addr uint64) (uint32, error)
	ReadU64(addr uint64) (uint64, error)
	WriteU8(addr uint64, value uint8) error
	WriteU16(addr uint64, value uint16) error
	WriteU32(addr uint64, value uint32) error
	WriteU64(addr uint64, value uint64) error
}

// Allocator allocates host-owned memory the core can read.
// Allocations stay valid until freed or until the core is closed.
type Allocator interface {
	Alloc(size, align uint32) (uint64, error)
	Free(ptr uint64, size, align uint32)
}
