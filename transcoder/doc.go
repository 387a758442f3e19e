// Package transcoder reads and writes libretro C structs in core memory.
//
// Struct shapes come from the abi package as WIT records whose pointer
// fields are sized for the core's pointer width. The internal layout
// calculator turns a shape into C field offsets, and a Record gives typed
// access to one struct instance at an address.
//
// # Memory Layout
//
//	Type            Size    Alignment
//	──────────────────────────────────
//	bool            1       1
//	u8/s8           1       1
//	u16/s16         2       2
//	u32/s32/f32     4       4
//	u64/s64/f64     8       8
//	pointer         4 or 8  4 or 8
//	record          sum     max field align
//	tuple (array)   sum     element align
//
// # Reading
//
//	codec := transcoder.NewCodec(mem, 8)
//	v := codec.Record(codec.Shapes().Variable, addr)
//	key := v.String("key")
//	if err := v.Err(); err != nil {
//	    return err
//	}
//
// Record accessors keep the first error and return zero values after it, so
// a run of reads is checked once.
//
// # Arrays
//
// Counted arrays use Codec.Array. Arrays terminated by a sentinel element use
// ScanArray with a predicate, or ScanZeroTerminated for the common all-zero
// terminator. Scans are bounded by MaxArrayLen.
//
// # Ownership
//
// Strings and byte ranges are always copied into Go memory. Nothing returned
// by this package aliases core memory, so values stay valid after the core
// frees or reuses the originals.
//
// # Testing
//
// Arena is an in-process Memory and Allocator with 8-byte pointers, used to
// lay out core-side structs in tests without loading a real core.
package transcoder
