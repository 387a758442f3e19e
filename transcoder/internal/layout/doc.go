// Package layout computes C struct layouts for WIT-described types.
//
// Records are C structs, tuples are fixed-size C arrays, and primitives map
// to the C integer and floating point types of the same width.
//
// # Layout Rules
//
//   - Primitives: size equals alignment (u8=1, u32=4, u64=8, etc.)
//   - Records: fields laid out sequentially with padding for alignment,
//     total size rounded up to the largest field alignment
//   - Tuples: elements laid out like record fields
//
// Pointer-width fields are described by the caller as u32 or u64, so the
// calculator itself has no notion of the target.
//
// This package is internal to the transcoder.
package layout
