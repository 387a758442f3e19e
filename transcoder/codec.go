package transcoder

import (
	"math"
	"sync"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/errors"
)

// Codec reads and writes C structs in a core's memory.
// It is safe for concurrent use; Records are not.
type Codec struct {
	mem    Memory
	shapes *abi.Shapes
	calc   *LayoutCalculator
	mu     sync.Mutex
}

// NewCodec creates a codec for memory of a core with the given pointer size.
func NewCodec(mem Memory, pointerSize uint32) *Codec {
	return &Codec{
		mem:    mem,
		shapes: abi.ShapesFor(pointerSize),
		calc:   NewLayoutCalculator(),
	}
}

func (c *Codec) Memory() Memory      { return c.mem }
func (c *Codec) Shapes() *abi.Shapes { return c.shapes }
func (c *Codec) PointerSize() uint32 { return c.shapes.PointerSize }
func (c *Codec) Layout(t wit.Type) LayoutInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calc.Calculate(t)
}

// SizeOf returns the C size of t.
func (c *Codec) SizeOf(t wit.Type) uint32 {
	return c.Layout(t).Size
}

// Record returns an accessor for the struct of type td at addr.
func (c *Codec) Record(td *wit.TypeDef, addr uint64) *Record {
	r := &Record{c: c, td: td, addr: addr, info: c.Layout(td)}
	if addr == 0 {
		r.err = errors.NilPointer(errors.PhaseDecode, []string{typeName(td)})
	}
	return r
}

// NewRecord allocates a zeroed struct of type td using alloc.
func (c *Codec) NewRecord(alloc Allocator, td *wit.TypeDef) (*Record, error) {
	info := c.Layout(td)
	ptr, err := alloc.Alloc(info.Size, info.Align)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseEncode, info.Size, info.Align, err)
	}
	if err := c.mem.Write(ptr, make([]byte, info.Size)); err != nil {
		alloc.Free(ptr, info.Size, info.Align)
		return nil, err
	}
	return &Record{c: c, td: td, addr: ptr, info: info}, nil
}

// ReadPtr reads a pointer-width value at addr.
func (c *Codec) ReadPtr(addr uint64) (uint64, error) {
	if c.shapes.PointerSize == 4 {
		v, err := c.mem.ReadU32(addr)
		return uint64(v), err
	}
	return c.mem.ReadU64(addr)
}

// WritePtr writes a pointer-width value at addr.
func (c *Codec) WritePtr(addr, value uint64) error {
	if c.shapes.PointerSize == 4 {
		return c.mem.WriteU32(addr, uint32(value))
	}
	return c.mem.WriteU64(addr, value)
}

// CString copies the NUL-terminated string at addr into Go memory.
func (c *Codec) CString(addr uint64) (string, error) {
	return ReadCString(c.mem, addr, MaxCStringLen)
}

// ScanArray walks a C array of td starting at base until end reports true
// for an element, and returns the elements before it. The terminator is
// never included. limit bounds the scan for corrupt input.
func (c *Codec) ScanArray(td *wit.TypeDef, base uint64, limit int, end func(*Record) bool) ([]*Record, error) {
	if base == 0 {
		return nil, errors.NilPointer(errors.PhaseDecode, []string{typeName(td)})
	}
	size := uint64(c.SizeOf(td))
	var out []*Record
	for i := 0; i < limit; i++ {
		r := c.Record(td, base+uint64(i)*size)
		stop := end(r)
		if err := r.Err(); err != nil {
			return nil, err
		}
		if stop {
			return out, nil
		}
		out = append(out, r)
	}
	return nil, errors.InvalidData(errors.PhaseDecode, []string{typeName(td)}, "array terminator not found")
}

// ScanZeroTerminated walks a C array until an element whose bytes are all zero.
func (c *Codec) ScanZeroTerminated(td *wit.TypeDef, base uint64, limit int) ([]*Record, error) {
	return c.ScanArray(td, base, limit, (*Record).IsZero)
}

// Array returns accessors for n consecutive structs of type td.
func (c *Codec) Array(td *wit.TypeDef, base uint64, n int) ([]*Record, error) {
	if n == 0 {
		return nil, nil
	}
	if base == 0 {
		return nil, errors.NilPointer(errors.PhaseDecode, []string{typeName(td)})
	}
	if n < 0 || n > MaxArrayLen {
		return nil, errors.InvalidData(errors.PhaseDecode, []string{typeName(td)}, "array length out of range")
	}
	size := uint64(c.SizeOf(td))
	out := make([]*Record, n)
	for i := range out {
		out[i] = c.Record(td, base+uint64(i)*size)
	}
	return out, nil
}

// Record is a typed view of one C struct in core memory.
//
// Accessors record the first failure and return zero values afterwards,
// so a sequence of reads can be checked once with Err.
type Record struct {
	c    *Codec
	td   *wit.TypeDef
	err  error
	info LayoutInfo
	addr uint64
}

func (r *Record) Addr() uint64 { return r.addr }
func (r *Record) Size() uint32 { return r.info.Size }
func (r *Record) Err() error   { return r.err }

func (r *Record) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Record) field(name string) (uint64, wit.Type, bool) {
	if r.err != nil {
		return 0, nil, false
	}
	off, ok := r.info.FieldOffs[name]
	if !ok {
		r.fail(errors.NotFound(errors.PhaseDecode, typeName(r.td)+" field", name))
		return 0, nil, false
	}
	return r.addr + uint64(off), r.info.FieldTypes[name], true
}

// Uint reads an integer or bool field zero-extended to 64 bits.
func (r *Record) Uint(name string) uint64 {
	addr, t, ok := r.field(name)
	if !ok {
		return 0
	}
	var (
		v   uint64
		err error
	)
	switch t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		var b uint8
		b, err = r.c.mem.ReadU8(addr)
		v = uint64(b)
	case wit.U16, wit.S16:
		var h uint16
		h, err = r.c.mem.ReadU16(addr)
		v = uint64(h)
	case wit.U32, wit.S32, wit.F32:
		var w uint32
		w, err = r.c.mem.ReadU32(addr)
		v = uint64(w)
	case wit.U64, wit.S64, wit.F64:
		v, err = r.c.mem.ReadU64(addr)
	default:
		err = errors.InvalidData(errors.PhaseDecode, []string{typeName(r.td), name}, "not a scalar field")
	}
	if err != nil {
		r.fail(err)
		return 0
	}
	return v
}

// Int reads a signed field, sign-extending by its declared width.
func (r *Record) Int(name string) int64 {
	v := r.Uint(name)
	if r.err != nil {
		return 0
	}
	switch r.info.FieldTypes[name].(type) {
	case wit.S8:
		return int64(int8(v))
	case wit.S16:
		return int64(int16(v))
	case wit.S32:
		return int64(int32(v))
	}
	return int64(v)
}

func (r *Record) U32(name string) uint32 { return uint32(r.Uint(name)) }
func (r *Record) Ptr(name string) uint64 { return r.Uint(name) }
func (r *Record) Bool(name string) bool  { return r.Uint(name) != 0 }

func (r *Record) F32(name string) float32 {
	return math.Float32frombits(uint32(r.Uint(name)))
}

func (r *Record) F64(name string) float64 {
	return math.Float64frombits(r.Uint(name))
}

// String copies the C string the named pointer field points at.
// A NULL pointer yields "".
func (r *Record) String(name string) string {
	s, _ := r.OptString(name)
	return s
}

// OptString is String that also reports whether the pointer was non-NULL.
func (r *Record) OptString(name string) (string, bool) {
	p := r.Ptr(name)
	if r.err != nil || p == 0 {
		return "", false
	}
	s, err := r.c.CString(p)
	if err != nil {
		r.fail(err)
		return "", false
	}
	return s, true
}

// Field returns the nested struct stored inline in the named field.
func (r *Record) Field(name string) *Record {
	addr, t, ok := r.field(name)
	td, isDef := t.(*wit.TypeDef)
	if !ok || !isDef {
		if ok {
			r.fail(errors.InvalidData(errors.PhaseDecode, []string{typeName(r.td), name}, "not a struct field"))
		}
		return &Record{c: r.c, err: r.err}
	}
	return r.c.Record(td, addr)
}

// Elem returns element i of the fixed-size array stored in the named field.
func (r *Record) Elem(name string, i int) *Record {
	addr, t, ok := r.field(name)
	if !ok {
		return &Record{c: r.c, err: r.err}
	}
	td, isDef := t.(*wit.TypeDef)
	var tuple *wit.Tuple
	if isDef {
		tuple, _ = td.Kind.(*wit.Tuple)
	}
	if tuple == nil || i < 0 || i >= len(tuple.Types) {
		r.fail(errors.InvalidData(errors.PhaseDecode, []string{typeName(r.td), name}, "array index out of range"))
		return &Record{c: r.c, err: r.err}
	}
	elemDef, _ := tuple.Types[i].(*wit.TypeDef)
	if elemDef == nil {
		r.fail(errors.InvalidData(errors.PhaseDecode, []string{typeName(r.td), name}, "array of scalars"))
		return &Record{c: r.c, err: r.err}
	}
	offs := r.c.Layout(td).ElemOffs
	return r.c.Record(elemDef, addr+uint64(offs[i]))
}

// IsZero reports whether every byte of the struct is zero.
func (r *Record) IsZero() bool {
	if r.err != nil {
		return false
	}
	data, err := r.c.mem.Read(r.addr, r.info.Size)
	if err != nil {
		r.fail(err)
		return false
	}
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// SetUint writes an integer or bool field, truncating to its declared width.
func (r *Record) SetUint(name string, v uint64) {
	addr, t, ok := r.field(name)
	if !ok {
		return
	}
	var err error
	switch t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		err = r.c.mem.WriteU8(addr, uint8(v))
	case wit.U16, wit.S16:
		err = r.c.mem.WriteU16(addr, uint16(v))
	case wit.U32, wit.S32, wit.F32:
		err = r.c.mem.WriteU32(addr, uint32(v))
	case wit.U64, wit.S64, wit.F64:
		err = r.c.mem.WriteU64(addr, v)
	default:
		err = errors.InvalidData(errors.PhaseEncode, []string{typeName(r.td), name}, "not a scalar field")
	}
	if err != nil {
		r.fail(err)
	}
}

func (r *Record) SetInt(name string, v int64)  { r.SetUint(name, uint64(v)) }
func (r *Record) SetPtr(name string, v uint64) { r.SetUint(name, v) }

func (r *Record) SetBool(name string, v bool) {
	if v {
		r.SetUint(name, 1)
	} else {
		r.SetUint(name, 0)
	}
}

func (r *Record) SetF32(name string, v float32) {
	r.SetUint(name, uint64(math.Float32bits(v)))
}

func (r *Record) SetF64(name string, v float64) {
	r.SetUint(name, math.Float64bits(v))
}

func typeName(td *wit.TypeDef) string {
	if td != nil && td.Name != nil {
		return *td.Name
	}
	return "struct"
}
