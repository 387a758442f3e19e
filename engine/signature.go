package engine

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero/api"
)

// Kind is the C type of one argument or result at the ABI boundary.
type Kind byte

const (
	KindVoid Kind = 'v'
	KindBool Kind = 'b'
	KindU8   Kind = 'B'
	KindI16  Kind = 's'
	KindU16  Kind = 'S'
	KindI32  Kind = 'i'
	KindU32  Kind = 'u'
	KindI64  Kind = 'l'
	KindU64  Kind = 'L'
	KindPtr  Kind = 'p' // pointer or function pointer
	KindSize Kind = 'z' // size_t
	KindF32  Kind = 'f'
	KindF64  Kind = 'd'
)

func (k Kind) valid() bool {
	switch k {
	case KindVoid, KindBool, KindU8, KindI16, KindU16, KindI32, KindU32,
		KindI64, KindU64, KindPtr, KindSize, KindF32, KindF64:
		return true
	}
	return false
}

// Float reports whether values of this kind travel in float registers.
func (k Kind) Float() bool { return k == KindF32 || k == KindF64 }

// Normalize masks a raw register value down to the kind's width.
// Upper bits of narrow integers are undefined in most C calling conventions,
// so every value crossing the boundary goes through here. Signed kinds are
// sign-extended; pointer-width kinds are truncated to pointerSize.
func (k Kind) Normalize(v uint64, pointerSize uint32) uint64 {
	switch k {
	case KindVoid:
		return 0
	case KindBool:
		if v&0xFF != 0 {
			return 1
		}
		return 0
	case KindU8:
		return v & 0xFF
	case KindI16:
		return uint64(int64(int16(v)))
	case KindU16:
		return v & 0xFFFF
	case KindI32:
		return uint64(int64(int32(v)))
	case KindU32, KindF32:
		return v & 0xFFFFFFFF
	case KindPtr, KindSize:
		if pointerSize == 4 {
			return v & 0xFFFFFFFF
		}
	}
	return v
}

// wasmType returns the core wasm value type used for a kind. Every integer of
// 32 bits or less, pointers included, is an i32 in wasm32.
func (k Kind) wasmType() api.ValueType {
	switch k {
	case KindI64, KindU64:
		return api.ValueTypeI64
	case KindF32:
		return api.ValueTypeF32
	case KindF64:
		return api.ValueTypeF64
	}
	return api.ValueTypeI32
}

// Signature is a C function type: one result kind and the parameter kinds.
// Its compact form is the result letter, an underscore and one letter per
// parameter, for example "b_up" for bool(unsigned, void*).
type Signature struct {
	Result Kind
	Params []Kind
}

// Sig parses a compact signature. It panics on malformed input and is meant
// for package-level tables.
func Sig(s string) Signature {
	sig, err := ParseSignature(s)
	if err != nil {
		panic(err)
	}
	return sig
}

// ParseSignature parses the compact form produced by Signature.String.
func ParseSignature(s string) (Signature, error) {
	res, params, ok := strings.Cut(s, "_")
	if !ok || len(res) != 1 {
		return Signature{}, fmt.Errorf("signature %q: want <result>_<params>", s)
	}
	sig := Signature{Result: Kind(res[0])}
	if !sig.Result.valid() {
		return Signature{}, fmt.Errorf("signature %q: unknown result kind %q", s, res[0])
	}
	for i := 0; i < len(params); i++ {
		k := Kind(params[i])
		if !k.valid() || k == KindVoid {
			return Signature{}, fmt.Errorf("signature %q: bad parameter kind %q", s, params[i])
		}
		sig.Params = append(sig.Params, k)
	}
	return sig, nil
}

func (s Signature) String() string {
	var b strings.Builder
	b.Grow(2 + len(s.Params))
	b.WriteByte(byte(s.Result))
	b.WriteByte('_')
	for _, p := range s.Params {
		b.WriteByte(byte(p))
	}
	return b.String()
}

// HasFloat reports whether any parameter or the result is a float.
func (s Signature) HasFloat() bool {
	if s.Result.Float() {
		return true
	}
	for _, p := range s.Params {
		if p.Float() {
			return true
		}
	}
	return false
}

// NormalizeArgs masks args in place according to the declared parameters.
// Extra arguments, such as variadic log arguments, are left untouched.
func (s Signature) NormalizeArgs(args []uint64, pointerSize uint32) {
	for i, k := range s.Params {
		if i >= len(args) {
			return
		}
		args[i] = k.Normalize(args[i], pointerSize)
	}
}

func (s Signature) wasmParams() []api.ValueType {
	out := make([]api.ValueType, len(s.Params))
	for i, p := range s.Params {
		out[i] = p.wasmType()
	}
	return out
}

func (s Signature) wasmResults() []api.ValueType {
	if s.Result == KindVoid {
		return nil
	}
	return []api.ValueType{s.Result.wasmType()}
}
