package engine

import (
	"testing"

	"github.com/tetratelabs/wazero/api"
)

func TestParseSignature(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		params  int
		wantErr bool
	}{
		{in: "v_", want: "v_"},
		{in: "b_up", want: "b_up", params: 2},
		{in: "z_pz", want: "z_pz", params: 2},
		{in: "f_uu", want: "f_uu", params: 2},
		{in: "", wantErr: true},
		{in: "b", wantErr: true},
		{in: "bb_u", wantErr: true},
		{in: "x_u", wantErr: true},
		{in: "v_uv", wantErr: true},
		{in: "v_q", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sig, err := ParseSignature(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSignature(%q) = %v, want error", tt.in, sig)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSignature(%q): %v", tt.in, err)
			}
			if sig.String() != tt.want || len(sig.Params) != tt.params {
				t.Errorf("got %s with %d params", sig, len(sig.Params))
			}
		})
	}
}

func TestSigPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Sig accepted a malformed signature")
		}
	}()
	Sig("nope")
}

func TestKindNormalize(t *testing.T) {
	tests := []struct {
		kind    Kind
		in      uint64
		ptrSize uint32
		want    uint64
	}{
		{KindVoid, 0xFFFF, 8, 0},
		{KindBool, 0xFF00, 8, 0},
		{KindBool, 0x1_0000_0002, 8, 1},
		{KindU8, 0x1FF, 8, 0xFF},
		{KindI16, 0xFFFF, 8, ^uint64(0)},
		{KindI16, 0x1_7FFF, 8, 0x7FFF},
		{KindU16, 0xDEAD_BEEF, 8, 0xBEEF},
		{KindI32, 0xFFFF_FFFE, 8, ^uint64(1)},
		{KindU32, 0xAAAA_0000_0001, 8, 1},
		{KindF32, 0xFFFF_FFFF_3F80_0000, 8, 0x3F80_0000},
		{KindPtr, 0x1234_0000_5678, 4, 0x5678},
		{KindPtr, 0x1234_0000_5678, 8, 0x1234_0000_5678},
		{KindSize, 0x1_0000_0010, 4, 0x10},
		{KindI64, ^uint64(0), 4, ^uint64(0)},
		{KindF64, 0x4000_0000_0000_0000, 4, 0x4000_0000_0000_0000},
	}
	for _, tt := range tests {
		if got := tt.kind.Normalize(tt.in, tt.ptrSize); got != tt.want {
			t.Errorf("%c.Normalize(%#x, %d) = %#x, want %#x", tt.kind, tt.in, tt.ptrSize, got, tt.want)
		}
	}
}

func TestSignatureHasFloat(t *testing.T) {
	for s, want := range map[string]bool{
		"v_":    false,
		"b_uuS": false,
		"f_uu":  true,
		"v_ld":  true,
		"d_":    true,
	} {
		if got := Sig(s).HasFloat(); got != want {
			t.Errorf("%s HasFloat = %v, want %v", s, got, want)
		}
	}
}

func TestNormalizeArgsLeavesVariadicTail(t *testing.T) {
	args := []uint64{0x1_0000_0003, 0xFFFF_0000_0040, 0xFFFF_FFFF_FFFF_FFFF}
	Sig("v_up").NormalizeArgs(args, 4)
	if args[0] != 3 || args[1] != 0x40 {
		t.Errorf("declared args = %#x %#x", args[0], args[1])
	}
	if args[2] != 0xFFFF_FFFF_FFFF_FFFF {
		t.Errorf("variadic arg changed to %#x", args[2])
	}

	short := []uint64{0x1_0000_0001}
	Sig("v_uuu").NormalizeArgs(short, 8)
	if short[0] != 1 {
		t.Errorf("short args = %#x", short)
	}
}

func TestWasmTypes(t *testing.T) {
	sig := Sig("l_puLfdbz")
	want := []api.ValueType{
		api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI64,
		api.ValueTypeF32, api.ValueTypeF64, api.ValueTypeI32, api.ValueTypeI32,
	}
	got := sig.wasmParams()
	if len(got) != len(want) {
		t.Fatalf("params = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("param %d = %s, want %s", i, api.ValueTypeName(got[i]), api.ValueTypeName(want[i]))
		}
	}
	if res := sig.wasmResults(); len(res) != 1 || res[0] != api.ValueTypeI64 {
		t.Errorf("results = %v", res)
	}
	if res := Sig("v_").wasmResults(); res != nil {
		t.Errorf("void results = %v", res)
	}
}
