package layout

import (
	"testing"

	"go.bytecodealliance.org/wit"
)

func TestCalculatePrimitives(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		typ   wit.Type
		name  string
		size  uint32
		align uint32
	}{
		{wit.Bool{}, "bool", 1, 1},
		{wit.U8{}, "u8", 1, 1},
		{wit.S8{}, "s8", 1, 1},
		{wit.U16{}, "u16", 2, 2},
		{wit.S16{}, "s16", 2, 2},
		{wit.U32{}, "u32", 4, 4},
		{wit.S32{}, "s32", 4, 4},
		{wit.U64{}, "u64", 8, 8},
		{wit.S64{}, "s64", 8, 8},
		{wit.F32{}, "f32", 4, 4},
		{wit.F64{}, "f64", 8, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := c.Calculate(tc.typ)
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.Align != tc.align {
				t.Errorf("align: got %d, want %d", info.Align, tc.align)
			}
		})
	}
}

func TestCalculateRecord(t *testing.T) {
	c := NewCalculator()

	t.Run("empty", func(t *testing.T) {
		typedef := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{}}}
		info := c.Calculate(typedef)
		if info.Size != 0 {
			t.Errorf("size: got %d, want 0", info.Size)
		}
	})

	t.Run("mixed_alignment", func(t *testing.T) {
		typedef := &wit.TypeDef{Kind: &wit.Record{
			Fields: []wit.Field{
				{Name: "a", Type: wit.U8{}},
				{Name: "b", Type: wit.U32{}},
				{Name: "c", Type: wit.U8{}},
			},
		}}
		info := c.Calculate(typedef)

		want := map[string]uint32{"a": 0, "b": 4, "c": 8}
		for name, off := range want {
			if info.FieldOffs[name] != off {
				t.Errorf("field %s offset: got %d, want %d", name, info.FieldOffs[name], off)
			}
		}
		if info.Size != 12 {
			t.Errorf("size: got %d, want 12", info.Size)
		}
		if info.Align != 4 {
			t.Errorf("align: got %d, want 4", info.Align)
		}
		if _, ok := info.FieldTypes["b"].(wit.U32); !ok {
			t.Errorf("field b type: got %T", info.FieldTypes["b"])
		}
	})

	// struct retro_variable on a 64-bit target: two pointers.
	t.Run("pointer_pair_64", func(t *testing.T) {
		typedef := &wit.TypeDef{Kind: &wit.Record{
			Fields: []wit.Field{{Name: "key", Type: wit.U64{}}, {Name: "value", Type: wit.U64{}}},
		}}
		info := c.Calculate(typedef)
		if info.Size != 16 || info.FieldOffs["value"] != 8 {
			t.Errorf("got size %d value@%d, want 16 and 8", info.Size, info.FieldOffs["value"])
		}
	})

	// struct retro_controller_description on a 64-bit target: pointer then unsigned, padded.
	t.Run("tail_padding", func(t *testing.T) {
		typedef := &wit.TypeDef{Kind: &wit.Record{
			Fields: []wit.Field{{Name: "desc", Type: wit.U64{}}, {Name: "id", Type: wit.U32{}}},
		}}
		info := c.Calculate(typedef)
		if info.Size != 16 {
			t.Errorf("size: got %d, want 16", info.Size)
		}
	})

	// struct retro_system_av_info: nested geometry then double timing.
	t.Run("nested", func(t *testing.T) {
		geometry := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
			{Name: "base_width", Type: wit.U32{}},
			{Name: "base_height", Type: wit.U32{}},
			{Name: "max_width", Type: wit.U32{}},
			{Name: "max_height", Type: wit.U32{}},
			{Name: "aspect_ratio", Type: wit.F32{}},
		}}}
		timing := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
			{Name: "fps", Type: wit.F64{}},
			{Name: "sample_rate", Type: wit.F64{}},
		}}}
		av := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
			{Name: "geometry", Type: geometry},
			{Name: "timing", Type: timing},
		}}}
		info := c.Calculate(av)
		if info.FieldOffs["timing"] != 24 {
			t.Errorf("timing offset: got %d, want 24", info.FieldOffs["timing"])
		}
		if info.Size != 40 {
			t.Errorf("size: got %d, want 40", info.Size)
		}
	})
}

func TestCalculateTuple(t *testing.T) {
	c := NewCalculator()

	t.Run("empty", func(t *testing.T) {
		info := c.Calculate(&wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{}}})
		if info.Size != 0 {
			t.Errorf("size: got %d, want 0", info.Size)
		}
	})

	t.Run("mixed", func(t *testing.T) {
		info := c.Calculate(&wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.U64{}, wit.U8{}}}})
		if info.Size != 24 {
			t.Errorf("size: got %d, want 24", info.Size)
		}
		if info.Align != 8 {
			t.Errorf("align: got %d, want 8", info.Align)
		}
		if len(info.ElemOffs) != 3 || info.ElemOffs[1] != 8 || info.ElemOffs[2] != 16 {
			t.Errorf("elem offsets: got %v", info.ElemOffs)
		}
	})

	t.Run("array_of_records", func(t *testing.T) {
		pair := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
			{Name: "value", Type: wit.U32{}}, {Name: "label", Type: wit.U32{}},
		}}}
		types := make([]wit.Type, 128)
		for i := range types {
			types[i] = pair
		}
		info := c.Calculate(&wit.TypeDef{Kind: &wit.Tuple{Types: types}})
		if info.Size != 128*8 {
			t.Errorf("size: got %d, want %d", info.Size, 128*8)
		}
		if info.ElemOffs[127] != 127*8 {
			t.Errorf("last elem offset: got %d", info.ElemOffs[127])
		}
	})
}

func TestCaching(t *testing.T) {
	c := NewCalculator()

	typedef := &wit.TypeDef{Kind: &wit.Record{
		Fields: []wit.Field{{Name: "x", Type: wit.U32{}}},
	}}

	info1 := c.Calculate(typedef)
	info2 := c.Calculate(typedef)

	if info1.Size != info2.Size {
		t.Error("cached results should be identical")
	}
	if len(c.cache) != 1 {
		t.Errorf("cache entries: got %d, want 1", len(c.cache))
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct{ off, align, want uint32 }{
		{0, 4, 0}, {1, 4, 4}, {4, 4, 4}, {5, 8, 8}, {9, 1, 9}, {7, 0, 7},
	}
	for _, tc := range tests {
		if got := AlignTo(tc.off, tc.align); got != tc.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tc.off, tc.align, got, tc.want)
		}
	}
}
