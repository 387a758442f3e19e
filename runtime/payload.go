package runtime

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	rterrors "github.com/wippyai/retro-runtime/errors"
	"github.com/wippyai/retro-runtime/options"
	"github.com/wippyai/retro-runtime/transcoder"
)

// The import routines below copy everything a SET payload references into
// host-owned values. They run once, inside the dispatch call, and nothing
// they return points back into core memory.

func ptrIsNull(field string) func(*transcoder.Record) bool {
	return func(r *transcoder.Record) bool { return r.Ptr(field) == 0 }
}

func (s *Session) scanUntilNull(td *wit.TypeDef, base uint64, field string) ([]*transcoder.Record, error) {
	return s.codec.ScanArray(td, base, transcoder.MaxArrayLen, ptrIsNull(field))
}

func importGeometry(r *transcoder.Record) (driver.Geometry, error) {
	g := driver.Geometry{
		BaseWidth:   r.U32("base_width"),
		BaseHeight:  r.U32("base_height"),
		MaxWidth:    r.U32("max_width"),
		MaxHeight:   r.U32("max_height"),
		AspectRatio: r.F32("aspect_ratio"),
	}
	return g, r.Err()
}

func importAVInfo(r *transcoder.Record) (driver.AVInfo, error) {
	geom, err := importGeometry(r.Field("geometry"))
	if err != nil {
		return driver.AVInfo{}, err
	}
	t := r.Field("timing")
	av := driver.AVInfo{
		Geometry: geom,
		Timing:   driver.SystemTiming{FPS: t.F64("fps"), SampleRate: t.F64("sample_rate")},
	}
	return av, t.Err()
}

// importVariables reads a retro_variable array terminated by a NULL key.
func (s *Session) importVariables(base uint64) (options.Set, error) {
	recs, err := s.scanUntilNull(s.shapes.Variable, base, "key")
	if err != nil {
		return options.Set{}, err
	}
	set := options.Set{Version: options.VersionFlat}
	for _, r := range recs {
		key := r.String("key")
		spec := r.String("value")
		if err := r.Err(); err != nil {
			return options.Set{}, err
		}
		def, err := options.ParseFlat(key, spec)
		if err != nil {
			return options.Set{}, rterrors.Wrap(rterrors.PhaseDecode, rterrors.KindInvalidData, err, "retro_variable")
		}
		set.Definitions = append(set.Definitions, def)
	}
	return set, nil
}

// importOptionValues reads the fixed values array of a v1 or v2 definition
// up to the first NULL value.
func importOptionValues(r *transcoder.Record) ([]options.Value, error) {
	var out []options.Value
	for i := 0; i < abi.NumCoreOptionValuesMax; i++ {
		v := r.Elem("values", i)
		value, ok := v.OptString("value")
		if err := v.Err(); err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, options.Value{Value: value, Label: v.String("label")})
		if err := v.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// importOptionDefsV1 reads a retro_core_option_definition array terminated
// by a NULL key.
func (s *Session) importOptionDefsV1(base uint64) (options.Set, error) {
	recs, err := s.scanUntilNull(s.shapes.CoreOptionDefinition, base, "key")
	if err != nil {
		return options.Set{}, err
	}
	set := options.Set{Version: options.VersionV1}
	for _, r := range recs {
		values, err := importOptionValues(r)
		if err != nil {
			return options.Set{}, err
		}
		set.Definitions = append(set.Definitions, options.Definition{
			Key:     r.String("key"),
			Desc:    r.String("desc"),
			Info:    r.String("info"),
			Values:  values,
			Default: r.String("default_value"),
		})
		if err := r.Err(); err != nil {
			return options.Set{}, err
		}
	}
	return set, nil
}

// importOptionsV2 reads a retro_core_options_v2 struct. A NULL categories
// pointer means no categories.
func (s *Session) importOptionsV2(addr uint64) (options.Set, error) {
	top := s.codec.Record(s.shapes.CoreOptionsV2, addr)
	catBase, defBase := top.Ptr("categories"), top.Ptr("definitions")
	if err := top.Err(); err != nil {
		return options.Set{}, err
	}
	set := options.Set{Version: options.VersionV2}
	if catBase != 0 {
		cats, err := s.scanUntilNull(s.shapes.CoreOptionV2Category, catBase, "key")
		if err != nil {
			return options.Set{}, err
		}
		for _, r := range cats {
			set.Categories = append(set.Categories, options.Category{
				Key:  r.String("key"),
				Desc: r.String("desc"),
				Info: r.String("info"),
			})
			if err := r.Err(); err != nil {
				return options.Set{}, err
			}
		}
	}
	defs, err := s.scanUntilNull(s.shapes.CoreOptionV2Definition, defBase, "key")
	if err != nil {
		return options.Set{}, err
	}
	for _, r := range defs {
		values, err := importOptionValues(r)
		if err != nil {
			return options.Set{}, err
		}
		set.Definitions = append(set.Definitions, options.Definition{
			Key:             r.String("key"),
			Desc:            r.String("desc"),
			DescCategorized: r.String("desc_categorized"),
			Info:            r.String("info"),
			InfoCategorized: r.String("info_categorized"),
			Category:        r.String("category_key"),
			Values:          values,
			Default:         r.String("default_value"),
		})
		if err := r.Err(); err != nil {
			return options.Set{}, err
		}
	}
	return set, nil
}

// importIntl reads a us/local pair. local may be NULL.
func (s *Session) importIntl(td *wit.TypeDef, addr uint64, one func(uint64) (options.Set, error)) (options.Set, error) {
	r := s.codec.Record(td, addr)
	us, local := r.Ptr("us"), r.Ptr("local")
	if err := r.Err(); err != nil {
		return options.Set{}, err
	}
	set, err := one(us)
	if err != nil || local == 0 {
		return set, err
	}
	loc, err := one(local)
	if err != nil {
		return options.Set{}, err
	}
	return options.Localize(set, loc), nil
}

// importInputDescriptors reads a descriptor array terminated by a NULL
// description.
func (s *Session) importInputDescriptors(base uint64) ([]driver.InputDescriptor, error) {
	recs, err := s.scanUntilNull(s.shapes.InputDescriptor, base, "description")
	if err != nil {
		return nil, err
	}
	out := make([]driver.InputDescriptor, 0, len(recs))
	for _, r := range recs {
		out = append(out, driver.InputDescriptor{
			Description: r.String("description"),
			Port:        r.U32("port"),
			Device:      r.U32("device"),
			Index:       r.U32("index"),
			ID:          r.U32("id"),
		})
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// importControllerInfo reads one entry per port up to a zeroed entry.
func (s *Session) importControllerInfo(base uint64) ([]driver.ControllerInfo, error) {
	recs, err := s.codec.ScanZeroTerminated(s.shapes.ControllerInfo, base, transcoder.MaxArrayLen)
	if err != nil {
		return nil, err
	}
	out := make([]driver.ControllerInfo, 0, len(recs))
	for _, r := range recs {
		types, n := r.Ptr("types"), int(r.U32("num_types"))
		if err := r.Err(); err != nil {
			return nil, err
		}
		descs, err := s.codec.Array(s.shapes.ControllerDescription, types, n)
		if err != nil {
			return nil, err
		}
		info := driver.ControllerInfo{Types: make([]driver.ControllerDescription, 0, n)}
		for _, d := range descs {
			info.Types = append(info.Types, driver.ControllerDescription{Desc: d.String("desc"), ID: d.U32("id")})
			if err := d.Err(); err != nil {
				return nil, err
			}
		}
		out = append(out, info)
	}
	return out, nil
}

// importSubsystems reads a subsystem array terminated by a zeroed entry.
func (s *Session) importSubsystems(base uint64) ([]Subsystem, error) {
	recs, err := s.codec.ScanZeroTerminated(s.shapes.SubsystemInfo, base, transcoder.MaxArrayLen)
	if err != nil {
		return nil, err
	}
	out := make([]Subsystem, 0, len(recs))
	for _, r := range recs {
		sub := Subsystem{Desc: r.String("desc"), Ident: r.String("ident"), ID: r.U32("id")}
		roms, err := s.codec.Array(s.shapes.SubsystemROMInfo, r.Ptr("roms"), int(r.U32("num_roms")))
		if err != nil {
			return nil, err
		}
		if err := r.Err(); err != nil {
			return nil, err
		}
		for _, rr := range roms {
			rom := SubsystemROM{
				Desc:            rr.String("desc"),
				ValidExtensions: rr.String("valid_extensions"),
				NeedFullpath:    rr.Bool("need_fullpath"),
				BlockExtract:    rr.Bool("block_extract"),
				Required:        rr.Bool("required"),
			}
			mems, err := s.codec.Array(s.shapes.SubsystemMemoryInfo, rr.Ptr("memory"), int(rr.U32("num_memory")))
			if err != nil {
				return nil, err
			}
			for _, m := range mems {
				rom.Memory = append(rom.Memory, SubsystemMemory{Extension: m.String("extension"), Type: m.U32("type")})
				if err := m.Err(); err != nil {
					return nil, err
				}
			}
			if err := rr.Err(); err != nil {
				return nil, err
			}
			sub.ROMs = append(sub.ROMs, rom)
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *Session) importMemoryMap(addr uint64) ([]MemoryDescriptor, error) {
	m := s.codec.Record(s.shapes.MemoryMap, addr)
	base, n := m.Ptr("descriptors"), int(m.U32("num_descriptors"))
	if err := m.Err(); err != nil {
		return nil, err
	}
	recs, err := s.codec.Array(s.shapes.MemoryDescriptor, base, n)
	if err != nil {
		return nil, err
	}
	out := make([]MemoryDescriptor, 0, n)
	for _, r := range recs {
		out = append(out, MemoryDescriptor{
			Flags:      r.Uint("flags"),
			Ptr:        r.Ptr("ptr"),
			Offset:     r.Uint("offset"),
			Start:      r.Uint("start"),
			Select:     r.Uint("select"),
			Disconnect: r.Uint("disconnect"),
			Len:        r.Uint("len"),
			AddrSpace:  r.String("addrspace"),
		})
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// importContentOverrides reads overrides terminated by NULL extensions.
func (s *Session) importContentOverrides(base uint64) ([]ContentOverride, error) {
	recs, err := s.scanUntilNull(s.shapes.ContentInfoOverride, base, "extensions")
	if err != nil {
		return nil, err
	}
	out := make([]ContentOverride, 0, len(recs))
	for _, r := range recs {
		out = append(out, ContentOverride{
			Extensions:     r.String("extensions"),
			NeedFullpath:   r.Bool("need_fullpath"),
			PersistentData: r.Bool("persistent_data"),
		})
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Session) importMessage(addr uint64) (driver.MessageText, error) {
	r := s.codec.Record(s.shapes.Message, addr)
	msg := driver.MessageText{Text: r.String("msg"), Frames: r.U32("frames")}
	return msg, r.Err()
}

func (s *Session) importMessageExt(addr uint64) (driver.MessageExt, error) {
	r := s.codec.Record(s.shapes.MessageExt, addr)
	msg := driver.MessageExt{
		Text:     r.String("msg"),
		Duration: r.U32("duration"),
		Priority: r.U32("priority"),
		Level:    abi.LogLevel(r.U32("level")),
		Target:   abi.MessageTarget(r.U32("target")),
		Type:     abi.MessageType(r.U32("type")),
		Progress: int8(r.Int("progress")),
	}
	return msg, r.Err()
}

func importHWRender(r *transcoder.Record) (driver.HWRender, error) {
	req := driver.HWRender{
		ContextType:      abi.HWContextType(r.U32("context_type")),
		VersionMajor:     r.U32("version_major"),
		VersionMinor:     r.U32("version_minor"),
		Depth:            r.Bool("depth"),
		Stencil:          r.Bool("stencil"),
		BottomLeftOrigin: r.Bool("bottom_left_origin"),
		CacheContext:     r.Bool("cache_context"),
		DebugContext:     r.Bool("debug_context"),
	}
	return req, r.Err()
}
