package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/options"
)

// defineOptions hands set to the options driver. Values stored earlier,
// whether seeded from Config or set by the host, survive the redefinition.
// For v2 sets the result reports whether the frontend shows categories, not
// whether the definitions were accepted.
func (s *Session) defineOptions(set options.Set) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	ok := s.reg.Options.Define(set)
	s.log.Debug("core options defined",
		zap.Stringer("version", set.Version),
		zap.Int("count", len(set.Definitions)))
	return ok, nil
}

func (s *Session) envGetVariable(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	r := s.codec.Record(s.shapes.Variable, data)
	key := r.String("key")
	if err := r.Err(); err != nil {
		return false, err
	}
	value, ok := s.reg.Options.Value(key)
	if !ok {
		r.SetPtr("value", 0)
		return false, r.Err()
	}
	ptr, err := s.strs.get(value)
	if err != nil {
		return false, err
	}
	r.SetPtr("value", ptr)
	return true, r.Err()
}

// envSetVariable with NULL asks whether the host can take values from the
// core.
func (s *Session) envSetVariable(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	if data == 0 {
		return true, nil
	}
	r := s.codec.Record(s.shapes.Variable, data)
	key, value := r.String("key"), r.String("value")
	if err := r.Err(); err != nil {
		return false, err
	}
	return s.reg.Options.SetValue(key, value), nil
}

func (s *Session) envGetVariableUpdate(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	return true, s.writeBool(data, s.reg.Options.Updated())
}

func (s *Session) envGetCoreOptionsVersion(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	return true, s.mem.WriteU32(data, s.reg.Options.Version())
}

func (s *Session) envSetVariables(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	set, err := s.importVariables(data)
	if err != nil {
		return false, err
	}
	return s.defineOptions(set)
}

func (s *Session) envSetCoreOptions(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	set, err := s.importOptionDefsV1(data)
	if err != nil {
		return false, err
	}
	return s.defineOptions(set)
}

func (s *Session) envSetCoreOptionsIntl(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	set, err := s.importIntl(s.shapes.CoreOptionsIntl, data, s.importOptionDefsV1)
	if err != nil {
		return false, err
	}
	return s.defineOptions(set)
}

func (s *Session) envSetCoreOptionsV2(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	set, err := s.importOptionsV2(data)
	if err != nil {
		return false, err
	}
	return s.defineOptions(set)
}

func (s *Session) envSetCoreOptionsV2Intl(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	set, err := s.importIntl(s.shapes.CoreOptionsV2Intl, data, s.importOptionsV2)
	if err != nil {
		return false, err
	}
	return s.defineOptions(set)
}

func (s *Session) envSetCoreOptionsDisplay(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	r := s.codec.Record(s.shapes.CoreOptionDisplay, data)
	key, visible := r.String("key"), r.Bool("visible")
	if err := r.Err(); err != nil {
		return false, err
	}
	s.reg.Options.SetVisible(key, visible)
	return true, nil
}

// envSetCoreOptionsUpdateDisplayCallback installs the core's callback, or
// removes it when data or the callback pointer is NULL.
func (s *Session) envSetCoreOptionsUpdateDisplayCallback(data uint64) (bool, error) {
	if s.reg.Options == nil {
		return false, nil
	}
	var cb uint64
	if data != 0 {
		r := s.codec.Record(s.shapes.UpdateDisplayCallback, data)
		cb = r.Ptr("callback")
		if err := r.Err(); err != nil {
			return false, err
		}
	}
	if cb == 0 {
		s.reg.Options.SetUpdateDisplayCallback(nil)
		return true, nil
	}
	s.reg.Options.SetUpdateDisplayCallback(func() {
		if s.closed {
			return
		}
		_, _ = s.callCore("update_display", cb, sigUpdateDisplay)
	})
	return true, nil
}
