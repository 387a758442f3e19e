package runtime

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
)

// coreLog handles retro_log_printf_t. Backends that format inside the core
// pass one finished string; otherwise the printf format is expanded here
// from the raw integer arguments.
func (s *Session) coreLog(level abi.LogLevel, fmtPtr uint64, args []uint64) {
	if fmtPtr == 0 {
		return
	}
	format, err := s.codec.CString(fmtPtr)
	if err != nil {
		s.log.Debug("core log format unreadable", zap.Error(err))
		return
	}
	msg := format
	if !s.core.Info().FormattedLog {
		msg = s.formatPrintf(format, args)
	}
	msg = strings.TrimRight(msg, "\r\n")
	if s.reg.Log != nil {
		s.reg.Log.Log(level, msg)
		return
	}
	if ce := s.log.Check(driver.Level(level), msg); ce != nil {
		ce.Write(zap.String("source", "core"))
	}
}

// formatPrintf expands a C printf format. Integer, character, string and
// pointer conversions are supported; floating point arguments are not
// recoverable from integer registers, so those conversions and any
// conversion without a matching argument are copied through unchanged.
func (s *Session) formatPrintf(format string, args []uint64) string {
	var b strings.Builder
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		start := i
		i++
		for i < len(format) && strings.IndexByte("-+ #0", format[i]) >= 0 {
			i++
		}
		for i < len(format) && (isDigit(format[i]) || format[i] == '.') {
			i++
		}
		spec := format[start+1 : i]
		modStart := i
		for i < len(format) && strings.IndexByte("hlLzjtq", format[i]) >= 0 {
			i++
		}
		if i >= len(format) {
			b.WriteString(format[start:])
			break
		}
		mod, verb := format[modStart:i], format[i]
		literal := format[start : i+1]

		if verb == '%' {
			b.WriteByte('%')
			continue
		}
		if strings.IndexByte("diuxXocsp", verb) < 0 || next >= len(args) {
			b.WriteString(literal)
			continue
		}
		v := args[next]
		next++
		size := s.argSize(mod)
		switch verb {
		case 'd', 'i':
			fmt.Fprintf(&b, "%"+spec+"d", signExtend(v, size))
		case 'u':
			fmt.Fprintf(&b, "%"+spec+"d", truncate(v, size))
		case 'x', 'X', 'o':
			fmt.Fprintf(&b, "%"+spec+string(verb), truncate(v, size))
		case 'c':
			fmt.Fprintf(&b, "%"+spec+"c", rune(byte(v)))
		case 'p':
			fmt.Fprintf(&b, "0x%x", v&s.pointerMask())
		case 's':
			str := "(null)"
			if v != 0 {
				str, _ = s.codec.CString(v)
			}
			fmt.Fprintf(&b, "%"+spec+"s", str)
		}
	}
	return b.String()
}

// argSize returns the byte width of an integer argument for a length
// modifier. long follows the core's pointer size.
func (s *Session) argSize(mod string) int {
	switch mod {
	case "hh":
		return 1
	case "h":
		return 2
	case "":
		return 4
	case "l", "z", "t":
		return int(s.ptrSize)
	}
	return 8
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func truncate(v uint64, size int) uint64 {
	if size >= 8 {
		return v
	}
	return v & (1<<(uint(size)*8) - 1)
}

func signExtend(v uint64, size int) int64 {
	if size >= 8 {
		return int64(v)
	}
	shift := uint(64 - size*8)
	return int64(v<<shift) >> shift
}
