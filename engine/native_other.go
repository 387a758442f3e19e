//go:build !((darwin || linux || freebsd || netbsd) && (amd64 || arm64))

package engine

import (
	"runtime"

	rterrors "github.com/wippyai/retro-runtime/errors"
)

// OpenNative is unavailable on this platform; use a WebAssembly build of the
// core instead.
func OpenNative(path string) (Core, error) {
	return nil, rterrors.Unsupported(rterrors.PhaseLoad, "native cores on "+runtime.GOOS+"/"+runtime.GOARCH)
}
