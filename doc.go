// Package retroruntime hosts dynamically loaded libretro cores from Go.
//
// A core is a third-party emulator or media player built against the
// libretro C ABI. The host loads it, hands it a set of callbacks, and the
// core drives everything else through a single environment callback that
// queries and configures host capabilities by numeric command code.
//
// # Architecture Overview
//
//	retroruntime/        Root package with the shared Memory and Allocator interfaces
//	├── runtime/         Session: lifecycle, environment dispatcher, callbacks, run loop
//	├── engine/          Core loading: native shared objects (purego) and WebAssembly (wazero)
//	├── driver/          Capability interfaces, the driver Registry, standard drivers
//	├── options/         Core options model (flat, v1, v2, localized)
//	├── abi/             Environment command table, enums and C struct shapes
//	├── transcoder/      C struct layout and typed access to core memory
//	├── resource/        Generation-checked handle tables
//	├── content/         Content loading from files and archives
//	├── errors/          Structured error types
//	├── cmd/retrorun/    Command-line harness and interactive options browser
//	└── testbed/         End-to-end tests against real cores
//
// # Quick Start
//
//	reg := driver.Registry{
//	    Video:   driver.NewArrayVideo(),
//	    Audio:   driver.NewArrayAudio(),
//	    Input:   driver.NewIterableInput(nil),
//	    Log:     driver.NewZapLog(logger),
//	    Options: driver.NewStandardOptions(),
//	}
//
//	s, err := runtime.Open(ctx, "snes9x_libretro.so", reg, runtime.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if err := s.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	game, err := content.Load("game.sfc", nil, content.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.LoadGame(game); err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.RunFrames(60); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// A Session is driven from a single goroutine. The core calls back into the
// host synchronously from inside whichever entry point the host invoked;
// callers that share a Session across goroutines must serialize access.
package retroruntime
