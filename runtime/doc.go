// Package runtime hosts a libretro core: it drives the core through its
// lifecycle and answers every call the core makes back into the frontend.
//
// # Quick Start
//
//	reg := driver.Registry{
//	    Video:   driver.NewArrayVideo(),
//	    Audio:   driver.NewArrayAudio(),
//	    Input:   driver.NewIterableInput(nil),
//	    Options: driver.NewStandardOptions(),
//	}
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
//	if err := s.RunFrames(600); err != nil {
//	    log.Fatal(err)
//	}
//
// # Lifecycle
//
// A Session moves through these states:
//
//	loaded -> initialized -> game_loaded -> running -> deinitialized
//
// UnloadGame returns a running session to initialized. Calling an operation
// in a state that does not allow it is a protocol violation: the call fails
// and every later call returns the same error. A core call that traps has
// the same effect, since the core's state is then unknown.
//
// # Environment Commands
//
// Dispatch answers the core's environment callback. Commands are looked up
// by code, with the experimental bit optional. Each command reads its
// payload from core memory, consults the matching driver and writes any
// answer back. Unknown commands, commands without a driver and malformed
// payloads answer false.
//
// Payloads are copied on import. Strings the host hands to the core live
// until the session is closed.
//
// # Drivers
//
// Every frontend facility is a driver interface in package driver. Nil
// drivers are absent: the matching commands answer false and callbacks are
// dropped. Capability interfaces (rumble, sensor, camera, microphone and
// the rest) are served from a per-session table, so a core asking twice
// receives the same function pointers.
//
// # Thread Safety
//
// A Session is not safe for concurrent use. The core calls back into the
// session on the goroutine that called into the core; calls from inside
// the core into Session lifecycle methods are rejected.
package runtime
