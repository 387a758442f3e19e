package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/retro-runtime/content"
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/engine"
	"github.com/wippyai/retro-runtime/runtime"
)

type options struct {
	core     string
	content  string
	mode     string
	frames   int
	opts     string
	system   string
	save     string
	wav      string
	logLevel string
}

func main() {
	var o options
	flag.StringVar(&o.core, "core", "", "Path to the libretro core (.so/.dylib/.dll or .wasm)")
	flag.StringVar(&o.content, "content", "", "Content file to load (archives are extracted)")
	flag.StringVar(&o.mode, "mode", "run", "What to do: load, info, init, content or run")
	flag.IntVar(&o.frames, "frames", 60, "Frames to run in run mode")
	flag.StringVar(&o.opts, "options", "", "Core option values (key=value,key2=value2)")
	flag.StringVar(&o.system, "system", "", "System directory served to the core")
	flag.StringVar(&o.save, "save", "", "Save directory served to the core")
	flag.StringVar(&o.wav, "wav", "", "Write core audio to this WAV file")
	flag.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	interactive := flag.Bool("i", false, "Interactive mode with TUI")
	flag.Parse()

	if o.core == "" {
		fmt.Fprintln(os.Stderr, "Usage: retrorun -core <core> [-content file] [-mode load|info|init|content|run] [-frames N]")
		fmt.Fprintln(os.Stderr, "       retrorun -core <core> [-content file] -i  (interactive mode)")
		os.Exit(1)
	}

	logger, err := newLogger(o.logLevel, *interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	engine.SetLogger(logger)
	runtime.SetLogger(logger)

	if *interactive {
		err = runInteractive(o, logger)
	} else {
		err = run(o, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string, quiet bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	if quiet {
		// The TUI owns the terminal.
		cfg.OutputPaths = []string{os.DevNull}
	}
	return cfg.Build()
}

// parseOptions splits "k=v,k2=v2". Malformed pairs are ignored.
func parseOptions(s string) map[string]string {
	if s == "" {
		return nil
	}
	out := make(map[string]string)
	for _, kv := range strings.Split(s, ",") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 && parts[0] != "" {
			out[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return out
}

// harness is the session plus the drivers the CLI inspects afterwards.
type harness struct {
	session *runtime.Session
	video   *driver.ArrayVideo
	audio   driver.Audio
	wav     *driver.WAVAudio
	wavFile *os.File
	opts    *driver.StandardOptions
	game    *content.Content
	log     *zap.Logger
}

func open(o options, logger *zap.Logger) (*harness, error) {
	h := &harness{
		video: driver.NewArrayVideo(),
		opts:  driver.NewStandardOptions(),
		log:   logger,
	}
	reg := driver.Defaults()
	reg.Video = h.video
	reg.Options = h.opts
	reg.Log = driver.NewZapLog(logger)
	reg.Message = driver.NewLoggerMessage(logger)
	paths := &driver.StandardPath{
		SystemDir:    o.system,
		SaveDir:      o.save,
		LibretroPath: o.core,
	}
	if o.content != "" {
		paths.FileBrowserStartDir = filepath.Dir(o.content)
	}
	reg.Path = paths
	if o.wav != "" {
		f, err := os.Create(o.wav)
		if err != nil {
			return nil, fmt.Errorf("create wav: %w", err)
		}
		h.wavFile = f
		h.wav = driver.NewWAVAudio(f)
		reg.Audio = h.wav
	}
	h.audio = reg.Audio

	s, err := runtime.Open(context.Background(), o.core, reg, runtime.Config{
		Options:  parseOptions(o.opts),
		MaxUsers: 2,
	})
	if err != nil {
		_ = h.closeWAV()
		return nil, fmt.Errorf("open core: %w", err)
	}
	h.session = s
	return h, nil
}

// loadContent loads o.content, or no content when the path is empty and the
// core allows it.
func (h *harness) loadContent(path string) error {
	info, err := h.session.SystemInfo()
	if err != nil {
		return err
	}
	if path == "" {
		if !h.session.SupportsNoGame() {
			return fmt.Errorf("%s needs content (-content)", info.LibraryName)
		}
		return h.session.LoadNoGame()
	}
	c, err := content.Load(path, content.Extensions(info.ValidExtensions), content.Options{
		NeedFullpath: info.NeedFullpath,
		BlockExtract: info.BlockExtract,
	})
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	h.game = &c
	return h.session.LoadGame(c)
}

func (h *harness) close() error {
	err := h.session.Close()
	if h.game != nil {
		if rerr := h.game.Release(); rerr != nil {
			h.log.Warn("release content", zap.Error(rerr))
		}
	}
	if werr := h.closeWAV(); err == nil {
		err = werr
	}
	return err
}

func (h *harness) closeWAV() error {
	if h.wav == nil {
		return nil
	}
	err := h.wav.Close()
	if cerr := h.wavFile.Close(); err == nil {
		err = cerr
	}
	h.wav = nil
	return err
}

func run(o options, logger *zap.Logger) (err error) {
	switch o.mode {
	case "load", "info", "init", "content", "run":
	default:
		return fmt.Errorf("unknown mode %q", o.mode)
	}

	h, err := open(o, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.close(); err == nil {
			err = cerr
		}
	}()

	fmt.Printf("Core: %s\n", o.core)
	info := h.session.Core().Info()
	fmt.Printf("Backend: %s (%d-bit pointers)\n", info.Backend, info.PointerSize*8)
	if o.mode == "load" {
		return nil
	}

	sys, err := h.session.SystemInfo()
	if err != nil {
		return fmt.Errorf("system info: %w", err)
	}
	fmt.Printf("Library: %s %s\n", sys.LibraryName, sys.LibraryVersion)
	fmt.Printf("Extensions: %s\n", sys.ValidExtensions)
	fmt.Printf("Need fullpath: %v, block extract: %v\n", sys.NeedFullpath, sys.BlockExtract)
	if o.mode == "info" {
		return nil
	}

	if err := h.session.Init(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	fmt.Printf("Supports no game: %v\n", h.session.SupportsNoGame())
	if o.mode == "init" {
		return h.session.Deinit()
	}

	if err := h.loadContent(o.content); err != nil {
		return err
	}
	av, err := h.session.AVInfo()
	if err != nil {
		return fmt.Errorf("av info: %w", err)
	}
	fmt.Printf("Geometry: %dx%d (max %dx%d, aspect %.3f)\n",
		av.Geometry.BaseWidth, av.Geometry.BaseHeight,
		av.Geometry.MaxWidth, av.Geometry.MaxHeight, av.Geometry.AspectRatio)
	fmt.Printf("Timing: %.3f fps, %.0f Hz\n", av.Timing.FPS, av.Timing.SampleRate)
	fmt.Printf("Pixel format: %s\n", h.session.PixelFormat())
	printOptions(h.opts)

	if o.mode == "run" {
		if err := h.session.RunFrames(o.frames); err != nil {
			return fmt.Errorf("run: %w", err)
		}
		fmt.Printf("\nRan %d frame(s): %d video frame(s)", o.frames, h.video.Count())
		if h.wav != nil {
			fmt.Printf(", %d audio frame(s) to %s", h.wav.Frames(), o.wav)
		} else if a, ok := h.audio.(*driver.ArrayAudio); ok {
			fmt.Printf(", %d audio frame(s)", a.Frames())
		}
		fmt.Println()
		if h.session.ShutdownRequested() {
			fmt.Println("Core requested shutdown")
		}
	}

	if err := h.session.UnloadGame(); err != nil {
		return fmt.Errorf("unload: %w", err)
	}
	return h.session.Deinit()
}

func printOptions(o *driver.StandardOptions) {
	defs := o.Definitions()
	if len(defs) == 0 {
		return
	}
	fmt.Printf("\nCore options:\n")
	for _, d := range defs {
		v, _ := o.Get(d.Key)
		fmt.Printf("  %s = %s\n", d.Key, v)
	}
}
