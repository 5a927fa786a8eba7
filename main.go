package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wormhole/audio"
	"github.com/pthm-cable/wormhole/camera"
	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/game"
	"github.com/pthm-cable/wormhole/renderer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	frontend := flag.String("frontend", "window", "Frontend: window, terminal or headless")
	tierName := flag.String("tier", "auto", "Device tier: full, constrained or auto")
	outputDir := flag.String("output-dir", "", "Output directory for scored runs (empty = disabled)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	plays := flag.Int("plays", 1, "Headless: number of plays")
	fps := flag.Int("fps", 60, "Terminal and headless: host frame rate")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stderr). The terminal frontend owns the tty, so
	// its logs go to the output directory or nowhere.
	var logOut io.Writer = os.Stderr
	if *frontend == "terminal" {
		logOut = io.Discard
		if *outputDir != "" {
			if err := os.MkdirAll(*outputDir, 0755); err == nil {
				if f, err := os.Create(filepath.Join(*outputDir, "wormhole.log")); err == nil {
					defer f.Close()
					logOut = f
				}
			}
		}
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	tier, err := game.ParseTier(*tierName)
	if err != nil {
		slog.Error("invalid tier", "error", err)
		os.Exit(1)
	}

	cues, err := audio.New(cfg.Audio)
	if err != nil {
		slog.Warn("audio unavailable", "error", err)
		cues = nil
	}
	defer cues.Close()

	opts := game.Options{
		Tier:      tier,
		Seed:      rngSeed,
		OutputDir: *outputDir,
		Cues:      cues,
	}

	slog.Info("starting",
		"frontend", *frontend,
		"tier", tier.String(),
		"seed", rngSeed,
	)

	switch *frontend {
	case "window":
		err = runWindow(cfg, opts)
	case "terminal":
		err = runTerminal(cfg, opts, *fps)
	case "headless":
		err = runHeadless(cfg, opts, *plays, *fps)
	default:
		slog.Error("unknown frontend", "frontend", *frontend)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func runWindow(cfg *config.Config, opts game.Options) error {
	game.OpenWindow(cfg)
	defer rl.CloseWindow()

	w, err := game.NewWindow(cfg, opts)
	if err != nil {
		return err
	}
	w.Loop()
	return w.Unload()
}

func runTerminal(cfg *config.Config, opts game.Options, fps int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	t, err := game.NewTerminal(cfg, opts, screen)
	if err != nil {
		return err
	}
	t.Loop(fps)
	return t.Close()
}

func runHeadless(cfg *config.Config, opts game.Options, plays, fps int) error {
	opts.Config = cfg
	opts.Width = float32(cfg.Screen.Width)
	opts.Height = float32(cfg.Screen.Height)
	opts.Camera = camera.New(game.CameraDefaults(&cfg.Camera))
	opts.NewSurface = func(w, h int) (renderer.Surface, error) {
		return renderer.NewRecorder(float32(w), float32(h)), nil
	}

	g, err := game.New(opts)
	if err != nil {
		return err
	}
	defer g.Close()

	results := game.RunHeadless(g, game.HeadlessOptions{
		Plays:     plays,
		FrameRate: fps,
		Start:     time.Now(),
	})
	slog.Info("headless complete", "plays", plays, "scored", len(results))
	return nil
}
