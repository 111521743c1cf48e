package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/menta2k/socialfit"
	"github.com/menta2k/socialfit/internal/config"
	"github.com/menta2k/socialfit/internal/logging"
	"github.com/menta2k/socialfit/internal/utils"
	"github.com/menta2k/socialfit/pkg/canvas"
	"github.com/menta2k/socialfit/pkg/filter"
	"github.com/menta2k/socialfit/pkg/frame"
	"github.com/menta2k/socialfit/pkg/output"
)

func main() {
	var in, platform, filterName, outDir, ext, prefix string
	var configPath, logLevel string
	var grid, contrastMode, sketchMode, lossless bool
	var quality int

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp/gif/bmp/tiff)")
	flag.StringVar(&platform, "platform", "", "target platform: "+strings.Join(frame.Default().Names(), "|"))

	flag.StringVar(&filterName, "filter", "", "filter to apply, e.g. \"EDGE ENHANCE\" (empty = none)")
	flag.BoolVar(&grid, "grid", false, "also write a sheet with every filter")
	flag.BoolVar(&contrastMode, "contrast", false, "write grayscale and histogram-equalized images")
	flag.BoolVar(&sketchMode, "sketch", false, "write Sobel edge sketch")

	flag.StringVar(&outDir, "out", "", "output directory (default from config)")
	flag.StringVar(&prefix, "prefix", "", "prefix for output file names")
	flag.StringVar(&ext, "ext", "", "output format: jpg|png|webp (default from config)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100, default from config)")
	flag.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")

	flag.StringVar(&configPath, "config", "", "JSON config file (default ~/.config/socialfit/config.json if present)")
	flag.StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")

	flag.Parse()
	if in == "" || platform == "" {
		log.Fatalf("usage: %s -in input.jpg|URL -platform Instagram [-filter NAME] [-grid] [-contrast] [-sketch] [-out outdir] [-ext jpg|png|webp]", filepath.Base(os.Args[0]))
	}

	if configPath == "" && utils.FileExists(config.GetConfigPath()) {
		configPath = config.GetConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Flags win over file and environment
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if prefix != "" {
		cfg.Output.Prefix = prefix
	}
	if ext != "" {
		cfg.Output.Format = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	if quality != 0 {
		cfg.Output.Quality = quality
	}
	if lossless {
		cfg.Output.Lossless = true
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if !output.Supported(cfg.Output.Format) {
		log.Fatalf("unsupported output format: %s", cfg.Output.Format)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatal(err)
	}

	job := socialfit.Job{
		Source:    in,
		Platform:  platform,
		Grid:      grid,
		Contrast:  contrastMode,
		Sketch:    sketchMode,
		OutputDir: cfg.Output.Dir,
		Prefix:    cfg.Output.Prefix,
	}
	if filterName != "" {
		f, err := filter.Parse(filterName)
		if err != nil {
			logger.Fatal("invalid filter", zap.Error(err))
		}
		job.WithFilter = true
		job.Filter = f
	} else if grid {
		job.WithFilter = true
	}

	canvasOpts, err := cfg.CanvasOptions()
	if err != nil {
		logger.Fatal("invalid canvas config", zap.Error(err))
	}

	if err := run(logger, cfg, job, canvasOpts); err != nil {
		logger.Error("processing failed", zap.String("source", in), zap.Error(err))
		_ = logger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg *config.Config, job socialfit.Job, canvasOpts canvas.Config) error {
	studio, err := socialfit.NewWithOptions(socialfit.Options{
		Source: cfg.SourceOptions(),
		Canvas: canvasOpts,
		Encode: cfg.EncodeOptions(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer studio.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := studio.Process(ctx, job)
	if err != nil {
		return err
	}

	p := report.Fit.Placement
	logger.Info("done",
		zap.String("platform", report.Fit.Frame.Platform),
		zap.Int("content_width", p.Width),
		zap.Int("content_height", p.Height),
		zap.Int("offset_x", p.OffsetX),
		zap.Int("offset_y", p.OffsetY),
		zap.Int("files", len(report.Files)))
	_ = logger.Sync()
	return nil
}
