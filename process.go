package socialfit

import (
	"context"
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"github.com/menta2k/socialfit/internal/utils"
	"github.com/menta2k/socialfit/pkg/canvas"
	"github.com/menta2k/socialfit/pkg/compare"
	"github.com/menta2k/socialfit/pkg/filter"
	"github.com/menta2k/socialfit/pkg/output"
)

// Job describes one run over a single source image
type Job struct {
	Source   string
	Platform string

	// WithFilter applies Filter to the fitted image; Grid additionally
	// writes a sheet of every filter.
	WithFilter bool
	Filter     filter.Filter
	Grid       bool

	Contrast bool
	Sketch   bool

	OutputDir string
	Prefix    string
}

// Report lists what a Process run produced
type Report struct {
	Fit   canvas.Result
	Files []string
}

// Process fits the job's source and writes the fitted image plus whichever
// effects the job enables. If loading or fitting fails nothing is written.
func (s *Studio) Process(ctx context.Context, job Job) (Report, error) {
	result, err := s.Fit(ctx, job.Source, job.Platform)
	if err != nil {
		return Report{}, err
	}

	dir := job.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := utils.EnsureDir(dir); err != nil {
		return Report{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	report := Report{Fit: result}
	save := func(img image.Image, name string) error {
		path := utils.OutputPath(dir, job.Prefix, name, s.encode.Format)
		if err := output.Save(img, path, s.encode); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
		report.Files = append(report.Files, path)
		s.logWritten(path)
		return nil
	}

	if err := save(result.Image, result.Frame.Platform+"_fitted"); err != nil {
		return report, err
	}

	if job.WithFilter {
		filtered, err := s.ApplyFilter(result.Image, job.Filter)
		if err != nil {
			return report, err
		}
		if err := save(filtered, job.Filter.Slug()+"_result"); err != nil {
			return report, err
		}
		if job.Grid {
			grid, err := s.FilterGrid(result.Image, job.Filter)
			if err != nil {
				return report, err
			}
			if err := save(grid, "filters_comparison"); err != nil {
				return report, err
			}
		}
	}

	if job.Contrast {
		eq := s.Equalize(result.Image)
		sheet, err := compare.BeforeAfter("Original", eq.Gray, "Equalized", eq.Equalized)
		if err != nil {
			return report, err
		}
		for _, out := range []struct {
			img  image.Image
			name string
		}{
			{eq.Gray, "grayscale"},
			{eq.Equalized, "equalized"},
			{sheet, "contrast_comparison"},
		} {
			if err := save(out.img, out.name); err != nil {
				return report, err
			}
		}
	}

	if job.Sketch {
		edges := s.Sketch(result.Image)
		sheet, err := compare.BeforeAfter("Original", result.Image, "Sobel edges", edges)
		if err != nil {
			return report, err
		}
		if err := save(edges, "sobel_edges"); err != nil {
			return report, err
		}
		if err := save(sheet, "sketch_comparison"); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (s *Studio) logWritten(path string) {
	fields := []zap.Field{zap.String("path", path)}
	if info, err := os.Stat(path); err == nil {
		fields = append(fields, zap.String("size", utils.FormatFileSize(info.Size())))
	}
	s.logger.Info("wrote file", fields...)
}
