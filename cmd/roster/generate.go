package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/duty-roster-go/pkg/render"
	"github.com/arnavshah/duty-roster-go/pkg/roster"
	"github.com/arnavshah/duty-roster-go/pkg/scheduler"
)

type generateOptions struct {
	configPath   string
	outDir       string
	previousPath string
	format       string
	seed         int64
	seedSet      bool
	capacity     int
	maxSteps     int
}

// generate runs one planning and returns the path of the written planning file.
func generate(opts generateOptions, logger *zap.Logger, stdout io.Writer) (string, error) {
	cfg, err := roster.LoadConfig(opts.configPath)
	if err != nil {
		return "", err
	}
	grid, err := roster.Horizon(cfg)
	if err != nil {
		return "", err
	}
	team, err := roster.Build(cfg.Employees)
	if err != nil {
		return "", err
	}
	month := time.Month(cfg.Month)

	prevPath := opts.previousPath
	if prevPath == "" {
		prevPath = roster.PreviousPlanningFile(opts.outDir, cfg.Year, month)
	}
	previous, err := roster.LoadPrevious(prevPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("last month's planning not found", zap.String("path", prevPath))
	case err != nil:
		return "", err
	default:
		n, err := roster.SeedContinuity(team, previous)
		if err != nil {
			return "", err
		}
		logger.Debug("continuity seeded", zap.String("path", prevPath), zap.Int("shifts", n))
	}

	capacity := cfg.Capacity
	if opts.capacity > 0 {
		capacity = opts.capacity
	}
	schedOpts := []scheduler.Option{
		scheduler.WithCapacity(capacity),
		scheduler.WithMaxSteps(opts.maxSteps),
		scheduler.WithLogger(logger),
	}
	switch {
	case opts.seedSet:
		schedOpts = append(schedOpts, scheduler.WithSeed(opts.seed))
	case cfg.Seed != nil:
		schedOpts = append(schedOpts, scheduler.WithSeed(*cfg.Seed))
	}

	res, err := scheduler.NewScheduler(grid, team, schedOpts...).Run()
	if err != nil {
		return "", err
	}

	outPath := filepath.Join(opts.outDir, roster.PlanningFile(cfg.Year, month))
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := render.JSON(f, render.Mapping(res.Grid)); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	logger.Info("planning written", zap.String("path", outPath), zap.Int("repairs", res.Repairs))

	switch opts.format {
	case "json":
		err = render.JSON(stdout, render.Mapping(res.Grid))
	case "csv":
		err = render.CSV(stdout, res.Grid)
	case "table":
		_, err = fmt.Fprintln(stdout, render.Table(res.Grid))
	case "none", "":
	default:
		err = fmt.Errorf("unknown format %q", opts.format)
	}
	return outPath, err
}
