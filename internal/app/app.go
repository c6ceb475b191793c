// Package app drives a batch correction run: it discovers instrument files
// under the source tree, pairs each with its background file, fans the pairs
// out to a bounded worker pool, and persists each corrected file atomically.
// All the numeric work happens in the pure pipeline package; this package
// owns every side effect.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lidarops/hplcorrect/internal/catalog"
	"github.com/lidarops/hplcorrect/internal/correct"
	"github.com/lidarops/hplcorrect/internal/downsample"
	"github.com/lidarops/hplcorrect/internal/pipeline"
	"github.com/lidarops/hplcorrect/internal/wind"
	"github.com/lidarops/hplcorrect/pkg/config"
)

// Mode selects which correction pipeline a run applies.
type Mode string

const (
	// ModeRaw corrects raw VAD and Stare files in place of their layout.
	ModeRaw Mode = "raw"
	// ModeWind re-derives processed wind profiles from raw VAD files.
	ModeWind Mode = "wind"
)

// App represents one configured batch run.
type App struct {
	cfg    *config.Data
	mode   Mode
	logger *zap.SugaredLogger
	opts   pipeline.Options
}

// New creates a new application instance
func New(cfg *config.Data, mode Mode, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		mode:   mode,
		logger: logger,
		opts: pipeline.Options{
			Correction: correct.Params{
				SNRThreshold:     cfg.Correction.SNRThreshold,
				ToleranceSeconds: cfg.Correction.BackgroundToleranceSeconds,
			},
			Wind: wind.Params{
				MinBeams:            cfg.Correction.MinBeams,
				MinAzimuthSpreadDeg: cfg.Correction.MinAzimuthSpreadDegrees,
			},
			Downsample: downsample.Params{
				MaxGates:      cfg.Downsample.MaxGates,
				TruncateGates: cfg.Downsample.TruncateGates,
				TargetGates:   cfg.Downsample.TargetGates,
			},
			DownsampleEnabled: cfg.Downsample.Enabled,
		},
	}
}

// Run discovers and corrects every matching file under the source root,
// mirroring outputs under the destination root. It returns an error only on
// setup or traversal failure; per-file format errors are recorded and
// logged, and the batch continues.
func (a *App) Run(ctx context.Context) error {
	prefixes := []string{"Wind_", "Stare_"}
	if a.mode == ModeWind {
		prefixes = []string{"Wind_"}
	}

	jobs, err := discover(a.cfg.Source, prefixes)
	if err != nil {
		return fmt.Errorf("discovering files under %s: %w", a.cfg.Source, err)
	}
	a.logger.Infof("found %d files under %s", len(jobs), a.cfg.Source)

	var ledger *catalog.Catalog
	if a.cfg.Catalog != "" {
		ledger, err = catalog.Open(a.cfg.Catalog)
		if err != nil {
			return err
		}
		defer ledger.Close()
		a.logger.Infof("catalog %s, run %s", a.cfg.Catalog, ledger.RunID())
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			a.processFile(j, ledger)
			return nil
		})
	}
	return g.Wait()
}

// processFile runs one (raw, background) pair through the pipeline. Failures
// are per-file: they are logged and recorded, never propagated, so one
// corrupt file cannot sink the batch.
func (a *App) processFile(j job, ledger *catalog.Catalog) {
	if ledger != nil {
		done, err := ledger.AlreadyCorrected(j.source)
		if err != nil {
			a.logger.Warnf("catalog lookup for %s: %v", j.source, err)
		} else if done {
			a.logger.Debugf("skipping already corrected %s", j.source)
			return
		}
	}

	result, outPath, err := a.correctOne(j)
	if err != nil {
		a.logger.Errorf("rejected %s: %v", j.source, err)
		a.record(ledger, catalog.Record{Source: j.source, Status: catalog.StatusRejected, Detail: err.Error()})
		return
	}

	for _, w := range result.Warnings {
		a.logger.Warnf("%s: %s", j.source, w.Warning())
	}
	a.logger.Infof("corrected %s -> %s (%d warnings)", j.source, outPath, len(result.Warnings))
	a.record(ledger, catalog.Record{
		Source:   j.source,
		Output:   outPath,
		Status:   catalog.StatusCorrected,
		Warnings: len(result.Warnings),
	})
}

func (a *App) correctOne(j job) (*pipeline.Result, string, error) {
	rawData, err := os.ReadFile(j.source)
	if err != nil {
		return nil, "", err
	}
	var backgroundData []byte
	if j.background != "" {
		if backgroundData, err = os.ReadFile(j.background); err != nil {
			return nil, "", err
		}
	}

	var result *pipeline.Result
	switch a.mode {
	case ModeWind:
		result, err = pipeline.RederiveWind(rawData, backgroundData, a.opts)
	default:
		result, err = pipeline.CorrectRaw(rawData, backgroundData, a.opts)
	}
	if err != nil {
		return nil, "", err
	}

	outPath, err := a.outputPath(j.source)
	if err != nil {
		return nil, "", err
	}
	if err := writeAtomic(outPath, result.Output); err != nil {
		return nil, "", err
	}
	return result, outPath, nil
}

// outputPath mirrors the source file's position under the destination root.
// Wind-rederivation outputs get the processed-file prefix.
func (a *App) outputPath(source string) (string, error) {
	rel, err := filepath.Rel(a.cfg.Source, source)
	if err != nil {
		return "", err
	}
	if a.mode == ModeWind {
		dir, base := filepath.Dir(rel), filepath.Base(rel)
		base = "Processed_" + strings.TrimSuffix(base, ".hpl") + ".hpl"
		rel = filepath.Join(dir, base)
	}
	return filepath.Join(a.cfg.Destination, rel), nil
}

// writeAtomic persists content via a temp file and rename so a corrected
// file is either fully present or absent, never partial.
func writeAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (a *App) record(ledger *catalog.Catalog, rec catalog.Record) {
	if ledger == nil {
		return
	}
	if err := ledger.Add(rec); err != nil {
		a.logger.Warnf("catalog record for %s: %v", rec.Source, err)
	}
}
