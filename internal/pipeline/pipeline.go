// Package pipeline composes the parse, correct, recombine, and serialize
// stages into the two file-level corrections the tool performs. Every
// function here is a pure transform over already-loaded file content: the
// caller owns all I/O, and each input yields either an error and no output
// or a complete output plus its warning trail, never a silent partial file.
package pipeline

import (
	"github.com/lidarops/hplcorrect/internal/background"
	"github.com/lidarops/hplcorrect/internal/correct"
	"github.com/lidarops/hplcorrect/internal/downsample"
	"github.com/lidarops/hplcorrect/internal/hpl"
	"github.com/lidarops/hplcorrect/internal/lidar"
	"github.com/lidarops/hplcorrect/internal/wind"
)

// Options carries every tunable of the correction pipelines, threaded in
// explicitly from configuration.
type Options struct {
	Correction correct.Params
	Wind       wind.Params
	Downsample downsample.Params

	// DownsampleEnabled turns on gate reduction for oversized files.
	DownsampleEnabled bool
}

// DefaultOptions returns the deployed defaults for every stage.
func DefaultOptions() Options {
	return Options{
		Correction:        correct.DefaultParams(),
		Wind:              wind.DefaultParams(),
		Downsample:        downsample.DefaultParams(),
		DownsampleEnabled: true,
	}
}

// Result is one file's corrected content plus the recoverable conditions
// encountered while producing it.
type Result struct {
	Output   []byte
	Warnings []lidar.Warning
}

// CorrectRaw runs the raw-file pipeline (VAD and Stare alike): decode,
// optionally reduce the gate count of rays and background alike,
// background-correct each ray, re-encode.
// backgroundData may be nil when no background file matched; every ray is
// then passed through and flagged.
func CorrectRaw(rawData, backgroundData []byte, opts Options) (*Result, error) {
	hdr, rays, warnings, err := hpl.Parse(rawData)
	if err != nil {
		return nil, err
	}

	profile, err := parseBackground(backgroundData)
	if err != nil {
		return nil, err
	}

	// Gate reduction must hit rays and background together, before the
	// correction pairs them up gate by gate: correcting full-resolution
	// rays against an already-shortened noise series would misalign every
	// range bin.
	if opts.DownsampleEnabled {
		origGates := hdr.Gates
		rays = downsample.Rays(hdr, rays, opts.Downsample)
		if profile != nil {
			profile = downsample.Background(profile, opts.Downsample)
		}
		if hdr.Gates != origGates {
			hpl.WriteGatesHeader(hdr, hdr.Gates)
		}
	}

	corrected, correctionWarnings := correct.Rays(hdr, rays, profile, opts.Correction)
	warnings = append(warnings, correctionWarnings...)

	return &Result{Output: hpl.Write(hdr, corrected), Warnings: warnings}, nil
}

// RederiveWind runs the processed-VAD pipeline: decode a raw VAD file,
// background-correct the per-beam radial velocities, recombine each sweep
// into a horizontal wind profile, and encode the processed layout. The
// profile comes from the sweep with the most rays; shorter partial sweeps
// in the same file are ignored.
func RederiveWind(rawData, backgroundData []byte, opts Options) (*Result, error) {
	hdr, rays, warnings, err := hpl.Parse(rawData)
	if err != nil {
		return nil, err
	}
	if hdr.ScanMode != lidar.ScanVAD {
		return nil, lidar.Formatf(0, "wind rederivation needs a VAD file, got scan type %q", hdr.ScanMode)
	}

	profile, err := parseBackground(backgroundData)
	if err != nil {
		return nil, err
	}

	corrected, correctionWarnings := correct.Rays(hdr, rays, profile, opts.Correction)
	warnings = append(warnings, correctionWarnings...)

	sweep := largestSweep(corrected)
	sol, windWarnings := wind.Recombine(hdr, sweep, opts.Wind)
	warnings = append(warnings, windWarnings...)

	if opts.DownsampleEnabled && len(sol.Gates) > opts.Downsample.MaxGates {
		sol = downsample.Wind(sol, opts.Downsample.Factor())
	}

	return &Result{Output: hpl.WriteWind(sol), Warnings: warnings}, nil
}

func parseBackground(data []byte) (*background.Profile, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return background.Parse(data)
}

func largestSweep(rays []lidar.Ray) []lidar.Ray {
	var best []lidar.Ray
	for _, group := range wind.Sweeps(rays) {
		if len(group) > len(best) {
			best = group
		}
	}
	return best
}
