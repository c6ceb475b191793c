// Package downsample reduces oversized instrument files to a standard gate
// count by block averaging, preserving the instrument's own layout so
// downstream tooling keeps working. High-gate-count files come from a
// firmware configuration that records 3000 gates where 201 were intended.
package downsample

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lidarops/hplcorrect/internal/background"
	"github.com/lidarops/hplcorrect/internal/lidar"
)

// Params controls when and how far gate series are reduced.
type Params struct {
	// MaxGates is the largest gate count left untouched; files at or below
	// it pass through unchanged.
	MaxGates int

	// TruncateGates cuts each ray to this many gates before averaging.
	TruncateGates int

	// TargetGates is the gate count after block averaging.
	TargetGates int
}

// DefaultParams mirrors the deployed reduction: 3000 recorded gates
// truncated and averaged down to 500.
func DefaultParams() Params {
	return Params{
		MaxGates:      201,
		TruncateGates: 3000,
		TargetGates:   500,
	}
}

// Factor is the block size each output gate averages over.
func (p Params) Factor() int {
	if p.TargetGates <= 0 {
		return 1
	}
	return p.TruncateGates / p.TargetGates
}

// Rays block-averages every ray's gate series down to the target count and
// returns the new rays; the header is updated to the reduced gate count and
// proportionally longer gates. Rays pass through unchanged when the file is
// already at or below MaxGates. Invalid gates contribute nothing to a block;
// a block with no valid gates stays Invalid.
func Rays(hdr *lidar.Header, rays []lidar.Ray, p Params) []lidar.Ray {
	if hdr.Gates <= p.MaxGates || p.Factor() < 1 {
		return rays
	}
	factor := p.Factor()
	blocks := min(hdr.Gates, p.TruncateGates) / factor

	out := make([]lidar.Ray, 0, len(rays))
	for _, ray := range rays {
		ds := ray
		ds.Samples = make([]lidar.GateSample, blocks)
		for b := 0; b < blocks; b++ {
			ds.Samples[b] = averageBlock(ray.Samples[b*factor : (b+1)*factor])
		}
		out = append(out, ds)
	}

	hdr.GateLength *= float64(factor)
	hdr.Gates = blocks
	return out
}

func averageBlock(block []lidar.GateSample) lidar.GateSample {
	var velocity, intensity, beta []float64
	for _, s := range block {
		if s.Invalid {
			continue
		}
		velocity = append(velocity, s.Velocity)
		intensity = append(intensity, s.Intensity)
		beta = append(beta, s.Beta)
	}
	if len(velocity) == 0 {
		return lidar.InvalidSample()
	}
	n := float64(len(velocity))
	return lidar.GateSample{
		Velocity:  floats.Sum(velocity) / n,
		Intensity: floats.Sum(intensity) / n,
		Beta:      floats.Sum(beta) / n,
	}
}

// Background block-averages the gate series of every background entry,
// matching the reduction applied to the ray files it will correct.
func Background(profile *background.Profile, p Params) *background.Profile {
	factor := p.Factor()
	if factor < 2 {
		return profile
	}
	entries := profile.Entries()
	out := make([]background.Entry, 0, len(entries))
	for _, e := range entries {
		if len(e.Counts) <= p.MaxGates {
			out = append(out, e)
			continue
		}
		counts := e.Counts
		if len(counts) > p.TruncateGates {
			counts = counts[:p.TruncateGates]
		}
		blocks := len(counts) / factor
		ds := background.Entry{TimeHours: e.TimeHours, Counts: make([]float64, blocks)}
		for b := 0; b < blocks; b++ {
			ds.Counts[b] = floats.Sum(counts[b*factor:(b+1)*factor]) / float64(factor)
		}
		out = append(out, ds)
	}
	return background.FromEntries(out)
}

// Wind block-averages a processed wind profile: ranges and speeds average
// arithmetically, directions by circular mean so profiles straddling north
// do not smear toward 180.
func Wind(sol *lidar.WindSolution, factor int) *lidar.WindSolution {
	if factor < 2 {
		return sol
	}
	blocks := len(sol.Gates) / factor
	out := &lidar.WindSolution{Elevation: sol.Elevation, Gates: make([]lidar.WindGate, 0, blocks)}
	for b := 0; b < blocks; b++ {
		block := sol.Gates[b*factor : (b+1)*factor]

		var ranges, speeds, dirs, weights []float64
		beams := 0
		for _, g := range block {
			ranges = append(ranges, g.Range)
			if g.Invalid {
				continue
			}
			speeds = append(speeds, g.Speed)
			dirs = append(dirs, g.Direction*math.Pi/180)
			weights = append(weights, 1)
			beams += g.Beams
		}

		gate := lidar.WindGate{Range: floats.Sum(ranges) / float64(len(ranges)), Invalid: true}
		if len(speeds) > 0 {
			gate.Invalid = false
			gate.Speed = floats.Sum(speeds) / float64(len(speeds))
			gate.Direction = lidar.NormalizeAzimuth(stat.CircularMean(dirs, weights) * 180 / math.Pi)
			gate.Beams = beams
		}
		out.Gates = append(out.Gates, gate)
	}
	return out
}
