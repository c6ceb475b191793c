package downsample

import (
	"math"
	"testing"

	"github.com/lidarops/hplcorrect/internal/background"
	"github.com/lidarops/hplcorrect/internal/lidar"
)

func TestRaysBlockAveraging(t *testing.T) {
	hdr := &lidar.Header{Gates: 6, GateLength: 3}
	p := Params{MaxGates: 4, TruncateGates: 6, TargetGates: 3}

	ray := lidar.Ray{Samples: []lidar.GateSample{
		{Velocity: 1, Intensity: 1.1, Beta: 1e-6},
		{Velocity: 3, Intensity: 1.3, Beta: 3e-6},
		{Velocity: 5, Intensity: 1.5, Beta: 5e-6},
		lidar.InvalidSample(),
		lidar.InvalidSample(),
		lidar.InvalidSample(),
	}}

	out := Rays(hdr, []lidar.Ray{ray}, p)

	if hdr.Gates != 3 {
		t.Fatalf("expected header reduced to 3 gates, got %d", hdr.Gates)
	}
	if hdr.GateLength != 6 {
		t.Errorf("expected gate length scaled to 6, got %v", hdr.GateLength)
	}
	samples := out[0].Samples
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if math.Abs(samples[0].Velocity-2) > 1e-12 {
		t.Errorf("block 0: expected mean velocity 2, got %v", samples[0].Velocity)
	}
	// block 1 averages one valid and one invalid gate: only the valid one counts
	if samples[1].Invalid || math.Abs(samples[1].Velocity-5) > 1e-12 {
		t.Errorf("block 1: expected velocity 5 from the single valid gate, got %+v", samples[1])
	}
	if !samples[2].Invalid {
		t.Error("block 2 has no valid gates and must stay invalid")
	}
}

func TestRaysPassThroughSmallFiles(t *testing.T) {
	hdr := &lidar.Header{Gates: 201, GateLength: 30}
	ray := lidar.Ray{Samples: make([]lidar.GateSample, 201)}

	out := Rays(hdr, []lidar.Ray{ray}, DefaultParams())

	if hdr.Gates != 201 || len(out[0].Samples) != 201 {
		t.Fatal("files at or below MaxGates must pass through unchanged")
	}
}

func TestBackground(t *testing.T) {
	p := Params{MaxGates: 2, TruncateGates: 6, TargetGates: 3}
	profile := background.FromEntries([]background.Entry{
		{TimeHours: 10, Counts: []float64{1, 2, 3, 4, 5, 6}},
	})

	out := Background(profile, p)

	counts := out.Entries()[0].Counts
	want := []float64{1.5, 3.5, 5.5}
	if len(counts) != len(want) {
		t.Fatalf("expected %d counts, got %d", len(want), len(counts))
	}
	for i := range want {
		if math.Abs(counts[i]-want[i]) > 1e-12 {
			t.Errorf("count %d: expected %v, got %v", i, want[i], counts[i])
		}
	}
}

func TestWindCircularMeanAcrossNorth(t *testing.T) {
	sol := &lidar.WindSolution{Gates: []lidar.WindGate{
		{Range: 15, Speed: 10, Direction: 350, Beams: 4},
		{Range: 45, Speed: 12, Direction: 10, Beams: 4},
	}}

	out := Wind(sol, 2)

	if len(out.Gates) != 1 {
		t.Fatalf("expected 1 gate, got %d", len(out.Gates))
	}
	g := out.Gates[0]
	if g.Invalid {
		t.Fatal("gate unexpectedly invalid")
	}
	// arithmetic mean would smear 350 and 10 to 180; circular mean keeps north
	diff := math.Mod(g.Direction+180, 360) - 180
	if math.Abs(diff) > 1e-9 {
		t.Errorf("expected direction 0 across north, got %v", g.Direction)
	}
	if math.Abs(g.Speed-11) > 1e-12 {
		t.Errorf("expected mean speed 11, got %v", g.Speed)
	}
	if math.Abs(g.Range-30) > 1e-12 {
		t.Errorf("expected mean range 30, got %v", g.Range)
	}
}

func TestWindInvalidBlocks(t *testing.T) {
	sol := &lidar.WindSolution{Gates: []lidar.WindGate{
		{Range: 15, Invalid: true},
		{Range: 45, Invalid: true},
		{Range: 75, Speed: 5, Direction: 90, Beams: 3},
		{Range: 105, Invalid: true},
	}}

	out := Wind(sol, 2)

	if !out.Gates[0].Invalid {
		t.Error("block of invalid gates must stay invalid")
	}
	if out.Gates[1].Invalid || out.Gates[1].Speed != 5 {
		t.Errorf("block with one valid gate should keep it: %+v", out.Gates[1])
	}
}
