package wind

import (
	"math"
	"testing"

	"github.com/lidarops/hplcorrect/internal/lidar"
)

// sweepForWind builds a synthetic sweep whose radial velocities correspond
// exactly to a true horizontal wind (u, v) at the given elevation.
func sweepForWind(u, v, elevation float64, azimuths []float64, gates int) []lidar.Ray {
	cosEl := math.Cos(elevation * math.Pi / 180)
	rays := make([]lidar.Ray, 0, len(azimuths))
	for i, az := range azimuths {
		rad := az * math.Pi / 180
		vr := u*math.Sin(rad)*cosEl + v*math.Cos(rad)*cosEl
		ray := lidar.Ray{
			TimeHours: 11.0 + float64(i)*0.001,
			Azimuth:   az,
			Elevation: elevation,
			Samples:   make([]lidar.GateSample, gates),
		}
		for g := range ray.Samples {
			ray.Samples[g] = lidar.GateSample{Intensity: 1.05, Velocity: vr, Beta: 1e-6}
		}
		rays = append(rays, ray)
	}
	return rays
}

func windHeader(gates int) *lidar.Header {
	return &lidar.Header{ScanMode: lidar.ScanVAD, Gates: gates, GateLength: 30}
}

func TestRecombineFourBeamSweep(t *testing.T) {
	const u, v = 2.0, 3.0
	hdr := windHeader(3)
	sweep := sweepForWind(u, v, 0, []float64{0, 90, 180, 270}, hdr.Gates)

	sol, warnings := Recombine(hdr, sweep, DefaultParams())

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %d", len(warnings))
	}
	wantSpeed := math.Sqrt(13)
	wantDir := math.Mod(math.Atan2(u, v)*180/math.Pi+180, 360)

	for g, gate := range sol.Gates {
		if gate.Invalid {
			t.Fatalf("gate %d unexpectedly invalid", g)
		}
		if math.Abs(gate.Speed-wantSpeed) > 1e-6 {
			t.Errorf("gate %d: expected speed %.9f, got %.9f", g, wantSpeed, gate.Speed)
		}
		if math.Abs(gate.Direction-wantDir) > 1e-6 {
			t.Errorf("gate %d: expected direction %.9f, got %.9f", g, wantDir, gate.Direction)
		}
		if gate.Beams != 4 {
			t.Errorf("gate %d: expected 4 contributing beams, got %d", g, gate.Beams)
		}
		if want := (float64(g) + 0.5) * hdr.GateLength; gate.Range != want {
			t.Errorf("gate %d: expected range %.1f, got %.1f", g, want, gate.Range)
		}
	}
}

func TestRecombineElevatedSweep(t *testing.T) {
	// 70 degrees elevation: the cos(el) projection must cancel out of the fit
	const u, v = -4.0, 1.5
	hdr := windHeader(1)
	sweep := sweepForWind(u, v, 70, []float64{0, 60, 120, 180, 240, 300}, hdr.Gates)

	sol, _ := Recombine(hdr, sweep, DefaultParams())

	gate := sol.Gates[0]
	if gate.Invalid {
		t.Fatal("gate unexpectedly invalid")
	}
	if math.Abs(gate.Speed-math.Hypot(u, v)) > 1e-6 {
		t.Errorf("expected speed %.9f, got %.9f", math.Hypot(u, v), gate.Speed)
	}
}

func TestRecombineTwoBeamsUnderdetermined(t *testing.T) {
	hdr := windHeader(1)
	sweep := sweepForWind(2, 3, 0, []float64{0, 90}, hdr.Gates)

	sol, warnings := Recombine(hdr, sweep, DefaultParams())

	if !sol.Gates[0].Invalid {
		t.Fatal("two-beam gate must be invalid, not fabricated")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	w, ok := warnings[0].(lidar.UnderdeterminedGateWarning)
	if !ok {
		t.Fatalf("expected UnderdeterminedGateWarning, got %T", warnings[0])
	}
	if w.Beams != 2 {
		t.Errorf("expected 2 beams in warning, got %d", w.Beams)
	}
}

func TestRecombineCollinearAzimuths(t *testing.T) {
	// beams confined to the north-south line: three distinct azimuths but no
	// second dimension to solve in
	hdr := windHeader(1)
	sweep := sweepForWind(2, 3, 0, []float64{0, 180, 0.0000005}, hdr.Gates)
	sweep[2].Azimuth = 360 - 0.0000005 // still on the line, distinct value

	sol, warnings := Recombine(hdr, sweep, DefaultParams())

	if !sol.Gates[0].Invalid {
		t.Fatal("collinear sweep must yield an invalid gate")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
}

func TestRecombineSkipsInvalidGates(t *testing.T) {
	hdr := windHeader(2)
	sweep := sweepForWind(2, 3, 0, []float64{0, 90, 180, 270}, hdr.Gates)
	// knock gate 1 below the beam minimum
	sweep[0].Samples[1] = lidar.InvalidSample()
	sweep[1].Samples[1] = lidar.InvalidSample()

	sol, _ := Recombine(hdr, sweep, DefaultParams())

	if sol.Gates[0].Invalid {
		t.Error("gate 0 should still solve from all four beams")
	}
	if !sol.Gates[1].Invalid {
		t.Error("gate 1 with two valid beams must be invalid")
	}
}

func TestCompassConvention(t *testing.T) {
	tests := []struct {
		name string
		u, v float64
		want float64
	}{
		{"southerly (wind from south)", 0, 1, 180},
		{"northerly", 0, -1, 0},
		{"westerly", 1, 0, 270},
		{"easterly", -1, 0, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compassFrom(tt.u, tt.v)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %.1f, got %.9f", tt.want, got)
			}
		})
	}
}

func TestAzimuthSpread(t *testing.T) {
	tests := []struct {
		name     string
		azimuths []float64
		minimum  float64
		pass     bool
	}{
		{"full rotation", []float64{0, 90, 180, 270}, 20, true},
		{"quadrant arc", []float64{0, 30, 60, 90}, 20, true},
		{"single line", []float64{10, 190, 10, 190}, 20, false},
		{"tight cluster", []float64{44, 45, 46}, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := azimuthSpread(tt.azimuths)
			if (got >= tt.minimum) != tt.pass {
				t.Errorf("spread %.3f, minimum %.1f: expected pass=%v", got, tt.minimum, tt.pass)
			}
		})
	}
}

func TestSweeps(t *testing.T) {
	rays := []lidar.Ray{
		{Elevation: 75, Azimuth: 0},
		{Elevation: 75, Azimuth: 90},
		{Elevation: 75, Azimuth: 180},
		{Elevation: 90, Azimuth: 0},
		{Elevation: 90, Azimuth: 0},
	}
	groups := Sweeps(rays)
	if len(groups) != 2 {
		t.Fatalf("expected 2 sweep groups, got %d", len(groups))
	}
	if len(groups[0]) != 3 || len(groups[1]) != 2 {
		t.Errorf("expected group sizes 3 and 2, got %d and %d", len(groups[0]), len(groups[1]))
	}
}
