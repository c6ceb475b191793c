// Package lidar defines the in-memory representation of Halo-style Doppler
// wind lidar data: file headers, per-beam rays, range-gate samples, and the
// horizontal wind solutions recombined from VAD sweeps.
package lidar

import "math"

// ScanMode identifies the instrument scan pattern recorded in a file.
type ScanMode string

const (
	// ScanVAD is a velocity-azimuth-display scan: fixed elevation, sweeping azimuth.
	ScanVAD ScanMode = "VAD"
	// ScanStare is a fixed-pointing scan used for vertical profiling.
	ScanStare ScanMode = "Stare"
)

// Header holds the per-file metadata block. Gate count and gate length are
// constant for the lifetime of one file.
type Header struct {
	ScanMode     ScanMode
	Gates        int     // number of range gates per ray
	GateLength   float64 // meters
	RaysInFile   int     // declared ray count; actual count may differ
	SystemID     string
	WavelengthNM float64 // laser wavelength, nanometers
	PulsesPerRay int
	Resolution   float64 // velocity resolution, m/s
	StartTime    string  // verbatim "YYYYMMDD HH:MM:SS.ss" from the file
	rawLines     []string
	gatesLineIdx int
}

// RawHeaderLines returns the verbatim header lines (terminator included) so a
// writer can reproduce the original header byte-for-byte.
func (h *Header) RawHeaderLines() []string { return h.rawLines }

// SetRawHeader stores the verbatim header lines and the index of the
// "Number of gates:" line within them.
func (h *Header) SetRawHeader(lines []string, gatesLine int) {
	h.rawLines = lines
	h.gatesLineIdx = gatesLine
}

// GatesLineIndex reports which raw header line carries the gate count.
func (h *Header) GatesLineIndex() int { return h.gatesLineIdx }

// GateRange returns the range to the center of gate i in meters.
func (h *Header) GateRange(i int) float64 {
	return (float64(i) + 0.5) * h.GateLength
}

// SystemConstant derives the fixed lidar constant used in the backscatter
// relation beta = C * snr * range^2 from the header's laser parameters.
func (h *Header) SystemConstant() float64 {
	const (
		planck     = 6.62607015e-34
		lightSpeed = 2.99792458e8
	)
	wavelength := h.WavelengthNM * 1e-9
	pulses := float64(h.PulsesPerRay)
	if wavelength <= 0 || pulses <= 0 {
		return 0
	}
	photonEnergy := planck * lightSpeed / wavelength
	return photonEnergy / pulses
}

// GateSample is one range-gate measurement within a ray. Invalid samples carry
// no numeric content and contribute nothing downstream.
type GateSample struct {
	Intensity float64 // SNR + 1, as recorded by the instrument
	Velocity  float64 // radial Doppler velocity, m/s
	Beta      float64 // backscatter coefficient, m^-1 sr^-1
	Invalid   bool
}

// InvalidSample returns the no-contribution sentinel sample.
func InvalidSample() GateSample { return GateSample{Invalid: true} }

// Ray is a single beam acquisition: pointing angles plus a fixed-length gate
// sequence (len(Samples) always equals the header gate count).
type Ray struct {
	TimeHours float64 // decimal hours since midnight UTC
	Azimuth   float64 // degrees, normalized to [0, 360)
	Elevation float64 // degrees above horizontal
	Pitch     float64
	Roll      float64
	Samples   []GateSample
}

// Clone returns a deep copy of the ray so correction can produce a new ray
// without touching its input.
func (r Ray) Clone() Ray {
	out := r
	out.Samples = make([]GateSample, len(r.Samples))
	copy(out.Samples, r.Samples)
	return out
}

// TimeSeconds returns the ray timestamp as seconds since midnight.
func (r Ray) TimeSeconds() float64 { return r.TimeHours * 3600 }

// NormalizeAzimuth maps an angle in degrees onto [0, 360).
func NormalizeAzimuth(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// WindGate is the recombined horizontal wind at one range gate.
type WindGate struct {
	Range     float64 // meters to gate center
	Speed     float64 // m/s
	Direction float64 // meteorological degrees, direction wind blows FROM
	Beams     int     // number of beams that contributed
	Invalid   bool
}

// WindSolution is the per-gate horizontal wind profile recombined from one
// VAD sweep. It is immutable after construction: build it once, then read.
type WindSolution struct {
	Elevation float64
	Gates     []WindGate
}

// ValidGates counts the gates with a determinate wind vector.
func (w *WindSolution) ValidGates() int {
	n := 0
	for _, g := range w.Gates {
		if !g.Invalid {
			n++
		}
	}
	return n
}
