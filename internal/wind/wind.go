// Package wind recombines corrected VAD sweeps into horizontal wind
// profiles. The radial velocity seen along azimuth theta at elevation eps is
//
//	v_r = u*sin(theta)*cos(eps) + v*cos(theta)*cos(eps) + w*sin(eps)
//
// and with the standard VAD simplification of negligible vertical motion the
// per-gate (u, v) pair is the least-squares solution of a 2x2 normal-equation
// system over the sweep's azimuths.
package wind

import (
	"math"

	"github.com/lidarops/hplcorrect/internal/lidar"
)

// Params holds the recombination guards.
type Params struct {
	// MinBeams is the smallest number of valid beams at distinct azimuths
	// that still determines a 2-D wind vector.
	MinBeams int

	// MinAzimuthSpreadDeg rejects near-collinear azimuth sets before the
	// normal-equation solve, which would otherwise go near-singular and
	// produce large spurious speeds.
	MinAzimuthSpreadDeg float64
}

// DefaultParams returns the solve guards used for routine VAD sweeps.
func DefaultParams() Params {
	return Params{
		MinBeams:            3,
		MinAzimuthSpreadDeg: 20,
	}
}

// Recombine solves the horizontal wind at every gate of one VAD sweep. Rays
// must share an elevation. Gates with too few contributing beams or too
// little azimuth spread are Invalid in the solution, recorded with an
// UnderdeterminedGateWarning; this is degradation, never an error.
func Recombine(hdr *lidar.Header, sweep []lidar.Ray, p Params) (*lidar.WindSolution, []lidar.Warning) {
	sol := &lidar.WindSolution{Gates: make([]lidar.WindGate, hdr.Gates)}
	if len(sweep) > 0 {
		sol.Elevation = sweep[0].Elevation
	}
	var warnings []lidar.Warning

	for g := 0; g < hdr.Gates; g++ {
		gate := lidar.WindGate{Range: hdr.GateRange(g), Invalid: true}

		var azimuths, velocities []float64
		for _, ray := range sweep {
			if g >= len(ray.Samples) || ray.Samples[g].Invalid {
				continue
			}
			azimuths = append(azimuths, ray.Azimuth)
			velocities = append(velocities, ray.Samples[g].Velocity)
		}

		beams := distinctAzimuths(azimuths)
		if beams < p.MinBeams || azimuthSpread(azimuths) < p.MinAzimuthSpreadDeg {
			warnings = append(warnings, lidar.UnderdeterminedGateWarning{Gate: g, Beams: beams})
			sol.Gates[g] = gate
			continue
		}

		u, v, ok := solveUV(azimuths, velocities, sol.Elevation)
		if !ok {
			warnings = append(warnings, lidar.UnderdeterminedGateWarning{Gate: g, Beams: beams})
			sol.Gates[g] = gate
			continue
		}

		gate.Invalid = false
		gate.Beams = len(azimuths)
		gate.Speed = math.Hypot(u, v)
		gate.Direction = compassFrom(u, v)
		sol.Gates[g] = gate
	}
	return sol, warnings
}

// solveUV fits v_r_i = u*x_i + v*y_i with x = sin(az)cos(el), y = cos(az)cos(el)
// by the closed-form normal equations.
func solveUV(azimuths, velocities []float64, elevationDeg float64) (u, v float64, ok bool) {
	cosEl := math.Cos(elevationDeg * math.Pi / 180)
	var sxx, sxy, syy, sxr, syr float64
	for i, az := range azimuths {
		rad := az * math.Pi / 180
		x := math.Sin(rad) * cosEl
		y := math.Cos(rad) * cosEl
		sxx += x * x
		sxy += x * y
		syy += y * y
		sxr += x * velocities[i]
		syr += y * velocities[i]
	}
	det := sxx*syy - sxy*sxy
	if math.Abs(det) < 1e-12 {
		return 0, 0, false
	}
	u = (syy*sxr - sxy*syr) / det
	v = (sxx*syr - sxy*sxr) / det
	return u, v, true
}

// compassFrom converts a horizontal (u, v) wind vector into the
// meteorological bearing: degrees clockwise from north, denoting where the
// wind is coming from.
func compassFrom(u, v float64) float64 {
	toward := math.Atan2(u, v) * 180 / math.Pi
	return lidar.NormalizeAzimuth(toward + 180)
}

func distinctAzimuths(azimuths []float64) int {
	const eps = 1e-6
	n := 0
	for i, a := range azimuths {
		dup := false
		for _, b := range azimuths[:i] {
			if math.Abs(a-b) < eps {
				dup = true
				break
			}
		}
		if !dup {
			n++
		}
	}
	return n
}

// azimuthSpread measures how far the beam azimuths are from lying on a
// single line through the origin. Azimuths theta and theta+180 probe the
// same horizontal line, so the spread is the circular standard deviation of
// the doubled angles, halved back into azimuth degrees.
func azimuthSpread(azimuths []float64) float64 {
	if len(azimuths) == 0 {
		return 0
	}
	var s, c float64
	for _, az := range azimuths {
		rad := 2 * az * math.Pi / 180
		s += math.Sin(rad)
		c += math.Cos(rad)
	}
	n := float64(len(azimuths))
	r := math.Hypot(s/n, c/n)
	if r >= 1 {
		return 0
	}
	if r < 1e-12 {
		return 180
	}
	return math.Sqrt(-2*math.Log(r)) / 2 * 180 / math.Pi
}

// Sweeps splits a corrected VAD file's rays into elevation-consistent sweep
// groups, in acquisition order. Stare files yield a single group.
func Sweeps(rays []lidar.Ray) [][]lidar.Ray {
	const elevationTol = 0.1
	var groups [][]lidar.Ray
	for _, ray := range rays {
		n := len(groups)
		if n == 0 || math.Abs(groups[n-1][0].Elevation-ray.Elevation) > elevationTol {
			groups = append(groups, []lidar.Ray{ray})
			continue
		}
		groups[n-1] = append(groups[n-1], ray)
	}
	return groups
}
