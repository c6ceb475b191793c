// Package correct applies background-noise subtraction to raw lidar rays,
// reclassifying per-gate signal quality and recomputing the backscatter
// coefficient. Correction never touches the Doppler velocity itself.
package correct

import (
	"github.com/lidarops/hplcorrect/internal/background"
	"github.com/lidarops/hplcorrect/internal/lidar"
)

// Params holds the operational correction thresholds. The deployed values
// were tuned per site, so they are explicit configuration rather than
// constants.
type Params struct {
	// SNRThreshold is the minimum background-relative signal ratio for a
	// gate to stay valid after correction.
	SNRThreshold float64

	// ToleranceSeconds bounds how stale a background entry may be relative
	// to the ray it corrects.
	ToleranceSeconds float64
}

// DefaultParams returns the thresholds used for the system 18 deployment.
func DefaultParams() Params {
	return Params{
		SNRThreshold:     0.005,
		ToleranceSeconds: 900,
	}
}

// Ray corrects a single ray against the given background entry and returns a
// new ray; the input is never modified. A nil entry (no background within
// tolerance) passes the ray through untouched. For each gate the background
// supplies:
//
//	signalRatio = (intensity - bg) / bg
//
// Gates whose ratio falls below the validity threshold go Invalid, as do
// gates with a non-positive noise floor (meaningless denominator). Valid
// gates keep their raw intensity and velocity and get their backscatter
// recomputed from the ratio and range, so re-applying the same correction is
// a no-op.
func Ray(hdr *lidar.Header, ray lidar.Ray, entry *background.Entry, p Params) lidar.Ray {
	out := ray.Clone()
	if entry == nil {
		return out
	}

	c := hdr.SystemConstant()
	for i := range out.Samples {
		if out.Samples[i].Invalid {
			continue
		}
		if i >= len(entry.Counts) {
			// entry from a deployment with fewer gates; no noise floor
			// known past the overlapping prefix
			out.Samples[i] = lidar.InvalidSample()
			continue
		}
		bg := entry.Counts[i]
		if bg <= 0 {
			out.Samples[i] = lidar.InvalidSample()
			continue
		}
		ratio := (out.Samples[i].Intensity - bg) / bg
		if ratio < p.SNRThreshold {
			out.Samples[i] = lidar.InvalidSample()
			continue
		}
		r := hdr.GateRange(i)
		out.Samples[i].Beta = c * ratio * r * r
	}
	return out
}

// Rays corrects every ray in a file against a background profile, matching
// each ray to its nearest-preceding background entry within tolerance. Rays
// with no usable entry pass through uncorrected and are recorded with a
// MissingBackgroundWarning.
func Rays(hdr *lidar.Header, rays []lidar.Ray, profile *background.Profile, p Params) ([]lidar.Ray, []lidar.Warning) {
	out := make([]lidar.Ray, 0, len(rays))
	var warnings []lidar.Warning
	for i, ray := range rays {
		var entry *background.Entry
		if profile != nil {
			if e, ok := profile.Lookup(ray.TimeHours, p.ToleranceSeconds); ok {
				entry = e
			}
		}
		if entry == nil {
			warnings = append(warnings, lidar.MissingBackgroundWarning{Ray: i, TimeHours: ray.TimeHours})
		}
		out = append(out, Ray(hdr, ray, entry, p))
	}
	return out, warnings
}
