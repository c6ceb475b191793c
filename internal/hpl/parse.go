// Package hpl decodes and re-encodes the instrument's structured text format:
// raw ray files (header block, then per-beam ray records) and the processed
// wind-profile layout. Parsing is pure: no I/O beyond the supplied bytes.
package hpl

import (
	"strconv"
	"strings"

	"github.com/lidarops/hplcorrect/internal/lidar"
)

const (
	headerTerminator = "****"
	rayHeaderFields  = 5
	gateLineFields   = 4

	// MissingVelocity is the instrument sentinel for a gate with no usable
	// Doppler estimate. Intensity at or below zero marks the same condition.
	MissingVelocity = -999.0
)

// Parse decodes a raw instrument file into its header and ray sequence.
// Rays whose gate-line count does not match the header are skipped with a
// TruncatedRayWarning; structural corruption yields a *lidar.FormatError.
func Parse(data []byte) (*lidar.Header, []lidar.Ray, []lidar.Warning, error) {
	lines := strings.Split(string(data), "\n")

	hdr, bodyStart, err := parseHeader(lines)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		rays     []lidar.Ray
		warnings []lidar.Warning
		pending  *lidar.Ray
		gates    []lidar.GateSample
		rayIdx   int
	)

	flush := func() {
		if pending == nil {
			return
		}
		if len(gates) == hdr.Gates {
			pending.Samples = gates
			rays = append(rays, *pending)
		} else {
			warnings = append(warnings, lidar.TruncatedRayWarning{Ray: rayIdx, Gates: len(gates), Want: hdr.Gates})
		}
		rayIdx++
		pending = nil
	}

	for _, line := range lines[bodyStart:] {
		fields := strings.Fields(line)
		switch len(fields) {
		case rayHeaderFields:
			ray, ok := parseRayHeader(fields)
			if !ok {
				continue
			}
			flush()
			pending = &ray
			gates = make([]lidar.GateSample, 0, hdr.Gates)
		case gateLineFields:
			if pending == nil {
				continue
			}
			sample, ok := parseGateLine(fields)
			if !ok {
				continue
			}
			gates = append(gates, sample)
		default:
			// blank or malformed lines are ignored, as the instrument
			// occasionally pads files with stray whitespace
		}
	}
	flush()

	if rayIdx > 0 && len(rays) == 0 {
		return nil, nil, nil, lidar.Formatf(0, "no ray satisfies the declared gate count %d", hdr.Gates)
	}

	return hdr, rays, warnings, nil
}

// parseHeader consumes "Key:\tvalue" lines up to the **** terminator and
// returns the decoded header plus the index of the first body line. The raw
// lines are retained verbatim so serialization can reproduce them.
func parseHeader(lines []string) (*lidar.Header, int, error) {
	hdr := &lidar.Header{}
	var raw []string
	gatesLine := -1
	sawGates, sawGateLen, sawScan := false, false, false

	for i, line := range lines {
		raw = append(raw, line)
		trimmed := strings.TrimSpace(line)

		if trimmed == headerTerminator {
			if !sawGates {
				return nil, 0, lidar.Formatf(i+1, "header missing 'Number of gates:'")
			}
			if !sawGateLen {
				return nil, 0, lidar.Formatf(i+1, "header missing 'Range gate length (m):'")
			}
			if !sawScan {
				return nil, 0, lidar.Formatf(i+1, "header missing 'Scan type:'")
			}
			hdr.SetRawHeader(raw, gatesLine)
			return hdr, i + 1, nil
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "Number of gates":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return nil, 0, lidar.Formatf(i+1, "bad gate count %q", value)
			}
			hdr.Gates = n
			gatesLine = i
			sawGates = true
		case "Range gate length (m)":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil || v <= 0 {
				return nil, 0, lidar.Formatf(i+1, "bad range gate length %q", value)
			}
			hdr.GateLength = v
			sawGateLen = true
		case "Scan type":
			mode, err := parseScanMode(value)
			if err != nil {
				return nil, 0, lidar.Formatf(i+1, "unknown scan type %q", value)
			}
			hdr.ScanMode = mode
			sawScan = true
		case "No. of rays in file":
			hdr.RaysInFile, _ = strconv.Atoi(value)
		case "System ID":
			hdr.SystemID = value
		case "Wavelength (nm)":
			hdr.WavelengthNM, _ = strconv.ParseFloat(value, 64)
		case "Pulses/ray":
			hdr.PulsesPerRay, _ = strconv.Atoi(value)
		case "Resolution (m/s)":
			hdr.Resolution, _ = strconv.ParseFloat(value, 64)
		case "Start time":
			hdr.StartTime = value
		}
	}

	return nil, 0, lidar.Formatf(len(lines), "header terminator %q not found", headerTerminator)
}

func parseScanMode(s string) (lidar.ScanMode, error) {
	switch strings.ToLower(s) {
	case "vad", "wind profile":
		return lidar.ScanVAD, nil
	case "stare":
		return lidar.ScanStare, nil
	}
	return "", lidar.Formatf(0, "scan type %q", s)
}

func parseRayHeader(fields []string) (lidar.Ray, bool) {
	vals := make([]float64, rayHeaderFields)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return lidar.Ray{}, false
		}
		vals[i] = v
	}
	return lidar.Ray{
		TimeHours: vals[0],
		Azimuth:   lidar.NormalizeAzimuth(vals[1]),
		Elevation: vals[2],
		Pitch:     vals[3],
		Roll:      vals[4],
	}, true
}

// parseGateLine decodes "index doppler intensity beta". The gate index is
// implicit in sequence position, so the leading field is only validated, not
// kept. Instrument sentinels are normalized to the Invalid state here so no
// downstream component ever sees a raw missing-data marker.
func parseGateLine(fields []string) (lidar.GateSample, bool) {
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return lidar.GateSample{}, false
	}
	velocity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return lidar.GateSample{}, false
	}
	intensity, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return lidar.GateSample{}, false
	}
	beta, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return lidar.GateSample{}, false
	}

	if velocity == MissingVelocity || intensity <= 0 {
		return lidar.InvalidSample(), true
	}
	return lidar.GateSample{Intensity: intensity, Velocity: velocity, Beta: beta}, true
}
