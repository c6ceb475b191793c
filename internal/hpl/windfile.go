package hpl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lidarops/hplcorrect/internal/lidar"
)

// MissingWind is the sentinel written for gates with no determinate wind
// vector in a processed profile.
const MissingWind = -999.0

// WriteWind serializes a recombined wind profile into the processed layout:
// a gate-count line followed by one "range direction speed" row per gate.
func WriteWind(sol *lidar.WindSolution) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(sol.Gates))
	for _, g := range sol.Gates {
		if g.Invalid {
			fmt.Fprintf(&b, "%.3f %.3f %.3f\n", g.Range, MissingWind, MissingWind)
			continue
		}
		fmt.Fprintf(&b, "%.3f %.3f %.3f\n", g.Range, g.Direction, g.Speed)
	}
	return []byte(b.String())
}

// ParseWind decodes a processed wind-profile file. Rows carrying the missing
// sentinel are normalized to Invalid gates.
func ParseWind(data []byte) (*lidar.WindSolution, error) {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, lidar.Formatf(1, "empty wind profile")
	}
	declared, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || declared <= 0 {
		return nil, lidar.Formatf(1, "bad gate count %q", lines[0])
	}

	sol := &lidar.WindSolution{}
	for i, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, lidar.Formatf(i+2, "wind row has %d fields, want 3", len(fields))
		}
		vals := make([]float64, 3)
		for j, f := range fields {
			if vals[j], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, lidar.Formatf(i+2, "bad wind value %q", f)
			}
		}
		gate := lidar.WindGate{Range: vals[0], Direction: vals[1], Speed: vals[2], Beams: 0}
		if vals[1] == MissingWind || vals[2] == MissingWind {
			gate = lidar.WindGate{Range: vals[0], Invalid: true}
		}
		sol.Gates = append(sol.Gates, gate)
	}
	return sol, nil
}
