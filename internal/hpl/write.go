package hpl

import (
	"fmt"
	"strings"

	"github.com/lidarops/hplcorrect/internal/lidar"
)

// Write serializes a header and ray sequence back into the instrument's
// column layout. The header block is reproduced verbatim from the parsed
// lines, so a parse/write round trip with no correction applied is
// byte-identical. Invalid gates are emitted with the instrument's own
// missing-data sentinel, keeping corrected files format-compatible with
// uncorrected ones.
func Write(hdr *lidar.Header, rays []lidar.Ray) []byte {
	var b strings.Builder

	for _, line := range hdr.RawHeaderLines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, ray := range rays {
		writeRay(&b, ray)
	}
	return []byte(b.String())
}

func writeRay(b *strings.Builder, ray lidar.Ray) {
	fmt.Fprintf(b, "%9.6f %6.2f %6.2f %6.2f %6.2f\n",
		ray.TimeHours, ray.Azimuth, ray.Elevation, ray.Pitch, ray.Roll)
	for i, s := range ray.Samples {
		if s.Invalid {
			fmt.Fprintf(b, "  %3d %7.4f %9.6f %13.6E\n", i, MissingVelocity, 0.0, 0.0)
			continue
		}
		fmt.Fprintf(b, "  %3d %7.4f %9.6f %13.6E\n", i, s.Velocity, s.Intensity, s.Beta)
	}
}

// WriteGatesHeader rewrites the "Number of gates:" line of a retained raw
// header, used after gate downsampling changes the per-ray gate count.
func WriteGatesHeader(hdr *lidar.Header, gates int) {
	raw := hdr.RawHeaderLines()
	idx := hdr.GatesLineIndex()
	if idx < 0 || idx >= len(raw) {
		return
	}
	raw[idx] = fmt.Sprintf("Number of gates:\t%d", gates)
	hdr.Gates = gates
}
