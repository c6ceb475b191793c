// Package background decodes instrument background-noise files into a
// time-ordered per-gate noise series and answers nearest-preceding lookups
// for ray timestamps.
package background

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lidarops/hplcorrect/internal/lidar"
)

// Entry is one background acquisition: a timestamp and the per-gate noise
// counts recorded at it. The gate count reflects the deployment that produced
// the file and may differ from a given raw file's gate count; only the
// overlapping prefix is usable for correction.
type Entry struct {
	TimeHours float64
	Counts    []float64
}

// Profile is an ordered-by-time sequence of background entries.
type Profile struct {
	entries []Entry
}

// FromEntries wraps an already time-ordered entry slice in a Profile. The
// caller is responsible for ordering; lookups assume it.
func FromEntries(entries []Entry) *Profile {
	return &Profile{entries: entries}
}

// Entries exposes the ordered entry slice, oldest first.
func (p *Profile) Entries() []Entry { return p.entries }

// Len reports the number of entries in the profile.
func (p *Profile) Len() int { return len(p.entries) }

// Parse decodes a background file: one row per acquisition, a decimal-hours
// timestamp followed by per-gate noise counts. Background files are dumped in
// append order, so rows must already be sorted by time; the parser verifies
// rather than re-sorts, to surface upstream collection bugs.
func Parse(data []byte) (*Profile, error) {
	var entries []Entry
	for i, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, lidar.Formatf(i+1, "background row needs a timestamp and at least one gate count")
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, lidar.Formatf(i+1, "bad background timestamp %q", fields[0])
		}
		counts := make([]float64, len(fields)-1)
		for j, f := range fields[1:] {
			if counts[j], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, lidar.Formatf(i+1, "bad background count %q", f)
			}
		}
		if n := len(entries); n > 0 && t <= entries[n-1].TimeHours {
			return nil, lidar.Formatf(i+1, "background rows not in increasing time order (%.6f after %.6f)", t, entries[n-1].TimeHours)
		}
		entries = append(entries, Entry{TimeHours: t, Counts: counts})
	}
	return &Profile{entries: entries}, nil
}

// Lookup returns the latest entry at or before the given ray timestamp,
// provided it lies within toleranceSeconds of it. Binary search keeps
// per-ray matching cheap for files with many rays.
func (p *Profile) Lookup(timeHours, toleranceSeconds float64) (*Entry, bool) {
	if p == nil || len(p.entries) == 0 {
		return nil, false
	}
	// first entry strictly after the timestamp
	i := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].TimeHours > timeHours
	})
	if i == 0 {
		return nil, false
	}
	e := &p.entries[i-1]
	if (timeHours-e.TimeHours)*3600 > toleranceSeconds {
		return nil, false
	}
	return e, true
}
