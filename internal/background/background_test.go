package background

import (
	"errors"
	"testing"

	"github.com/lidarops/hplcorrect/internal/lidar"
)

const sampleProfile = `10.000000 1.010 1.020 1.030
10.250000 1.011 1.021 1.031
10.500000 1.012 1.022 1.032
11.000000 1.013 1.023 1.033
`

func TestParseOrdering(t *testing.T) {
	p, err := Parse([]byte(sampleProfile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", p.Len())
	}
	if got := p.Entries()[2].Counts[1]; got != 1.022 {
		t.Errorf("entry 2 gate 1: expected 1.022, got %v", got)
	}
}

func TestParseRejectsUnsortedRows(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"decreasing", "10.5 1.0 1.1\n10.0 1.0 1.1\n"},
		{"duplicate time", "10.5 1.0 1.1\n10.5 1.0 1.1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			var fe *lidar.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
		})
	}
}

func TestParseRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"timestamp only", "10.5\n"},
		{"bad timestamp", "noon 1.0\n"},
		{"bad count", "10.5 one\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLookup(t *testing.T) {
	p, err := Parse([]byte(sampleProfile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		timeHours float64
		tolerance float64 // seconds
		wantTime  float64
		wantOK    bool
	}{
		{"exact hit", 10.25, 60, 10.25, true},
		{"nearest preceding", 10.4, 3600, 10.25, true},
		{"preceding outside tolerance", 10.4, 60, 0, false},
		{"before first entry", 9.9, 3600, 0, false},
		{"after last entry within tolerance", 11.1, 3600, 11.0, true},
		{"boundary exactly at tolerance", 10.75, 900, 10.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := p.Lookup(tt.timeHours, tt.tolerance)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && e.TimeHours != tt.wantTime {
				t.Errorf("expected entry at %.6f, got %.6f", tt.wantTime, e.TimeHours)
			}
		})
	}
}

func TestLookupEmptyProfile(t *testing.T) {
	p := FromEntries(nil)
	if _, ok := p.Lookup(10, 3600); ok {
		t.Fatal("expected no entry from empty profile")
	}
}
