package app

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// job is one raw file queued for correction, paired with the background file
// resolved for it (empty when none matched).
type job struct {
	source     string
	background string
	when       time.Time
}

var (
	rawStampRe        = regexp.MustCompile(`(\d{8})_(\d{2})(\d{2})?(\d{2})?`)
	backgroundStampRe = regexp.MustCompile(`Background_(\d{2})(\d{2})(\d{2})-(\d{6})`)
)

// discover walks the source tree collecting raw files matching the prefixes
// and resolves each one's background file by the filename timestamp
// convention: the latest background acquired at or before the raw file, no
// older than a day.
func discover(root string, prefixes []string) ([]job, error) {
	var jobs []job
	type bgFile struct {
		path string
		when time.Time
	}
	var backgrounds []bgFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := d.Name()
		if strings.HasPrefix(base, "Background_") && strings.HasSuffix(base, ".txt") {
			if t, ok := backgroundStamp(base); ok {
				backgrounds = append(backgrounds, bgFile{path: path, when: t})
			}
			return nil
		}
		if !strings.HasSuffix(base, ".hpl") {
			return nil
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(base, prefix) {
				t, _ := rawStamp(base)
				jobs = append(jobs, job{source: path, when: t})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(backgrounds, func(i, j int) bool { return backgrounds[i].when.Before(backgrounds[j].when) })
	for i := range jobs {
		var best string
		for _, bg := range backgrounds {
			if bg.when.After(jobs[i].when) {
				break
			}
			if jobs[i].when.Sub(bg.when) <= 24*time.Hour {
				best = bg.path
			}
		}
		jobs[i].background = best
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].source < jobs[j].source })
	return jobs, nil
}

// rawStamp extracts the acquisition time from a raw filename such as
// Wind_Profile_18_20250701_110000.hpl or the hourly Stare_18_20250701_11.hpl.
func rawStamp(base string) (time.Time, bool) {
	m := rawStampRe.FindStringSubmatch(base)
	if m == nil {
		return time.Time{}, false
	}
	stamp := m[1] + m[2]
	layout := "2006010215"
	if m[3] != "" {
		stamp += m[3]
		layout = "200601021504"
	}
	if m[4] != "" {
		stamp += m[4]
		layout = "20060102150405"
	}
	t, err := time.Parse(layout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// backgroundStamp extracts the acquisition time from a background filename
// such as Background_010725-110000.txt (ddmmyy-HHMMSS).
func backgroundStamp(base string) (time.Time, bool) {
	m := backgroundStampRe.FindStringSubmatch(base)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("020106-150405", m[1]+m[2]+m[3]+"-"+m[4])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
