package lidar

import "fmt"

// FormatError is fatal for the file it describes: the header is unreadable or
// the ray structure is inconsistent with it. The caller decides whether to
// skip the file or abort the batch.
type FormatError struct {
	Line int // 1-based line number, 0 when not tied to a line
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("format error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("format error: %s", e.Msg)
}

// Formatf builds a FormatError tied to a line number.
func Formatf(line int, format string, args ...interface{}) *FormatError {
	return &FormatError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Warning is a recoverable, recorded condition. Processing continues at the
// ray or gate granularity; the caller logs or reports the accumulated list.
type Warning interface {
	Warning() string
}

// TruncatedRayWarning records a ray whose gate-line count did not match the
// header. The ray is dropped, not left short.
type TruncatedRayWarning struct {
	Ray   int // 0-based index within the file, in acquisition order
	Gates int // gate lines actually present
	Want  int // header gate count
}

func (w TruncatedRayWarning) Warning() string {
	return fmt.Sprintf("ray %d truncated: %d gate lines, expected %d; ray skipped", w.Ray, w.Gates, w.Want)
}

// MissingBackgroundWarning records a ray with no background entry within the
// matching tolerance. The ray passes through uncorrected.
type MissingBackgroundWarning struct {
	Ray       int
	TimeHours float64
}

func (w MissingBackgroundWarning) Warning() string {
	return fmt.Sprintf("ray %d at %.6f h: no background entry within tolerance; ray left uncorrected", w.Ray, w.TimeHours)
}

// UnderdeterminedGateWarning records a gate whose wind solve had too few
// beams or too little azimuth spread for a determinate 2-D vector.
type UnderdeterminedGateWarning struct {
	Gate  int
	Beams int
}

func (w UnderdeterminedGateWarning) Warning() string {
	return fmt.Sprintf("gate %d: wind solve underdetermined with %d usable beams", w.Gate, w.Beams)
}
