// Package drift implements the drift-classification governor.
//
// Classification is a pure, stateless function of the raw drift score and
// three bounds. It never fails: non-numeric input is a caller-boundary
// concern and never reaches this package.
package drift

import "math"

// Default bounds, each independently overridable per call.
const (
	DefaultClampBound = 0.05
	DefaultWarnBound  = 0.08
	DefaultStopBound  = 0.12
)

// Status is the lawfulness classification of a raw drift score.
type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusStop Status = "STOP"
)

// Thresholds holds the bounds a classification was computed against.
// Zero-value fields are replaced with defaults by Classify.
type Thresholds struct {
	// Clamp is the symmetric cap applied to the drift value. It also
	// defines lawfulness for aggregation: a session is lawful when the
	// magnitude of its average raw drift is within Clamp.
	Clamp float64 `json:"clamp"`

	// Warn is the magnitude at which classification becomes WARN.
	Warn float64 `json:"warn"`

	// Stop is the magnitude at which classification becomes STOP.
	Stop float64 `json:"stop"`
}

// withDefaults fills unset bounds. Explicit zero is indistinguishable from
// unset; a zero bound is not a meaningful configuration here since every
// magnitude would classify STOP.
func (t Thresholds) withDefaults() Thresholds {
	if t.Clamp == 0 {
		t.Clamp = DefaultClampBound
	}
	if t.Warn == 0 {
		t.Warn = DefaultWarnBound
	}
	if t.Stop == 0 {
		t.Stop = DefaultStopBound
	}
	return t
}

// Classification is the result of classifying one raw drift score.
type Classification struct {
	// Status is OK, WARN, or STOP.
	Status Status `json:"status"`

	// DriftIn echoes the raw input value.
	DriftIn float64 `json:"drift_in"`

	// DriftClamped is DriftIn clamped symmetrically to
	// [-Thresholds.Clamp, +Thresholds.Clamp].
	DriftClamped float64 `json:"drift_clamped"`

	// Thresholds are the effective bounds after defaulting.
	Thresholds Thresholds `json:"thresholds"`
}

// Classify clamps a raw drift score and classifies its lawfulness.
//
// The clamped value is max(min(in, clamp), -clamp). Classification uses
// the UNCLAMPED magnitude, not the clamped value, so a wildly out-of-range
// score still reads STOP even though its clamped form is in bounds.
// Boundary values belong to the stricter bucket: |in| exactly at the stop
// bound is STOP, not WARN.
func Classify(in float64, t Thresholds) Classification {
	t = t.withDefaults()

	clamped := math.Max(math.Min(in, t.Clamp), -t.Clamp)

	status := StatusOK
	switch mag := math.Abs(in); {
	case mag >= t.Stop:
		status = StatusStop
	case mag >= t.Warn:
		status = StatusWarn
	}

	return Classification{
		Status:       status,
		DriftIn:      in,
		DriftClamped: clamped,
		Thresholds:   t,
	}
}

// Lawful reports whether a drift magnitude is within the clamp bound.
// Used for per-session average drift in aggregation.
func Lawful(avg, clampBound float64) bool {
	if clampBound == 0 {
		clampBound = DefaultClampBound
	}
	return math.Abs(avg) <= clampBound
}

// Round4 rounds to 4 decimal places, the precision used everywhere an
// average drift is reported or archived.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
