package harness

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Plan is the on-disk form of a harness configuration. Plans are small
// YAML documents checked into a deployment repo:
//
//	user_id: phil
//	thread_id: continuity_diary
//	session_id: continuity
//	limit: 20
//	clamp_bound: 0.05
//	interval_hours: 12
//	repeat: true
//
// Every field is optional; omitted fields take the stock defaults.
type Plan struct {
	// UserID is the identity whose sessions are validated.
	UserID string `yaml:"user_id,omitempty"`

	// ThreadID and SessionID select the continuity window.
	ThreadID  string `yaml:"thread_id,omitempty"`
	SessionID string `yaml:"session_id,omitempty"`

	// Limit caps the synthesis window size.
	Limit int `yaml:"limit,omitempty"`

	// ClampBound is the lawfulness bound on per-session average drift.
	ClampBound float64 `yaml:"clamp_bound,omitempty"`

	// IntervalHours is the sleep between cycles, in hours. Fractions are
	// allowed.
	IntervalHours float64 `yaml:"interval_hours,omitempty"`

	// Repeat keeps the loop running until stopped.
	Repeat bool `yaml:"repeat,omitempty"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}

	return &p, nil
}

func (p *Plan) validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", p.Limit)
	}
	if p.ClampBound < 0 {
		return fmt.Errorf("clamp_bound must not be negative, got %v", p.ClampBound)
	}
	if p.IntervalHours < 0 {
		return fmt.Errorf("interval_hours must not be negative, got %v", p.IntervalHours)
	}
	return nil
}

// Config converts the plan into a harness Config, leaving zero values for
// Config's own defaulting to fill.
func (p *Plan) Config() Config {
	return Config{
		UserID:     p.UserID,
		ThreadID:   p.ThreadID,
		SessionID:  p.SessionID,
		Limit:      p.Limit,
		ClampBound: p.ClampBound,
		Interval:   time.Duration(p.IntervalHours * float64(time.Hour)),
		Repeat:     p.Repeat,
	}
}
