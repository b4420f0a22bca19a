// Package replay drives the swipe deck from a YAML script of synthetic
// pointer drags and button presses, on a manual clock.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultDragSamples = 5

type Script struct {
	// AutoSettle advances the clock by the settle delay after each step
	// that dismisses a card. Defaults to true.
	AutoSettle *bool  `yaml:"auto_settle"`
	Steps      []Step `yaml:"steps"`
}

// Step holds exactly one action.
type Step struct {
	Drag    *Drag         `yaml:"drag"`
	Like    *struct{}     `yaml:"like"`
	Pass    *struct{}     `yaml:"pass"`
	Refresh *struct{}     `yaml:"refresh"`
	Wait    time.Duration `yaml:"wait"`
}

// Drag is a horizontal pointer drag from From to To px over Duration.
type Drag struct {
	From     float64       `yaml:"from"`
	To       float64       `yaml:"to"`
	Duration time.Duration `yaml:"duration"`
	Samples  int           `yaml:"samples"`
	Touch    bool          `yaml:"touch"`
}

func (s Step) kind() string {
	var kinds []string
	if s.Drag != nil {
		kinds = append(kinds, "drag")
	}
	if s.Like != nil {
		kinds = append(kinds, "like")
	}
	if s.Pass != nil {
		kinds = append(kinds, "pass")
	}
	if s.Refresh != nil {
		kinds = append(kinds, "refresh")
	}
	if s.Wait > 0 {
		kinds = append(kinds, "wait")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

func (s Script) autoSettle() bool { return s.AutoSettle == nil || *s.AutoSettle }

func Parse(r io.Reader) (Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, errors.New("replay: empty script")
		}
		return Script{}, fmt.Errorf("replay: parse: %w", err)
	}
	return s, s.validate()
}

func Load(path string) (Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("replay: read %s: %w", path, err)
	}
	return Parse(bytes.NewReader(b))
}

func (s Script) validate() error {
	var errs []error
	for i, st := range s.Steps {
		if st.kind() == "" {
			errs = append(errs, fmt.Errorf("step %d: exactly one of drag, like, pass, refresh, wait is required", i+1))
			continue
		}
		if st.Drag != nil && st.Drag.Duration < 0 {
			errs = append(errs, fmt.Errorf("step %d: negative drag duration", i+1))
		}
		if st.Wait < 0 {
			errs = append(errs, fmt.Errorf("step %d: negative wait", i+1))
		}
	}
	return errors.Join(errs...)
}
