// Package diagnostics decides whether the analyzer's error stream reports a
// real failure or only informational chatter.
package diagnostics

import (
	"strings"
)

// DefaultNoiseMarker identifies the forecasting backend's informational log
// lines, which it writes to stderr on every successful fit.
const DefaultNoiseMarker = "cmdstanpy - INFO"

// Verdict is the outcome of classifying one error stream.
type Verdict struct {
	Failed bool
	// Lines are the remaining evidence lines in their original order.
	Lines []string
	// Message is Lines joined with newlines; empty when not Failed.
	Message string
	// Suppressed counts lines dropped because they matched a marker.
	Suppressed int
}

type Classifier struct {
	markers []string
}

// New builds a classifier for the given markers, falling back to
// DefaultNoiseMarker when none are usable.
func New(markers ...string) Classifier {
	kept := make([]string, 0, len(markers))
	for _, m := range markers {
		if strings.TrimSpace(m) == "" {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		kept = append(kept, DefaultNoiseMarker)
	}
	return Classifier{markers: kept}
}

func (c Classifier) Markers() []string {
	return append([]string(nil), c.markers...)
}

// Classify inspects stderr only. Any line that is neither blank nor benign is
// evidence of failure, whatever the process exit status was.
func (c Classifier) Classify(stderr string) Verdict {
	markers := c.markers
	if len(markers) == 0 {
		markers = []string{DefaultNoiseMarker}
	}

	var v Verdict
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if containsAny(line, markers) {
			v.Suppressed++
			continue
		}
		v.Lines = append(v.Lines, line)
	}
	if len(v.Lines) > 0 {
		v.Failed = true
		v.Message = strings.Join(v.Lines, "\n")
	}
	return v
}

func containsAny(line string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}
