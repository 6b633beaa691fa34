// Package advisor turns equity, pot odds and hand-strength signals into
// ranked betting advice. The rules are fixed thresholds, so identical
// inputs always produce identical advice and reasoning.
package advisor

import "fmt"

// Action is a betting decision.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
)

var actionNames = [...]string{"fold", "check", "call", "raise"}

var actionColors = [...]string{"#dc2626", "#3b82f6", "#22c55e", "#f59e0b"}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Color is the hex colour used to render the action.
func (a Action) Color() string {
	if a >= 0 && int(a) < len(actionColors) {
		return actionColors[a]
	}
	return "#6b7280"
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	for i, name := range actionNames {
		if name == string(b) {
			*a = Action(i)
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", b)
}

// Confidence is an ordered tier. Raise and Lower saturate at the ends.
type Confidence int

const (
	Marginal Confidence = iota
	Moderate
	Strong
)

var confidenceNames = [...]string{"marginal", "moderate", "strong"}

func (c Confidence) String() string {
	if c >= 0 && int(c) < len(confidenceNames) {
		return confidenceNames[c]
	}
	return "unknown"
}

// Raise returns the next tier up, or Strong if already there.
func (c Confidence) Raise() Confidence {
	return min(c+1, Strong)
}

// Lower returns the next tier down, or Marginal if already there.
func (c Confidence) Lower() Confidence {
	return max(c-1, Marginal)
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Confidence) UnmarshalText(b []byte) error {
	for i, name := range confidenceNames {
		if name == string(b) {
			*c = Confidence(i)
			return nil
		}
	}
	return fmt.Errorf("unknown confidence %q", b)
}
