package session

import "github.com/copylaradio/go-vitrine/pkg/protocol"

// ThemeMode computes the effective light/dark display mode from hand
// presence plus the server-supplied decay timer. TimeUntilDark is stored
// verbatim for display and only changes when a new frame arrives — no
// local extrapolation, so the client can never drift from the sensing
// service's clock.
type ThemeMode struct {
	light         bool
	timeUntilDark float64

	// onChange fires once per effective-mode flip (ambient banner toggle,
	// delegated to the view layer).
	onChange func(light bool)
}

// NewThemeMode creates the controller in dark mode.
func NewThemeMode(onChange func(light bool)) *ThemeMode {
	return &ThemeMode{onChange: onChange}
}

// Light returns the effective mode.
func (t *ThemeMode) Light() bool { return t.light }

// TimeUntilDark returns the last server-supplied decay value in seconds.
func (t *ThemeMode) TimeUntilDark() float64 { return t.timeUntilDark }

// Observe recomputes the effective mode from a frame. A detected hand
// forces light mode on the same frame; otherwise the server hint applies
// while its decay timer is positive; otherwise dark. Returns true when
// the mode flipped.
func (t *ThemeMode) Observe(frame protocol.GestureFrame) bool {
	t.timeUntilDark = frame.TimeUntilDark

	var light bool
	switch {
	case frame.HandDetected:
		light = true
	case frame.TimeUntilDark > 0:
		light = frame.LightModeHint
	default:
		light = false
	}

	if light == t.light {
		return false
	}
	t.light = light
	if t.onChange != nil {
		t.onChange(light)
	}
	return true
}
