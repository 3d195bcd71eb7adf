package anim

import "fmt"

// Interp selects how a curve fills the frames between keys.
type Interp uint8

const (
	// InterpNone holds each key's value until the next key (step).
	InterpNone Interp = iota
	// InterpLinear blends linearly between neighbouring keys.
	InterpLinear
	// InterpSpline uses cubic Hermite segments with per-key tangents.
	InterpSpline
)

func (i Interp) String() string {
	switch i {
	case InterpNone:
		return "none"
	case InterpLinear:
		return "linear"
	case InterpSpline:
		return "spline"
	default:
		return "unknown"
	}
}

// ParseInterp is the inverse of Interp.String. "step" and "hermite" are
// accepted as aliases.
func ParseInterp(s string) (Interp, error) {
	switch s {
	case "none", "step", "":
		return InterpNone, nil
	case "linear":
		return InterpLinear, nil
	case "spline", "hermite":
		return InterpSpline, nil
	}
	return 0, fmt.Errorf("anim: unknown interpolation %q", s)
}

// Key is one keyframe of a scalar curve. Tangent is the slope in value per
// frame and is only read by spline interpolation.
type Key struct {
	Frame   float32
	Value   float32
	Tangent float32
}

// Curve is a keyframed scalar channel. Keys must be sorted by frame.
type Curve struct {
	Keys []Key
}

// Const returns a single-key curve holding v.
func Const(v float32) *Curve {
	return &Curve{Keys: []Key{{Value: v}}}
}

// Eval samples the curve. Frames before the first key or after the last key
// take that key's value; there is no extrapolation.
func (c *Curve) Eval(frame float32, mode Interp) float32 {
	keys := c.Keys
	switch {
	case len(keys) == 0:
		return 0
	case frame <= keys[0].Frame:
		return keys[0].Value
	case frame >= keys[len(keys)-1].Frame:
		return keys[len(keys)-1].Value
	}

	// keys[next] is the first key strictly after frame
	next := 1
	for keys[next].Frame <= frame {
		next++
	}
	k0, k1 := keys[next-1], keys[next]
	span := k1.Frame - k0.Frame
	t := (frame - k0.Frame) / span

	switch mode {
	case InterpNone:
		return k0.Value
	case InterpSpline:
		return hermite(k0.Value, k0.Tangent*span, k1.Value, k1.Tangent*span, t)
	default:
		return k0.Value + t*(k1.Value-k0.Value)
	}
}

func hermite(p0, m0, p1, m1, t float32) float32 {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*p0 + h10*m0 + h01*p1 + h11*m1
}

// clampFrame drops negative frames to 0. Frames past the end are left alone:
// a track may key frames at or past its FrameCount, and every lookup holds
// its own last key.
func clampFrame(frame int) float32 {
	return float32(max(frame, 0))
}
