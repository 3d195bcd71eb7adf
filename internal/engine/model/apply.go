package model

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/posekit/internal/engine/anim"
)

// ResetToBind unbinds every track, drops every pose edit and publishes the
// bind pose. Bind-pose edits are part of the bind state and stay, and so
// does the view rotation: with Options.ApplyBillboards, billboard bones keep
// facing the view and their vertices are not at bind positions.
func (m *Model) ResetToBind() {
	m.slots = [anim.KindCount]slot{}
	m.edits = make(map[int]poseEdit)
	// With no slots bound there is nothing that can fail to resolve.
	_ = m.refresh()
}

// ApplyBoneTrack binds a bone track at frame. A nil track unbinds the slot.
func (m *Model) ApplyBoneTrack(t *anim.BoneTrack, frame int) error {
	if t == nil {
		return m.bind(anim.KindBone, nil, frame)
	}
	return m.bind(anim.KindBone, t, frame)
}

// ApplySRTTrack binds a texture SRT track at frame. A nil track unbinds the slot.
func (m *Model) ApplySRTTrack(t *anim.TexSRTTrack, frame int) error {
	if t == nil {
		return m.bind(anim.KindTexSRT, nil, frame)
	}
	return m.bind(anim.KindTexSRT, t, frame)
}

// ApplyShapeTrack binds a shape track at frame. A nil track unbinds the slot.
func (m *Model) ApplyShapeTrack(t *anim.ShapeTrack, frame int) error {
	if t == nil {
		return m.bind(anim.KindShape, nil, frame)
	}
	return m.bind(anim.KindShape, t, frame)
}

// ApplyPatternTrack binds a pattern track at frame. A nil track unbinds the slot.
func (m *Model) ApplyPatternTrack(t *anim.PatternTrack, frame int) error {
	if t == nil {
		return m.bind(anim.KindPattern, nil, frame)
	}
	return m.bind(anim.KindPattern, t, frame)
}

// ApplyVisibilityTrack binds a visibility track at frame. A nil track unbinds the slot.
func (m *Model) ApplyVisibilityTrack(t *anim.VisibilityTrack, frame int) error {
	if t == nil {
		return m.bind(anim.KindVisibility, nil, frame)
	}
	return m.bind(anim.KindVisibility, t, frame)
}

// ApplyColorTrack binds a color track at frame. A nil track unbinds the slot.
func (m *Model) ApplyColorTrack(t *anim.ColorTrack, frame int) error {
	if t == nil {
		return m.bind(anim.KindColor, nil, frame)
	}
	return m.bind(anim.KindColor, t, frame)
}

// Apply binds any track kind at frame.
func (m *Model) Apply(t anim.Track, frame int) error {
	switch t := t.(type) {
	case *anim.BoneTrack:
		return m.ApplyBoneTrack(t, frame)
	case *anim.TexSRTTrack:
		return m.ApplySRTTrack(t, frame)
	case *anim.ShapeTrack:
		return m.ApplyShapeTrack(t, frame)
	case *anim.VisibilityTrack:
		return m.ApplyVisibilityTrack(t, frame)
	case *anim.ColorTrack:
		return m.ApplyColorTrack(t, frame)
	case *anim.PatternTrack:
		return m.ApplyPatternTrack(t, frame)
	default:
		return fmt.Errorf("model %q: unsupported track %T", m.name, t)
	}
}

// Unbind clears one slot.
func (m *Model) Unbind(kind anim.Kind) error {
	return m.bind(kind, nil, 0)
}

// Bound returns the track and frame bound to a slot.
func (m *Model) Bound(kind anim.Kind) (anim.Track, int, bool) {
	s := m.slots[kind]
	return s.track, s.frame, s.track != nil
}

// SetFrame moves every bound slot to frame and re-resolves once.
func (m *Model) SetFrame(frame int) error {
	prev := m.slots
	for k := range m.slots {
		if m.slots[k].track != nil {
			m.slots[k].frame = frame
		}
	}
	if err := m.refresh(); err != nil {
		m.slots = prev
		return err
	}
	return nil
}

func (m *Model) bind(kind anim.Kind, t anim.Track, frame int) error {
	prev := m.slots[kind]
	m.slots[kind] = slot{track: t, frame: frame}
	if err := m.refresh(); err != nil {
		m.slots[kind] = prev
		return fmt.Errorf("model %q: apply %s track: %w", m.name, kind, err)
	}
	if t != nil {
		m.log.Debug("track applied",
			zap.Stringer("kind", kind),
			zap.String("track", t.TrackName()),
			zap.Int("frame", frame))
	}
	return nil
}
