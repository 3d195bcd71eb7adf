package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/posekit/internal/engine/anim"
	"github.com/Faultbox/posekit/pkg/math"
)

// State is a resolved pose: bind state plus every bound track and pose edit.
// A State is never modified after it is published.
type State struct {
	Frame     FrameContext
	Bones     []math.Mat4
	Vertices  []Vertex
	Visible   []bool
	Overrides []MaterialOverride
	Bounds    Bounds
}

// evaluate resolves the whole pose from bind state. It resets the hierarchy
// first, so the result depends only on bind data, bound slots and edits,
// never on what was evaluated before.
func (m *Model) evaluate() (*State, error) {
	var (
		pose    anim.BonePose
		srt     anim.SRTDelta
		shape   anim.ShapeDelta
		vis     anim.VisibilityDelta
		color   anim.ColorDelta
		pattern anim.PatternDelta
		err     error
	)

	// Resolve every slot before touching the hierarchy.
	for _, s := range m.slots {
		if s.track == nil {
			continue
		}
		switch t := s.track.(type) {
		case *anim.BoneTrack:
			pose, err = anim.ResolveBone(m, t, s.frame)
		case *anim.TexSRTTrack:
			srt, err = anim.ResolveTexSRT(m, t, s.frame)
		case *anim.ShapeTrack:
			shape, err = anim.ResolveShape(m, t, s.frame)
		case *anim.VisibilityTrack:
			vis, err = anim.ResolveVisibility(m, t, s.frame)
		case *anim.ColorTrack:
			color, err = anim.ResolveColor(m, t, s.frame)
		case *anim.PatternTrack:
			pattern, err = anim.ResolvePattern(m, t, s.frame)
		}
		if err != nil {
			return nil, err
		}
	}

	var view *math.Quat
	if m.opts.ApplyBillboards {
		view = m.view
	}

	m.h.ResetToBind()
	for _, l := range pose.Locals {
		m.h.SetAnimatedLocal(l.Bone, l.Local)
	}
	hasBoneOnly := false
	for bone, e := range m.edits {
		if e.boneOnly {
			hasBoneOnly = true
			continue
		}
		m.h.SetAnimatedLocal(bone, e.local)
	}
	m.h.RecomputeWorldTransforms(view)

	// Bone-only edits move bones after the mesh has been skinned.
	palette := m.skin.Palette(m.h)
	if hasBoneOnly {
		for bone, e := range m.edits {
			if e.boneOnly {
				m.h.SetAnimatedLocal(bone, e.local)
			}
		}
		m.h.RecomputeWorldTransforms(view)
	}

	st := &State{
		Frame:     m.frameContext(),
		Bones:     m.h.Worlds(),
		Vertices:  make([]Vertex, len(m.vertices)),
		Visible:   make([]bool, len(m.objects)),
		Overrides: make([]MaterialOverride, len(m.materials)),
	}

	for v := range m.vertices {
		bv := &m.vertices[v]
		pos := bv.Position
		if off, ok := shape.Offsets[v]; ok {
			pos = [3]float32{pos[0] + off[0], pos[1] + off[1], pos[2] + off[2]}
		}
		c := bv.Color
		if bv.ColorGroup != NoColorGroup {
			if gc, ok := color.Groups[bv.ColorGroup]; ok {
				c = gc
			}
		}
		st.Vertices[v] = Vertex{
			Position: m.skin.WeightedPosition(v, pos, palette),
			Normal:   m.skin.WeightedNormal(v, bv.Normal, palette),
			TexCoord: bv.TexCoord,
			Color:    c,
		}
	}
	st.Bounds = computeBounds(st.Vertices)

	for i, o := range m.objects {
		st.Visible[i] = o.Visible
		if on, ok := vis.Objects[i]; ok {
			st.Visible[i] = on
		}
	}

	for i, mat := range m.materials {
		st.Overrides[i] = MaterialOverride{Material: i, Texture: mat.Texture, TexMatrix: mgl32.Ident3()}
	}
	for _, ms := range srt.Materials {
		o := &st.Overrides[ms.Material]
		o.HasSRT = true
		o.SRT = ms.SRT
		o.TexMatrix = ms.Matrix
	}
	for mat, tex := range pattern.Textures {
		o := &st.Overrides[mat]
		o.HasPattern = true
		o.Texture = tex
	}

	return st, nil
}

func (m *Model) frameContext() FrameContext {
	s := m.slots[anim.KindBone]
	if s.track == nil {
		return FrameContext{}
	}
	return FrameContext{Track: s.track.TrackName(), Frame: s.frame, Bound: true}
}

// Resolve returns the current resolved pose.
func (m *Model) Resolve() *State {
	return m.state.Load()
}

// ResolvedVertexBuffer returns the current deformed vertices. The slice is
// shared with the published state and must be treated as read-only.
func (m *Model) ResolvedVertexBuffer() []Vertex {
	return m.state.Load().Vertices
}

// BoneWorldTransforms returns the current bone world matrices, indexed by
// bone. The slice must be treated as read-only.
func (m *Model) BoneWorldTransforms() []math.Mat4 {
	return m.state.Load().Bones
}

// Visibility reports whether an object is currently drawn. Unknown objects
// are invisible.
func (m *Model) Visibility(objectID int) bool {
	st := m.state.Load()
	if objectID < 0 || objectID >= len(st.Visible) {
		return false
	}
	return st.Visible[objectID]
}

// MaterialOverride returns what the bound texture tracks do to a material.
// ok is false for unknown materials and for materials no track touches.
func (m *Model) MaterialOverride(materialID int) (o MaterialOverride, ok bool) {
	st := m.state.Load()
	if materialID < 0 || materialID >= len(st.Overrides) {
		return MaterialOverride{}, false
	}
	o = st.Overrides[materialID]
	return o, o.HasSRT || o.HasPattern
}
