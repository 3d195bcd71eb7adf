package model

import (
	"fmt"

	"github.com/Faultbox/posekit/internal/engine/skeleton"
)

// FrameContext reports the bone animation currently bound.
func (m *Model) FrameContext() FrameContext { return m.frameContext() }

// SetBonePose overrides a bone's local transform on top of any bound track.
// A boneOnly edit moves the bone but leaves the mesh as the tracks posed it.
func (m *Model) SetBonePose(bone int, t skeleton.Transform, boneOnly bool) error {
	if !m.h.Has(bone) {
		return fmt.Errorf("model %q: bone %d out of range", m.name, bone)
	}
	prev, had := m.edits[bone]
	m.edits[bone] = poseEdit{local: t, boneOnly: boneOnly}
	if err := m.refresh(); err != nil {
		if had {
			m.edits[bone] = prev
		} else {
			delete(m.edits, bone)
		}
		return err
	}
	return nil
}

// ClearBonePose removes a bone's pose edit.
func (m *Model) ClearBonePose(bone int) error {
	if _, ok := m.edits[bone]; !ok {
		return nil
	}
	prev := m.edits[bone]
	delete(m.edits, bone)
	if err := m.refresh(); err != nil {
		m.edits[bone] = prev
		return err
	}
	return nil
}

// SetBindPose permanently changes a bone's bind local transform. With
// moveMesh the vertices it influences are carried to the new bind pose;
// without it the mesh keeps its bind positions and only the bone moves. If
// evaluation fails the bind pose and mesh are left as they were.
func (m *Model) SetBindPose(bone int, t skeleton.Transform, moveMesh bool) error {
	if !m.h.Has(bone) {
		return fmt.Errorf("model %q: bone %d out of range", m.name, bone)
	}

	var moved []VertexSnapshot
	if moveMesh {
		next := m.h.Clone()
		next.SetBindLocal(bone, t)
		pal := m.skin.RebindPalette(next)
		for _, v := range m.AffectedVertices([]int{bone}) {
			bv := m.vertices[v]
			moved = append(moved, VertexSnapshot{
				Vertex: v,
				Bind:   m.skin.WeightedPosition(v, bv.Position, pal),
				Normal: m.skin.WeightedNormal(v, bv.Normal, pal),
			})
		}
	}

	prevLocal := m.h.BindLocal(bone)
	prevVerts := m.vertexSnapshots(moved)
	m.h.SetBindLocal(bone, t)
	m.skin.Rebind(m.h)
	m.putVertices(moved)
	if err := m.refresh(); err != nil {
		m.h.SetBindLocal(bone, prevLocal)
		m.skin.Rebind(m.h)
		m.putVertices(prevVerts)
		return err
	}
	return nil
}

// vertexSnapshots copies the current bind data of the vertices named in ss.
func (m *Model) vertexSnapshots(ss []VertexSnapshot) []VertexSnapshot {
	out := make([]VertexSnapshot, len(ss))
	for i, s := range ss {
		bv := m.vertices[s.Vertex]
		out[i] = VertexSnapshot{Vertex: s.Vertex, Bind: bv.Position, Normal: bv.Normal}
	}
	return out
}

func (m *Model) putVertices(ss []VertexSnapshot) {
	for _, s := range ss {
		m.vertices[s.Vertex].Position = s.Bind
		m.vertices[s.Vertex].Normal = s.Normal
	}
}

// SetVertexPosition moves a vertex in bind space.
func (m *Model) SetVertexPosition(v int, pos [3]float32) error {
	if v < 0 || v >= len(m.vertices) {
		return fmt.Errorf("model %q: vertex %d out of range", m.name, v)
	}
	prev := m.vertices[v].Position
	m.vertices[v].Position = pos
	if err := m.refresh(); err != nil {
		m.vertices[v].Position = prev
		return err
	}
	return nil
}

// AffectedVertices returns the vertices influenced by the given bones or any
// bone below them.
func (m *Model) AffectedVertices(bones []int) []int {
	var all []int
	for _, b := range bones {
		all = append(all, m.h.Descendants(b)...)
	}
	return m.skin.VerticesInfluencedBy(all)
}

// CaptureBones copies the editable state of the given bones.
func (m *Model) CaptureBones(bones []int) ([]BoneSnapshot, error) {
	out := make([]BoneSnapshot, 0, len(bones))
	for _, b := range bones {
		if !m.h.Has(b) {
			return nil, fmt.Errorf("model %q: bone %d out of range", m.name, b)
		}
		s := BoneSnapshot{Bone: b, BindLocal: m.h.BindLocal(b)}
		if e, ok := m.edits[b]; ok {
			s.Edited = true
			s.Edit = e.local
			s.BoneOnly = e.boneOnly
		}
		out = append(out, s)
	}
	return out, nil
}

// CaptureVertices copies bind positions, normals and last resolved
// positions of the given vertices.
func (m *Model) CaptureVertices(vertices []int) ([]VertexSnapshot, error) {
	resolved := m.ResolvedVertexBuffer()
	out := make([]VertexSnapshot, 0, len(vertices))
	for _, v := range vertices {
		if v < 0 || v >= len(m.vertices) {
			return nil, fmt.Errorf("model %q: vertex %d out of range", m.name, v)
		}
		out = append(out, VertexSnapshot{
			Vertex:   v,
			Bind:     m.vertices[v].Position,
			Normal:   m.vertices[v].Normal,
			Weighted: resolved[v].Position,
		})
	}
	return out, nil
}

// Restore puts bones and vertices back exactly as captured and publishes
// one new state, so a reader never sees bones and mesh from different
// snapshots. When ctx names the bone track that is still bound, bound slots
// return to the captured frame first. If evaluation fails the model is left
// as it was.
func (m *Model) Restore(ctx FrameContext, bones []BoneSnapshot, vertices []VertexSnapshot) error {
	for _, s := range bones {
		if !m.h.Has(s.Bone) {
			return fmt.Errorf("model %q: bone %d out of range", m.name, s.Bone)
		}
	}
	for _, s := range vertices {
		if s.Vertex < 0 || s.Vertex >= len(m.vertices) {
			return fmt.Errorf("model %q: vertex %d out of range", m.name, s.Vertex)
		}
	}

	undoBones, err := m.CaptureBones(boneIndices(bones))
	if err != nil {
		return err
	}
	undoVerts := m.vertexSnapshots(vertices)

	prevSlots := m.slots
	if cur := m.frameContext(); ctx.Bound && cur.Bound && cur.Track == ctx.Track && cur.Frame != ctx.Frame {
		for k := range m.slots {
			if m.slots[k].track != nil {
				m.slots[k].frame = ctx.Frame
			}
		}
	}

	if m.putBones(bones) {
		m.skin.Rebind(m.h)
	}
	m.putVertices(vertices)

	if err := m.refresh(); err != nil {
		m.slots = prevSlots
		if m.putBones(undoBones) {
			m.skin.Rebind(m.h)
		}
		m.putVertices(undoVerts)
		return err
	}
	return nil
}

// putBones writes bind locals and pose edits from ss and reports whether any
// bind local changed.
func (m *Model) putBones(ss []BoneSnapshot) bool {
	rebind := false
	for _, s := range ss {
		if m.h.BindLocal(s.Bone) != s.BindLocal {
			m.h.SetBindLocal(s.Bone, s.BindLocal)
			rebind = true
		}
		if s.Edited {
			m.edits[s.Bone] = poseEdit{local: s.Edit, boneOnly: s.BoneOnly}
		} else {
			delete(m.edits, s.Bone)
		}
	}
	return rebind
}

func boneIndices(ss []BoneSnapshot) []int {
	out := make([]int, len(ss))
	for i, s := range ss {
		out[i] = s.Bone
	}
	return out
}
