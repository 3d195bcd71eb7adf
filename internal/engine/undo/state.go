// Package undo records reversible edits to a model's bind pose, bone pose
// and vertex data as pairs of immutable snapshots.
package undo

import (
	"github.com/Faultbox/posekit/internal/engine/model"
)

// ModelRef is an index into a Session's model table.
type ModelRef int

// SaveState is one half of an edit: the state to restore on undo, or the
// state to restore on redo.
type SaveState interface {
	IsUndo() bool
	Model() ModelRef
	Context() model.FrameContext
	restore(m *model.Model) error
}

// VertexState holds bind positions of the edited vertices and where they
// were drawn when captured.
type VertexState struct {
	Undo     bool
	Ref      ModelRef
	Frame    model.FrameContext
	Vertices []model.VertexSnapshot
}

func (s *VertexState) IsUndo() bool                { return s.Undo }
func (s *VertexState) Model() ModelRef             { return s.Ref }
func (s *VertexState) Context() model.FrameContext { return s.Frame }

func (s *VertexState) restore(m *model.Model) error {
	return m.Restore(s.Frame, nil, s.Vertices)
}

// Weighted returns the captured resolved position of each vertex.
func (s *VertexState) Weighted() map[int][3]float32 {
	out := make(map[int][3]float32, len(s.Vertices))
	for _, v := range s.Vertices {
		out[v.Vertex] = v.Weighted
	}
	return out
}

// BoneState holds the edited bones. UpdateBindState edits change the bind
// pose; UpdateBoneOnly edits never touch the vertex buffer. Mesh is filled
// when a bind edit carries the mesh with it.
type BoneState struct {
	Undo            bool
	Ref             ModelRef
	Frame           model.FrameContext
	UpdateBindState bool
	UpdateBoneOnly  bool
	Bones           []model.BoneSnapshot
	Mesh            []model.VertexSnapshot
}

func (s *BoneState) IsUndo() bool                { return s.Undo }
func (s *BoneState) Model() ModelRef             { return s.Ref }
func (s *BoneState) Context() model.FrameContext { return s.Frame }

func (s *BoneState) restore(m *model.Model) error {
	return m.Restore(s.Frame, s.Bones, s.Mesh)
}

// Pair is one committed transaction.
type Pair struct {
	Undo SaveState
	Redo SaveState
}
