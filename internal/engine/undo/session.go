package undo

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/posekit/internal/engine/model"
	"github.com/Faultbox/posekit/internal/engine/skeleton"
	"github.com/Faultbox/posekit/internal/logger"
)

// EditTarget describes what a transaction may change.
type EditTarget struct {
	Model    ModelRef
	Bones    []int
	Vertices []int

	// UpdateBindState makes bone edits permanent changes to the bind pose.
	UpdateBindState bool
	// UpdateBoneOnly keeps the vertex buffer as it is, whatever the bones do.
	UpdateBoneOnly bool
}

type transaction struct {
	target   EditTarget
	model    *model.Model
	bones    map[int]bool
	vertices map[int]bool
	undo     SaveState
}

// Session owns the models being edited and their undo history. At most one
// transaction is open at a time.
type Session struct {
	models []*model.Model
	stack  *Stack
	open   *transaction
	log    *zap.Logger
}

// NewSession creates a session keeping at most depth transactions.
func NewSession(depth int) *Session {
	return &Session{
		stack: NewStack(depth),
		log:   logger.Named("undo"),
	}
}

// AddModel registers a model and returns its reference.
func (s *Session) AddModel(m *model.Model) ModelRef {
	s.models = append(s.models, m)
	return ModelRef(len(s.models) - 1)
}

// Model returns the model behind ref.
func (s *Session) Model(ref ModelRef) (*model.Model, error) {
	if ref < 0 || int(ref) >= len(s.models) {
		return nil, fmt.Errorf("undo: unknown model %d", ref)
	}
	return s.models[ref], nil
}

// Stack exposes the history.
func (s *Session) Stack() *Stack { return s.stack }

// InEdit reports whether a transaction is open.
func (s *Session) InEdit() bool { return s.open != nil }

// CanUndo reports whether Undo would succeed.
func (s *Session) CanUndo() bool { return s.open == nil && s.stack.CanUndo() }

// CanRedo reports whether Redo would succeed.
func (s *Session) CanRedo() bool { return s.open == nil && s.stack.CanRedo() }

// BeginEdit opens a transaction and captures its undo half.
func (s *Session) BeginEdit(target EditTarget) error {
	if s.open != nil {
		return ErrEditInProgress
	}
	if len(target.Bones) == 0 && len(target.Vertices) == 0 {
		return errors.New("undo: edit target is empty")
	}
	m, err := s.Model(target.Model)
	if err != nil {
		return err
	}

	tx := &transaction{
		target:   target,
		model:    m,
		bones:    make(map[int]bool, len(target.Bones)),
		vertices: make(map[int]bool, len(target.Vertices)),
	}
	for _, b := range target.Bones {
		tx.bones[b] = true
	}
	for _, v := range target.Vertices {
		tx.vertices[v] = true
	}

	undo, err := tx.capture(true)
	if err != nil {
		return err
	}
	tx.undo = undo
	s.open = tx

	s.log.Debug("edit begun",
		zap.String("model", m.Name()),
		zap.Ints("bones", target.Bones),
		zap.Int("vertices", len(target.Vertices)),
		zap.Bool("bind", target.UpdateBindState),
		zap.Bool("boneOnly", target.UpdateBoneOnly))
	return nil
}

// meshVertices lists the vertices whose bind data the transaction may change.
func (tx *transaction) meshVertices() []int {
	if tx.target.UpdateBoneOnly {
		return nil
	}
	vs := slices.Clone(tx.target.Vertices)
	if tx.target.UpdateBindState && len(tx.target.Bones) > 0 {
		vs = append(vs, tx.model.AffectedVertices(tx.target.Bones)...)
	}
	slices.Sort(vs)
	return slices.Compact(vs)
}

func (tx *transaction) capture(undo bool) (SaveState, error) {
	m := tx.model
	ctx := m.FrameContext()

	if len(tx.target.Bones) == 0 {
		vs, err := m.CaptureVertices(tx.target.Vertices)
		if err != nil {
			return nil, err
		}
		return &VertexState{Undo: undo, Ref: tx.target.Model, Frame: ctx, Vertices: vs}, nil
	}

	bones, err := m.CaptureBones(tx.target.Bones)
	if err != nil {
		return nil, err
	}
	mesh, err := m.CaptureVertices(tx.meshVertices())
	if err != nil {
		return nil, err
	}
	return &BoneState{
		Undo:            undo,
		Ref:             tx.target.Model,
		Frame:           ctx,
		UpdateBindState: tx.target.UpdateBindState,
		UpdateBoneOnly:  tx.target.UpdateBoneOnly,
		Bones:           bones,
		Mesh:            mesh,
	}, nil
}

// SetBoneTransform edits a bone inside the open transaction. Depending on the
// transaction it changes the bind pose or the animated pose, and carries or
// leaves the mesh.
func (s *Session) SetBoneTransform(bone int, t skeleton.Transform) error {
	tx := s.open
	if tx == nil {
		return ErrNoEdit
	}
	if !tx.bones[bone] {
		return &TargetError{What: "bone", Index: bone}
	}
	if tx.target.UpdateBindState {
		return tx.model.SetBindPose(bone, t, !tx.target.UpdateBoneOnly)
	}
	return tx.model.SetBonePose(bone, t, tx.target.UpdateBoneOnly)
}

// SetVertexPosition moves a vertex in bind space inside the open transaction.
func (s *Session) SetVertexPosition(v int, pos [3]float32) error {
	tx := s.open
	if tx == nil {
		return ErrNoEdit
	}
	if tx.target.UpdateBoneOnly {
		return ErrBoneOnly
	}
	if !tx.vertices[v] {
		return &TargetError{What: "vertex", Index: v}
	}
	return tx.model.SetVertexPosition(v, pos)
}

// CommitEdit captures the redo half and records the transaction.
func (s *Session) CommitEdit() error {
	tx := s.open
	if tx == nil {
		return ErrNoEdit
	}
	redo, err := tx.capture(false)
	if err != nil {
		return err
	}
	s.open = nil

	if evicted := s.stack.Push(Pair{Undo: tx.undo, Redo: redo}); evicted > 0 {
		s.log.Debug("history trimmed", zap.Int("evicted", evicted))
	}
	s.log.Debug("edit committed", zap.String("model", tx.model.Name()), zap.Int("history", s.stack.Len()))
	return nil
}

// AbortEdit restores the state captured by BeginEdit and records nothing.
func (s *Session) AbortEdit() error {
	tx := s.open
	if tx == nil {
		return ErrNoEdit
	}
	s.open = nil
	if err := tx.undo.restore(tx.model); err != nil {
		return fmt.Errorf("undo: abort: %w", err)
	}
	s.log.Debug("edit aborted", zap.String("model", tx.model.Name()))
	return nil
}

// Undo reverts the last committed transaction.
func (s *Session) Undo() error {
	if s.open != nil {
		return ErrEditInProgress
	}
	p, ok := s.stack.Undo()
	if !ok {
		return &EmptyStackError{Op: "undo"}
	}
	if err := s.restore(p.Undo); err != nil {
		s.stack.Redo()
		return err
	}
	return nil
}

// Redo re-applies the last undone transaction.
func (s *Session) Redo() error {
	if s.open != nil {
		return ErrEditInProgress
	}
	p, ok := s.stack.Redo()
	if !ok {
		return &EmptyStackError{Op: "redo"}
	}
	if err := s.restore(p.Redo); err != nil {
		s.stack.Undo()
		return err
	}
	return nil
}

func (s *Session) restore(st SaveState) error {
	m, err := s.Model(st.Model())
	if err != nil {
		return err
	}
	if err := st.restore(m); err != nil {
		return fmt.Errorf("undo: restore: %w", err)
	}
	op := "redo"
	if st.IsUndo() {
		op = "undo"
	}
	s.log.Debug("state restored", zap.String("op", op), zap.String("model", m.Name()), zap.Int("cursor", s.stack.Cursor()))
	return nil
}
