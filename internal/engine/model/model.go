package model

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/posekit/internal/engine/anim"
	"github.com/Faultbox/posekit/internal/engine/skeleton"
	"github.com/Faultbox/posekit/internal/engine/skin"
	"github.com/Faultbox/posekit/internal/logger"
	"github.com/Faultbox/posekit/pkg/math"
)

// slot is one track kind's binding. A nil track means unbound.
type slot struct {
	track anim.Track
	frame int
}

// poseEdit is an interactive override of a bone's local transform.
// BoneOnly edits move the bone without deforming the mesh.
type poseEdit struct {
	local    skeleton.Transform
	boneOnly bool
}

// Model owns a skeleton, its skinned mesh and the active track slots. Every
// change re-evaluates the pose from bind state and publishes a new immutable
// State, so readers never see a partial result.
type Model struct {
	name string
	opts Options

	h         *skeleton.Hierarchy
	skin      *skin.Manager
	vertices  []BindVertex
	indices   []uint32
	objects   []Object
	materials []Material
	groups    int
	shapes    map[string]anim.Shape

	slots [anim.KindCount]slot
	edits map[int]poseEdit
	view  *math.Quat

	state atomic.Pointer[State]
	log   *zap.Logger
}

var _ anim.Bind = (*Model)(nil)

// New validates the definition and builds a model in its bind pose.
func New(def Definition, opts Options) (*Model, error) {
	h, err := skeleton.Build(def.Bones)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", def.Name, err)
	}

	vertices := append([]BindVertex(nil), def.Vertices...)
	if !HasNormals(vertices) {
		GenerateNormals(vertices, def.Indices)
	}
	for i, v := range vertices {
		if v.ColorGroup != NoColorGroup && (v.ColorGroup < 0 || v.ColorGroup >= def.ColorGroups) {
			return nil, fmt.Errorf("model %q: vertex %d: color group %d out of range", def.Name, i, v.ColorGroup)
		}
	}
	for i, idx := range def.Indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("model %q: index %d references vertex %d of %d", def.Name, i, idx, len(vertices))
		}
	}
	for i, o := range def.Objects {
		if o.Material < 0 || o.Material >= len(def.Materials) {
			return nil, fmt.Errorf("model %q: object %d: material %d out of range", def.Name, i, o.Material)
		}
	}

	sk, err := skin.Build(len(vertices), def.Influences, h, skin.Options{Tolerance: opts.WeightTolerance})
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", def.Name, err)
	}

	m := &Model{
		name:      def.Name,
		opts:      opts,
		h:         h,
		skin:      sk,
		vertices:  vertices,
		indices:   append([]uint32(nil), def.Indices...),
		objects:   append([]Object(nil), def.Objects...),
		materials: append([]Material(nil), def.Materials...),
		groups:    def.ColorGroups,
		shapes:    make(map[string]anim.Shape, len(def.Shapes)),
		edits:     make(map[int]poseEdit),
		log:       logger.Named("model").With(zap.String("model", def.Name)),
	}
	for _, s := range def.Shapes {
		m.shapes[s.Name] = s
	}

	if err := m.refresh(); err != nil {
		return nil, err
	}

	m.log.Info("model ready",
		zap.Int("bones", h.Len()),
		zap.Int("vertices", len(vertices)),
		zap.Int("rigid", sk.RigidCount()),
		zap.Int("objects", len(def.Objects)))

	return m, nil
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Skeleton exposes the hierarchy to the track resolvers. Its animated state
// is scratch space for evaluation; read poses from Resolve instead.
func (m *Model) Skeleton() *skeleton.Hierarchy { return m.h }

// Influences returns the model's influence manager.
func (m *Model) Influences() *skin.Manager { return m.skin }

// VertexCount returns the number of mesh vertices.
func (m *Model) VertexCount() int { return len(m.vertices) }

// HasMaterial reports whether id names a material.
func (m *Model) HasMaterial(id int) bool { return id >= 0 && id < len(m.materials) }

// HasObject reports whether id names an object.
func (m *Model) HasObject(id int) bool { return id >= 0 && id < len(m.objects) }

// HasColorGroup reports whether id names a color group.
func (m *Model) HasColorGroup(id int) bool { return id >= 0 && id < m.groups }

// Shape looks up a shape by name.
func (m *Model) Shape(name string) (anim.Shape, bool) {
	s, ok := m.shapes[name]
	return s, ok
}

// Indices returns the triangle list. Callers must not modify it.
func (m *Model) Indices() []uint32 { return m.indices }

// Objects returns the object table. Callers must not modify it.
func (m *Model) Objects() []Object { return m.objects }

// Materials returns the material table. Callers must not modify it.
func (m *Model) Materials() []Material { return m.materials }

// BindVertex returns vertex v in the bind pose.
func (m *Model) BindVertex(v int) BindVertex { return m.vertices[v] }

// SetViewRotation sets the camera rotation billboard bones face away from.
// It only has an effect with Options.ApplyBillboards.
func (m *Model) SetViewRotation(view math.Quat) error {
	prev := m.view
	m.view = &view
	if err := m.refresh(); err != nil {
		m.view = prev
		return err
	}
	return nil
}

// refresh re-evaluates from bind state and publishes the result. On error
// the published state is left alone.
func (m *Model) refresh() error {
	st, err := m.evaluate()
	if err != nil {
		m.log.Warn("evaluation failed, keeping previous pose", zap.Error(err))
		return err
	}
	m.state.Store(st)
	return nil
}
