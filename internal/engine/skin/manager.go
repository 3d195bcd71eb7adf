// Package skin maps vertices to weighted bone influences and blends bone
// transforms into deformed positions and normals.
package skin

import (
	"fmt"
	gomath "math"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/posekit/internal/engine/skeleton"
	"github.com/Faultbox/posekit/internal/logger"
	"github.com/Faultbox/posekit/pkg/math"
)

// DefaultTolerance is the allowed deviation of a vertex's weight sum from 1.
const DefaultTolerance = 1e-5

// Weight binds a vertex to one bone.
type Weight struct {
	Bone   int
	Weight float32
}

// Influence is the ordered set of weights of one vertex.
type Influence []Weight

// Options tune influence validation.
type Options struct {
	Tolerance float64
}

// Manager holds validated influences and the inverse bind matrices they
// are skinned against.
type Manager struct {
	influences []Influence
	rigid      []int // bone of a rigidly bound vertex, or -1
	bindWorld  []math.Mat4
	invBind    []math.Mat4
}

// Build validates one influence per vertex against the hierarchy.
// Every vertex needs weights summing to 1 within the tolerance, each naming a
// bone that exists.
func Build(vertexCount int, table []Influence, h *skeleton.Hierarchy, opts Options) (*Manager, error) {
	if len(table) != vertexCount {
		return nil, fmt.Errorf("skin: %d influences for %d vertices", len(table), vertexCount)
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	m := &Manager{
		influences: make([]Influence, vertexCount),
		rigid:      make([]int, vertexCount),
	}

	var bad []int
	var errs error
	for v, inf := range table {
		if err := validate(v, inf, h, tol); err != nil {
			bad = append(bad, v)
			errs = multierr.Append(errs, err)
			continue
		}
		m.influences[v] = append(Influence(nil), inf...)
		m.rigid[v] = -1
		if len(inf) == 1 && inf[0].Weight == 1 {
			m.rigid[v] = inf[0].Bone
		}
	}
	if len(bad) > 0 {
		return nil, &InfluenceError{Vertices: bad, Err: errs}
	}

	m.Rebind(h)

	logger.Debug("influences built",
		zap.Int("vertices", vertexCount),
		zap.Int("rigid", m.RigidCount()))

	return m, nil
}

func validate(v int, inf Influence, h *skeleton.Hierarchy, tol float64) error {
	if len(inf) == 0 {
		return fmt.Errorf("vertex %d: no influences", v)
	}
	var errs error
	var sum float64
	for _, w := range inf {
		if !h.Has(w.Bone) {
			errs = multierr.Append(errs, fmt.Errorf("vertex %d: bone %d does not exist", v, w.Bone))
		}
		sum += float64(w.Weight)
	}
	if gomath.Abs(sum-1) > tol {
		errs = multierr.Append(errs, fmt.Errorf("vertex %d: weights sum to %g", v, sum))
	}
	return errs
}

// Rebind recomputes inverse bind matrices from the hierarchy's bind pose.
func (m *Manager) Rebind(h *skeleton.Hierarchy) {
	m.bindWorld = make([]math.Mat4, h.Len())
	m.invBind = make([]math.Mat4, h.Len())
	for i := range m.invBind {
		m.bindWorld[i] = h.BindWorld(i)
		m.invBind[i] = m.bindWorld[i].Inverse()
	}
}

// Len returns the number of vertices.
func (m *Manager) Len() int { return len(m.influences) }

// Influence returns a copy of vertex v's weights.
func (m *Manager) Influence(v int) Influence {
	return append(Influence(nil), m.influences[v]...)
}

// IsRigid reports whether vertex v follows a single bone with weight 1.
func (m *Manager) IsRigid(v int) bool { return m.rigid[v] >= 0 }

// RigidCount returns how many vertices take the rigid path.
func (m *Manager) RigidCount() int {
	n := 0
	for _, b := range m.rigid {
		if b >= 0 {
			n++
		}
	}
	return n
}

// VerticesInfluencedBy returns, in ascending order, the vertices with any
// weight on one of the given bones.
func (m *Manager) VerticesInfluencedBy(bones []int) []int {
	set := make(map[int]bool, len(bones))
	for _, b := range bones {
		set[b] = true
	}
	var out []int
	for v, inf := range m.influences {
		for _, w := range inf {
			if set[w.Bone] {
				out = append(out, v)
				break
			}
		}
	}
	return out
}
