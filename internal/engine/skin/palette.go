package skin

import (
	"github.com/Faultbox/posekit/internal/engine/skeleton"
	"github.com/Faultbox/posekit/pkg/math"
)

// Palette holds one skinning matrix per bone: world * inverse bind.
type Palette struct {
	mats   []math.Mat4
	atBind []bool
}

// Palette snapshots the hierarchy's current world transforms. Bones whose
// world is bit-identical to their bind world get an exact identity.
func (m *Manager) Palette(h *skeleton.Hierarchy) Palette {
	p := Palette{
		mats:   make([]math.Mat4, h.Len()),
		atBind: make([]bool, h.Len()),
	}
	for i := range p.mats {
		if h.AtBind(i) {
			p.mats[i] = math.Identity()
			p.atBind[i] = true
			continue
		}
		p.mats[i] = h.World(i).Mul(m.invBind[i])
	}
	return p
}

// RebindPalette maps the bind pose the manager was built against onto the
// hierarchy's current bind pose. Skinning bind positions with it gives the
// mesh as it looks after a bind edit, before Rebind is called.
func (m *Manager) RebindPalette(h *skeleton.Hierarchy) Palette {
	p := Palette{
		mats:   make([]math.Mat4, h.Len()),
		atBind: make([]bool, h.Len()),
	}
	for i := range p.mats {
		if h.BindWorld(i) == m.bindWorld[i] {
			p.mats[i] = math.Identity()
			p.atBind[i] = true
			continue
		}
		p.mats[i] = h.BindWorld(i).Mul(m.invBind[i])
	}
	return p
}

// Matrix returns bone i's skinning matrix.
func (p Palette) Matrix(i int) math.Mat4 { return p.mats[i] }

func (m *Manager) allAtBind(v int, p Palette) bool {
	for _, w := range m.influences[v] {
		if !p.atBind[w.Bone] {
			return false
		}
	}
	return true
}

// WeightedPosition deforms pos, given in bind space, by vertex v's influences.
// A vertex whose bones all sit at bind returns pos unchanged.
func (m *Manager) WeightedPosition(v int, pos [3]float32, p Palette) [3]float32 {
	if m.allAtBind(v, p) {
		return pos
	}
	if b := m.rigid[v]; b >= 0 {
		return p.mats[b].TransformPoint(pos)
	}

	var out [3]float32
	for _, w := range m.influences[v] {
		q := p.mats[w.Bone].TransformPoint(pos)
		out[0] += w.Weight * q[0]
		out[1] += w.Weight * q[1]
		out[2] += w.Weight * q[2]
	}
	return out
}

// WeightedNormal deforms normal n with the upper 3x3 of the same skinning
// matrices, then renormalizes.
func (m *Manager) WeightedNormal(v int, n [3]float32, p Palette) [3]float32 {
	if m.allAtBind(v, p) {
		return n
	}
	if b := m.rigid[v]; b >= 0 {
		return math.V3(p.mats[b].TransformDirection(n)).Normalize().Array()
	}

	var out math.Vec3
	for _, w := range m.influences[v] {
		d := math.V3(p.mats[w.Bone].TransformDirection(n))
		out = out.Add(d.Scale(w.Weight))
	}
	return out.Normalize().Array()
}
