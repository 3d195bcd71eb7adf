package skeleton

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/posekit/internal/logger"
	"github.com/Faultbox/posekit/pkg/math"
)

// Hierarchy is a single-rooted bone tree. Bone indices follow the definition
// order; world transforms are evaluated in a parent-before-child order that
// the hierarchy derives itself.
type Hierarchy struct {
	bones  []Bone
	order  []int
	byName map[string]int
	root   int
}

// Build validates the definitions and creates a hierarchy in its bind pose.
func Build(defs []BoneDef) (*Hierarchy, error) {
	if len(defs) == 0 {
		return nil, &StructureError{Kind: NoRoot}
	}

	h := &Hierarchy{
		bones:  make([]Bone, len(defs)),
		byName: make(map[string]int, len(defs)),
		root:   NoParent,
	}

	var roots []string
	for i, def := range defs {
		if _, dup := h.byName[def.Name]; dup {
			return nil, &StructureError{Kind: DuplicateName, Bones: []string{def.Name}}
		}
		h.byName[def.Name] = i

		if def.Parent == i || def.Parent < NoParent || def.Parent >= len(defs) {
			return nil, &StructureError{Kind: BadParent, Bones: []string{def.Name}}
		}
		if def.Parent == NoParent {
			roots = append(roots, def.Name)
			h.root = i
		}

		h.bones[i] = Bone{
			Name:        def.Name,
			Index:       i,
			Parent:      def.Parent,
			BindLocal:   def.Bind,
			Local:       def.Bind,
			NoTransform: def.NoTransform,
			Billboard:   def.Billboard,
		}
	}

	switch {
	case len(roots) == 0:
		return nil, &StructureError{Kind: Cycle, Bones: boneNames(defs)}
	case len(roots) > 1:
		return nil, &StructureError{Kind: MultipleRoots, Bones: roots}
	}

	for i := range h.bones {
		if p := h.bones[i].Parent; p != NoParent {
			h.bones[p].Children = append(h.bones[p].Children, i)
		}
	}

	// Breadth-first from the root; anything unreached hangs off a cycle.
	h.order = make([]int, 0, len(h.bones))
	h.order = append(h.order, h.root)
	for head := 0; head < len(h.order); head++ {
		h.order = append(h.order, h.bones[h.order[head]].Children...)
	}
	if len(h.order) != len(h.bones) {
		reached := make([]bool, len(h.bones))
		for _, i := range h.order {
			reached[i] = true
		}
		var stray []string
		for i, ok := range reached {
			if !ok {
				stray = append(stray, h.bones[i].Name)
			}
		}
		return nil, &StructureError{Kind: Cycle, Bones: stray}
	}

	h.RecomputeBind()
	h.RecomputeWorldTransforms(nil)

	logger.Debug("skeleton built",
		zap.Int("bones", len(h.bones)),
		zap.String("root", h.bones[h.root].Name))

	return h, nil
}

func boneNames(defs []BoneDef) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

// Len returns the number of bones.
func (h *Hierarchy) Len() int { return len(h.bones) }

// Root returns the root bone index.
func (h *Hierarchy) Root() int { return h.root }

// Bone returns a copy of the bone at index i.
func (h *Hierarchy) Bone(i int) Bone {
	b := h.bones[i]
	b.Children = slices.Clone(b.Children)
	return b
}

// Has reports whether i is a valid bone index.
func (h *Hierarchy) Has(i int) bool { return i >= 0 && i < len(h.bones) }

// Index looks a bone up by name.
func (h *Hierarchy) Index(name string) (int, bool) {
	i, ok := h.byName[name]
	return i, ok
}

// Order returns the parent-before-child evaluation order.
func (h *Hierarchy) Order() []int {
	return slices.Clone(h.order)
}

// World returns the current world transform of bone i.
func (h *Hierarchy) World(i int) math.Mat4 { return h.bones[i].World }

// BindWorld returns the bind world transform of bone i.
func (h *Hierarchy) BindWorld(i int) math.Mat4 { return h.bones[i].BindWorld }

// Local returns the effective local transform of bone i.
func (h *Hierarchy) Local(i int) Transform { return h.bones[i].Local }

// BindLocal returns the bind local transform of bone i.
func (h *Hierarchy) BindLocal(i int) Transform { return h.bones[i].BindLocal }

// IsAnimated reports whether bone i currently carries an animated override.
func (h *Hierarchy) IsAnimated(i int) bool { return h.bones[i].Animated }

// AtBind reports whether bone i's world transform is bit-identical to its bind world.
func (h *Hierarchy) AtBind(i int) bool { return h.bones[i].World == h.bones[i].BindWorld }

// Worlds returns a copy of all world transforms, indexed by bone.
func (h *Hierarchy) Worlds() []math.Mat4 {
	out := make([]math.Mat4, len(h.bones))
	for i := range h.bones {
		out[i] = h.bones[i].World
	}
	return out
}

// Descendants returns i and every bone below it, parents first.
func (h *Hierarchy) Descendants(i int) []int {
	out := []int{i}
	for head := 0; head < len(out); head++ {
		out = append(out, h.bones[out[head]].Children...)
	}
	return out
}

// SetAnimatedLocal overrides bone i's local transform until the next reset.
// World transforms are not recomputed.
func (h *Hierarchy) SetAnimatedLocal(i int, t Transform) {
	h.bones[i].Local = t
	h.bones[i].Animated = true
}

// ClearAnimatedLocal drops bone i's override.
func (h *Hierarchy) ClearAnimatedLocal(i int) {
	h.bones[i].Local = h.bones[i].BindLocal
	h.bones[i].Animated = false
}

// ResetToBind discards every animated override and recomputes world transforms.
func (h *Hierarchy) ResetToBind() {
	for i := range h.bones {
		h.bones[i].Local = h.bones[i].BindLocal
		h.bones[i].Animated = false
	}
	h.RecomputeWorldTransforms(nil)
}

// SetBindLocal replaces bone i's bind local transform and recomputes bind
// worlds. Bones without an override follow the new bind pose.
func (h *Hierarchy) SetBindLocal(i int, t Transform) {
	h.bones[i].BindLocal = t
	if !h.bones[i].Animated {
		h.bones[i].Local = t
	}
	h.RecomputeBind()
}

// RecomputeBind derives bind world transforms from bind locals.
func (h *Hierarchy) RecomputeBind() {
	for _, i := range h.order {
		b := &h.bones[i]
		var parent *math.Mat4
		if b.Parent != NoParent {
			parent = &h.bones[b.Parent].BindWorld
		}
		b.BindWorld = compose(parent, b.BindLocal, b.NoTransform)
	}
}

// RecomputeWorldTransforms derives world transforms from the effective local
// transforms, top down from the root. It is deterministic: the same locals
// always give the same worlds. When view is non-nil, billboard bones replace
// their world rotation with the inverse of view while keeping translation and
// scale.
func (h *Hierarchy) RecomputeWorldTransforms(view *math.Quat) {
	var facing math.Mat4
	if view != nil {
		facing = view.Conjugate().ToMat4()
	}
	for _, i := range h.order {
		b := &h.bones[i]
		var parent *math.Mat4
		if b.Parent != NoParent {
			parent = &h.bones[b.Parent].World
		}
		b.World = compose(parent, b.Local, b.NoTransform)
		if b.Billboard && view != nil {
			b.World = billboard(b.World, facing)
		}
	}
}

func compose(parent *math.Mat4, local Transform, noTransform bool) math.Mat4 {
	switch {
	case parent == nil && noTransform:
		return math.Identity()
	case parent == nil:
		return local.Matrix()
	case noTransform:
		return *parent
	default:
		return parent.Mul(local.Matrix())
	}
}

func billboard(world, facing math.Mat4) math.Mat4 {
	t := world.Translation()
	s := world.AxisScale()
	return math.Translate(t[0], t[1], t[2]).Mul(facing).Mul(math.Scale(s[0], s[1], s[2]))
}

// Clone returns a deep copy of the hierarchy.
func (h *Hierarchy) Clone() *Hierarchy {
	c := &Hierarchy{
		bones:  make([]Bone, len(h.bones)),
		order:  slices.Clone(h.order),
		byName: maps.Clone(h.byName),
		root:   h.root,
	}
	for i, b := range h.bones {
		b.Children = slices.Clone(b.Children)
		c.bones[i] = b
	}
	return c
}

// String summarises the hierarchy for logs.
func (h *Hierarchy) String() string {
	return fmt.Sprintf("Hierarchy{bones: %d, root: %q}", len(h.bones), h.bones[h.root].Name)
}
