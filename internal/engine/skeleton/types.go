// Package skeleton holds the bone hierarchy: bind and animated local
// transforms, and the world transforms derived from them.
package skeleton

import (
	"github.com/Faultbox/posekit/pkg/math"
)

// NoParent marks the root bone's parent index.
const NoParent = -1

// Transform is a local scale/rotate/translate triple. Rotation is in degrees
// per axis, applied X then Y then Z.
type Transform struct {
	Scale     [3]float32
	Rotate    [3]float32
	Translate [3]float32
}

// IdentityTransform returns unit scale, no rotation, no translation.
func IdentityTransform() Transform {
	return Transform{Scale: [3]float32{1, 1, 1}}
}

// Matrix composes the transform as T * R * S.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Scale, t.Rotate, t.Translate)
}

// BoneDef describes one bone for Build.
type BoneDef struct {
	Name   string
	Parent int // index into the definition list, or NoParent
	Bind   Transform

	// NoTransform bones contribute nothing of their own; their world is the parent's.
	NoTransform bool
	// Billboard bones have their world rotation replaced by the inverse view rotation.
	Billboard bool
}

// Bone is a node of the hierarchy. The hierarchy owns all bones; parent and
// children are indices into it.
type Bone struct {
	Name     string
	Index    int
	Parent   int
	Children []int

	BindLocal Transform
	BindWorld math.Mat4

	// Local is the effective local transform: BindLocal unless Animated.
	Local    Transform
	Animated bool
	World    math.Mat4

	NoTransform bool
	Billboard   bool
}
