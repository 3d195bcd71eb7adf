// Package model aggregates a skeleton, a skinned mesh and the active
// animation tracks into the resolved pose a renderer draws.
package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/posekit/internal/engine/anim"
	"github.com/Faultbox/posekit/internal/engine/skeleton"
	"github.com/Faultbox/posekit/internal/engine/skin"
)

// NoColorGroup marks a vertex that keeps its own color.
const NoColorGroup = -1

// Vertex is a resolved vertex ready for GPU upload.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Color    [4]float32
}

// BindVertex is a vertex in the bind pose.
type BindVertex struct {
	Position   [3]float32
	Normal     [3]float32
	TexCoord   [2]float32
	Color      [4]float32
	ColorGroup int // NoColorGroup or an index below Definition.ColorGroups
}

// Object is a drawable part of the mesh: a run of triangles sharing one material.
type Object struct {
	Name       string
	Material   int
	StartIndex int32
	IndexCount int32
	Visible    bool
}

// Material is the bind-state material as far as animation is concerned.
type Material struct {
	Name    string
	Texture int
}

// Bounds holds the axis-aligned bounding box of the resolved mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Definition is everything needed to build a Model: the decoded skeleton,
// mesh and influence table.
type Definition struct {
	Name        string
	Bones       []skeleton.BoneDef
	Vertices    []BindVertex
	Influences  []skin.Influence
	Indices     []uint32
	Objects     []Object
	Materials   []Material
	ColorGroups int
	Shapes      []anim.Shape
}

// Options control model evaluation.
type Options struct {
	// WeightTolerance is the allowed deviation of influence weight sums from 1.
	WeightTolerance float64
	// ApplyBillboards turns billboard bones toward the view rotation set with SetViewRotation.
	ApplyBillboards bool
}

// MaterialOverride is what the active texture tracks did to one material.
type MaterialOverride struct {
	Material int

	HasSRT    bool
	SRT       anim.TexSRT
	TexMatrix mgl32.Mat3

	HasPattern bool
	Texture    int
}

// FrameContext names the bone animation bound when something was captured,
// so an edit session can replay the same pose.
type FrameContext struct {
	Track string
	Frame int
	Bound bool
}

// BoneSnapshot is a bone's editable state: its bind local and any pose edit.
type BoneSnapshot struct {
	Bone      int
	BindLocal skeleton.Transform
	Edited    bool
	Edit      skeleton.Transform
	BoneOnly  bool
}

// VertexSnapshot is a vertex's bind position and its last resolved position.
type VertexSnapshot struct {
	Vertex   int
	Bind     [3]float32
	Normal   [3]float32
	Weighted [3]float32
}
