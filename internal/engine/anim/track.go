// Package anim resolves keyframed animation tracks into pose deltas. There
// are exactly six track kinds; each has a pure resolver that reads the bind
// state and a frame index and never mutates either.
package anim

import (
	"fmt"

	"github.com/Faultbox/posekit/internal/engine/skeleton"
)

// Kind identifies one of the six track kinds.
type Kind uint8

const (
	KindBone Kind = iota
	KindTexSRT
	KindShape
	KindVisibility
	KindColor
	KindPattern

	// KindCount is the number of track kinds.
	KindCount = int(KindPattern) + 1
)

func (k Kind) String() string {
	switch k {
	case KindBone:
		return "bone"
	case KindTexSRT:
		return "texsrt"
	case KindShape:
		return "shape"
	case KindVisibility:
		return "visibility"
	case KindColor:
		return "color"
	case KindPattern:
		return "pattern"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String. "srt" is accepted for KindTexSRT.
func ParseKind(s string) (Kind, error) {
	for k := KindBone; int(k) < KindCount; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	if s == "srt" {
		return KindTexSRT, nil
	}
	return 0, fmt.Errorf("anim: unknown track kind %q", s)
}

// Track is implemented only by the six track types of this package.
type Track interface {
	Kind() Kind
	TrackName() string
	Frames() int
	sealed()
}

// Bind is the read-only bind state the resolvers consult.
type Bind interface {
	Skeleton() *skeleton.Hierarchy
	VertexCount() int
	HasMaterial(id int) bool
	HasObject(id int) bool
	HasColorGroup(id int) bool
	Shape(name string) (Shape, bool)
}

// Shape is a named set of per-vertex offsets that a ShapeTrack weights in.
type Shape struct {
	Name     string
	Vertices []int
	Deltas   [][3]float32
}

// BoneTrack keys bone local transforms. A nil curve leaves that component at
// its bind value.
type BoneTrack struct {
	Name       string
	FrameCount int
	Interp     Interp
	Bones      []BoneChannel
}

// BoneChannel animates one bone, addressed by name.
type BoneChannel struct {
	Bone      string
	Scale     [3]*Curve
	Rotate    [3]*Curve // degrees
	Translate [3]*Curve
}

// TexSRTTrack keys texture coordinate scale, rotation and translation per material.
type TexSRTTrack struct {
	Name       string
	FrameCount int
	Interp     Interp
	Materials  []TexSRTChannel
}

// TexSRTChannel animates one material's texture matrix. Nil curves take the
// identity value.
type TexSRTChannel struct {
	Material  int
	Scale     [2]*Curve
	Rotate    *Curve // degrees
	Translate [2]*Curve
}

// ShapeTrack keys the weight of each named shape.
type ShapeTrack struct {
	Name       string
	FrameCount int
	Interp     Interp
	Shapes     []ShapeChannel
}

// ShapeChannel weights one shape's deltas.
type ShapeChannel struct {
	Shape  string
	Weight *Curve
}

// VisibilityTrack switches objects on and off per frame.
type VisibilityTrack struct {
	Name       string
	FrameCount int
	Objects    []VisibilityChannel
}

// VisibilityChannel holds one flag per frame for an object. Frames past the
// end of the slice keep the last flag.
type VisibilityChannel struct {
	Object int
	Frames []bool
}

// ColorTrack keys RGBA per color group, blended linearly.
type ColorTrack struct {
	Name       string
	FrameCount int
	Groups     []ColorChannel
}

// ColorChannel animates one color group.
type ColorChannel struct {
	Group int
	Keys  []ColorKey
}

// ColorKey is an RGBA key.
type ColorKey struct {
	Frame float32
	Color [4]float32
}

// PatternTrack swaps material textures on key frames.
type PatternTrack struct {
	Name       string
	FrameCount int
	Materials  []PatternChannel
}

// PatternChannel holds texture swaps for one material, sorted by frame.
type PatternChannel struct {
	Material int
	Keys     []PatternKey
}

// PatternKey selects Texture from Frame onwards.
type PatternKey struct {
	Frame   int
	Texture int
}

func (*BoneTrack) Kind() Kind       { return KindBone }
func (*TexSRTTrack) Kind() Kind     { return KindTexSRT }
func (*ShapeTrack) Kind() Kind      { return KindShape }
func (*VisibilityTrack) Kind() Kind { return KindVisibility }
func (*ColorTrack) Kind() Kind      { return KindColor }
func (*PatternTrack) Kind() Kind    { return KindPattern }

func (t *BoneTrack) TrackName() string       { return t.Name }
func (t *TexSRTTrack) TrackName() string     { return t.Name }
func (t *ShapeTrack) TrackName() string      { return t.Name }
func (t *VisibilityTrack) TrackName() string { return t.Name }
func (t *ColorTrack) TrackName() string      { return t.Name }
func (t *PatternTrack) TrackName() string    { return t.Name }

func (t *BoneTrack) Frames() int       { return t.FrameCount }
func (t *TexSRTTrack) Frames() int     { return t.FrameCount }
func (t *ShapeTrack) Frames() int      { return t.FrameCount }
func (t *VisibilityTrack) Frames() int { return t.FrameCount }
func (t *ColorTrack) Frames() int      { return t.FrameCount }
func (t *PatternTrack) Frames() int    { return t.FrameCount }

// KindOf reports the kind of t by its concrete type. It panics on a nil
// interface.
func KindOf(t Track) Kind {
	switch t.(type) {
	case *BoneTrack:
		return KindBone
	case *TexSRTTrack:
		return KindTexSRT
	case *ShapeTrack:
		return KindShape
	case *VisibilityTrack:
		return KindVisibility
	case *ColorTrack:
		return KindColor
	case *PatternTrack:
		return KindPattern
	}
	panic(fmt.Sprintf("anim: unknown track type %T", t))
}

func (*BoneTrack) sealed()       {}
func (*TexSRTTrack) sealed()     {}
func (*ShapeTrack) sealed()      {}
func (*VisibilityTrack) sealed() {}
func (*ColorTrack) sealed()      {}
func (*PatternTrack) sealed()    {}

// TrackError reports a track addressing a target the bind state lacks.
type TrackError struct {
	Track  string
	Kind   Kind
	Target string
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("anim: %s track %q: unknown target %s", e.Kind, e.Track, e.Target)
}
