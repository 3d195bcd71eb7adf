package anim

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/posekit/internal/engine/skeleton"
)

// BoneLocal is the resolved local transform of one bone.
type BoneLocal struct {
	Bone  int
	Local skeleton.Transform
}

// BonePose is the output of ResolveBone.
type BonePose struct {
	Locals []BoneLocal
}

// TexSRT is a resolved 2D texture transform. Rotate is in degrees.
type TexSRT struct {
	Scale     [2]float32
	Rotate    float32
	Translate [2]float32
}

// IdentitySRT returns the texture transform that leaves coordinates alone.
func IdentitySRT() TexSRT {
	return TexSRT{Scale: [2]float32{1, 1}}
}

// Matrix composes the homogeneous 2D matrix T * R * S.
func (s TexSRT) Matrix() mgl32.Mat3 {
	return mgl32.Translate2D(s.Translate[0], s.Translate[1]).
		Mul3(mgl32.HomogRotate2D(mgl32.DegToRad(s.Rotate))).
		Mul3(mgl32.Scale2D(s.Scale[0], s.Scale[1]))
}

// MaterialSRT is the resolved texture transform of one material.
type MaterialSRT struct {
	Material int
	SRT      TexSRT
	Matrix   mgl32.Mat3
}

// SRTDelta is the output of ResolveTexSRT.
type SRTDelta struct {
	Materials []MaterialSRT
}

// ShapeDelta maps vertex index to the offset added to its bind position.
type ShapeDelta struct {
	Offsets map[int][3]float32
}

// VisibilityDelta maps object id to its visibility.
type VisibilityDelta struct {
	Objects map[int]bool
}

// ColorDelta maps color group to its RGBA.
type ColorDelta struct {
	Groups map[int]mgl32.Vec4
}

// PatternDelta maps material id to the texture it shows.
type PatternDelta struct {
	Textures map[int]int
}

// ResolveBone samples a bone track. Components without a curve keep the
// bone's bind value.
func ResolveBone(b Bind, t *BoneTrack, frame int) (BonePose, error) {
	h := b.Skeleton()
	f := clampFrame(frame)
	pose := BonePose{Locals: make([]BoneLocal, 0, len(t.Bones))}

	for _, ch := range t.Bones {
		idx, ok := h.Index(ch.Bone)
		if !ok {
			return BonePose{}, &TrackError{Track: t.Name, Kind: KindBone, Target: "bone " + strconv.Quote(ch.Bone)}
		}
		local := h.BindLocal(idx)
		sample3(&local.Scale, ch.Scale, f, t.Interp)
		sample3(&local.Rotate, ch.Rotate, f, t.Interp)
		sample3(&local.Translate, ch.Translate, f, t.Interp)
		pose.Locals = append(pose.Locals, BoneLocal{Bone: idx, Local: local})
	}
	return pose, nil
}

func sample3(dst *[3]float32, curves [3]*Curve, f float32, mode Interp) {
	for i, c := range curves {
		if c != nil {
			dst[i] = c.Eval(f, mode)
		}
	}
}

// ResolveTexSRT samples a texture SRT track.
func ResolveTexSRT(b Bind, t *TexSRTTrack, frame int) (SRTDelta, error) {
	f := clampFrame(frame)
	out := SRTDelta{Materials: make([]MaterialSRT, 0, len(t.Materials))}

	for _, ch := range t.Materials {
		if !b.HasMaterial(ch.Material) {
			return SRTDelta{}, &TrackError{Track: t.Name, Kind: KindTexSRT, Target: fmt.Sprintf("material %d", ch.Material)}
		}
		srt := IdentitySRT()
		for i := 0; i < 2; i++ {
			if ch.Scale[i] != nil {
				srt.Scale[i] = ch.Scale[i].Eval(f, t.Interp)
			}
			if ch.Translate[i] != nil {
				srt.Translate[i] = ch.Translate[i].Eval(f, t.Interp)
			}
		}
		if ch.Rotate != nil {
			srt.Rotate = ch.Rotate.Eval(f, t.Interp)
		}
		out.Materials = append(out.Materials, MaterialSRT{Material: ch.Material, SRT: srt, Matrix: srt.Matrix()})
	}
	return out, nil
}

// ResolveShape sums weighted shape deltas per vertex.
func ResolveShape(b Bind, t *ShapeTrack, frame int) (ShapeDelta, error) {
	f := clampFrame(frame)
	out := ShapeDelta{Offsets: make(map[int][3]float32)}
	n := b.VertexCount()

	for _, ch := range t.Shapes {
		shape, ok := b.Shape(ch.Shape)
		if !ok {
			return ShapeDelta{}, &TrackError{Track: t.Name, Kind: KindShape, Target: "shape " + strconv.Quote(ch.Shape)}
		}
		if len(shape.Vertices) != len(shape.Deltas) {
			return ShapeDelta{}, fmt.Errorf("anim: shape %q: %d vertices, %d deltas", shape.Name, len(shape.Vertices), len(shape.Deltas))
		}
		var w float32
		if ch.Weight != nil {
			w = ch.Weight.Eval(f, t.Interp)
		}
		if w == 0 {
			continue
		}
		for i, v := range shape.Vertices {
			if v < 0 || v >= n {
				return ShapeDelta{}, &TrackError{Track: t.Name, Kind: KindShape, Target: fmt.Sprintf("vertex %d of shape %q", v, shape.Name)}
			}
			d := shape.Deltas[i]
			acc := out.Offsets[v]
			acc[0] += w * d[0]
			acc[1] += w * d[1]
			acc[2] += w * d[2]
			out.Offsets[v] = acc
		}
	}
	return out, nil
}

// ResolveVisibility reads each object's flag at the frame.
func ResolveVisibility(b Bind, t *VisibilityTrack, frame int) (VisibilityDelta, error) {
	f := int(clampFrame(frame))
	out := VisibilityDelta{Objects: make(map[int]bool, len(t.Objects))}

	for _, ch := range t.Objects {
		if !b.HasObject(ch.Object) {
			return VisibilityDelta{}, &TrackError{Track: t.Name, Kind: KindVisibility, Target: fmt.Sprintf("object %d", ch.Object)}
		}
		if len(ch.Frames) == 0 {
			continue
		}
		i := f
		if i >= len(ch.Frames) {
			i = len(ch.Frames) - 1
		}
		out.Objects[ch.Object] = ch.Frames[i]
	}
	return out, nil
}

// ResolveColor blends each group's RGBA keys linearly.
func ResolveColor(b Bind, t *ColorTrack, frame int) (ColorDelta, error) {
	f := clampFrame(frame)
	out := ColorDelta{Groups: make(map[int]mgl32.Vec4, len(t.Groups))}

	for _, ch := range t.Groups {
		if !b.HasColorGroup(ch.Group) {
			return ColorDelta{}, &TrackError{Track: t.Name, Kind: KindColor, Target: fmt.Sprintf("color group %d", ch.Group)}
		}
		if len(ch.Keys) == 0 {
			continue
		}
		out.Groups[ch.Group] = colorAt(ch.Keys, f)
	}
	return out, nil
}

func colorAt(keys []ColorKey, f float32) mgl32.Vec4 {
	first, last := keys[0], keys[len(keys)-1]
	switch {
	case f <= first.Frame:
		return mgl32.Vec4(first.Color)
	case f >= last.Frame:
		return mgl32.Vec4(last.Color)
	}
	next := 1
	for keys[next].Frame <= f {
		next++
	}
	k0, k1 := keys[next-1], keys[next]
	t := (f - k0.Frame) / (k1.Frame - k0.Frame)
	c0, c1 := mgl32.Vec4(k0.Color), mgl32.Vec4(k1.Color)
	return c0.Add(c1.Sub(c0).Mul(t))
}

// ResolvePattern picks each material's texture at the frame (step).
func ResolvePattern(b Bind, t *PatternTrack, frame int) (PatternDelta, error) {
	f := int(clampFrame(frame))
	out := PatternDelta{Textures: make(map[int]int, len(t.Materials))}

	for _, ch := range t.Materials {
		if !b.HasMaterial(ch.Material) {
			return PatternDelta{}, &TrackError{Track: t.Name, Kind: KindPattern, Target: fmt.Sprintf("material %d", ch.Material)}
		}
		if len(ch.Keys) == 0 {
			continue
		}
		tex := ch.Keys[0].Texture
		for _, k := range ch.Keys {
			if k.Frame > f {
				break
			}
			tex = k.Texture
		}
		out.Textures[ch.Material] = tex
	}
	return out, nil
}
