package scenefile

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/posekit/internal/engine/anim"
	"github.com/Faultbox/posekit/internal/engine/model"
	"github.com/Faultbox/posekit/internal/engine/skeleton"
	"github.com/Faultbox/posekit/internal/engine/skin"
)

// converter turns names into indices and collects every problem it finds.
type converter struct {
	bones     map[string]int
	binds     []skeleton.Transform
	materials map[string]int
	objects   map[string]int
	shapes    map[string]bool
	vertices  int
	groups    int
	err       error
}

func (c *converter) fail(format string, args ...any) {
	c.err = multierr.Append(c.err, fmt.Errorf(format, args...))
}

func (c *converter) bone(name, where string) int {
	i, ok := c.bones[name]
	if !ok {
		c.fail("%s: unknown bone %q", where, name)
		return skeleton.NoParent
	}
	return i
}

func (c *converter) material(name, where string) int {
	i, ok := c.materials[name]
	if !ok {
		c.fail("%s: unknown material %q", where, name)
	}
	return i
}

func (c *converter) object(name, where string) int {
	i, ok := c.objects[name]
	if !ok {
		c.fail("%s: unknown object %q", where, name)
	}
	return i
}

func index[T any](items []T, name func(T) string) map[string]int {
	m := make(map[string]int, len(items))
	for i, it := range items {
		if _, dup := m[name(it)]; !dup {
			m[name(it)] = i
		}
	}
	return m
}

func (d *sceneDoc) convert() (*Scene, error) {
	c := &converter{
		bones:     index(d.Bones, func(b boneDoc) string { return b.Name }),
		materials: index(d.Materials, func(m materialDoc) string { return m.Name }),
		objects:   index(d.Objects, func(o objectDoc) string { return o.Name }),
		shapes:    make(map[string]bool, len(d.Shapes)),
		vertices:  len(d.Vertices),
		groups:    d.ColorGroups,
	}
	for _, s := range d.Shapes {
		c.shapes[s.Name] = true
	}

	def := model.Definition{
		Name:        d.Name,
		Indices:     d.Indices,
		ColorGroups: d.ColorGroups,
	}

	for _, b := range d.Bones {
		bind := skeleton.Transform{Scale: [3]float32{1, 1, 1}, Rotate: b.Rotate, Translate: b.Translate}
		if b.Scale != nil {
			bind.Scale = *b.Scale
		}
		parent := skeleton.NoParent
		if b.Parent != "" {
			parent = c.bone(b.Parent, fmt.Sprintf("bone %q parent", b.Name))
		}
		c.binds = append(c.binds, bind)
		def.Bones = append(def.Bones, skeleton.BoneDef{
			Name:        b.Name,
			Parent:      parent,
			Bind:        bind,
			NoTransform: b.NoTransform,
			Billboard:   b.Billboard,
		})
	}

	for i, v := range d.Vertices {
		bv := model.BindVertex{
			Position:   v.Position,
			Normal:     v.Normal,
			TexCoord:   v.UV,
			Color:      [4]float32{1, 1, 1, 1},
			ColorGroup: model.NoColorGroup,
		}
		if v.Color != nil {
			bv.Color = *v.Color
		}
		if v.ColorGroup != nil {
			bv.ColorGroup = *v.ColorGroup
		}
		inf := make(skin.Influence, 0, len(v.Weights))
		for _, w := range v.Weights {
			inf = append(inf, skin.Weight{Bone: c.bone(w.Bone, fmt.Sprintf("vertex %d", i)), Weight: w.Weight})
		}
		def.Vertices = append(def.Vertices, bv)
		def.Influences = append(def.Influences, inf)
	}

	for _, m := range d.Materials {
		def.Materials = append(def.Materials, model.Material{Name: m.Name, Texture: m.Texture})
	}
	for _, o := range d.Objects {
		def.Objects = append(def.Objects, model.Object{
			Name:       o.Name,
			Material:   c.material(o.Material, fmt.Sprintf("object %q", o.Name)),
			StartIndex: o.Start,
			IndexCount: o.Count,
			Visible:    !o.Hidden,
		})
	}
	for _, s := range d.Shapes {
		if len(s.Vertices) != len(s.Deltas) {
			c.fail("shape %q: %d vertices, %d deltas", s.Name, len(s.Vertices), len(s.Deltas))
		}
		def.Shapes = append(def.Shapes, anim.Shape{Name: s.Name, Vertices: s.Vertices, Deltas: s.Deltas})
	}

	scene := &Scene{Definition: def}
	for i := range d.Tracks {
		if t := c.track(&d.Tracks[i]); t != nil {
			scene.Tracks = append(scene.Tracks, t)
		}
	}
	for i, e := range d.Edits {
		scene.Edits = append(scene.Edits, c.edit(i, e))
	}

	if c.err != nil {
		return nil, c.err
	}
	return scene, nil
}

func (c *converter) curve(keys curveDoc, where string) *anim.Curve {
	if len(keys) == 0 {
		return nil
	}
	out := &anim.Curve{Keys: make([]anim.Key, 0, len(keys))}
	for i, k := range keys {
		if len(k) != 2 && len(k) != 3 {
			c.fail("%s: key %d needs [frame, value] or [frame, value, tangent]", where, i)
			continue
		}
		key := anim.Key{Frame: k[0], Value: k[1]}
		if len(k) == 3 {
			key.Tangent = k[2]
		}
		if n := len(out.Keys); n > 0 && out.Keys[n-1].Frame >= key.Frame {
			c.fail("%s: key %d: frames must increase", where, i)
		}
		out.Keys = append(out.Keys, key)
	}
	return out
}

func (c *converter) vec3(v vec3CurveDoc, where string) [3]*anim.Curve {
	return [3]*anim.Curve{c.curve(v.X, where+".x"), c.curve(v.Y, where+".y"), c.curve(v.Z, where+".z")}
}

func (c *converter) vec2(v vec2CurveDoc, where string) [2]*anim.Curve {
	return [2]*anim.Curve{c.curve(v.X, where+".x"), c.curve(v.Y, where+".y")}
}

func (c *converter) track(t *trackDoc) anim.Track {
	where := fmt.Sprintf("track %q", t.Name)
	kind, err := anim.ParseKind(t.Kind)
	if err != nil {
		c.fail("%s: %w", where, err)
		return nil
	}
	interp, err := anim.ParseInterp(t.Interp)
	if err != nil {
		c.fail("%s: %w", where, err)
	}

	switch kind {
	case anim.KindBone:
		out := &anim.BoneTrack{Name: t.Name, FrameCount: t.Frames, Interp: interp}
		for _, ch := range t.Bones {
			at := fmt.Sprintf("%s bone %q", where, ch.Bone)
			c.bone(ch.Bone, where)
			out.Bones = append(out.Bones, anim.BoneChannel{
				Bone:      ch.Bone,
				Scale:     c.vec3(ch.Scale, at+" scale"),
				Rotate:    c.vec3(ch.Rotate, at+" rotate"),
				Translate: c.vec3(ch.Translate, at+" translate"),
			})
		}
		return out

	case anim.KindTexSRT:
		out := &anim.TexSRTTrack{Name: t.Name, FrameCount: t.Frames, Interp: interp}
		for _, ch := range t.Materials {
			at := fmt.Sprintf("%s material %q", where, ch.Material)
			out.Materials = append(out.Materials, anim.TexSRTChannel{
				Material:  c.material(ch.Material, where),
				Scale:     c.vec2(ch.Scale, at+" scale"),
				Rotate:    c.curve(ch.Rotate, at+" rotate"),
				Translate: c.vec2(ch.Translate, at+" translate"),
			})
		}
		return out

	case anim.KindShape:
		out := &anim.ShapeTrack{Name: t.Name, FrameCount: t.Frames, Interp: interp}
		for _, ch := range t.Shapes {
			if !c.shapes[ch.Shape] {
				c.fail("%s: unknown shape %q", where, ch.Shape)
			}
			out.Shapes = append(out.Shapes, anim.ShapeChannel{
				Shape:  ch.Shape,
				Weight: c.curve(ch.Weight, fmt.Sprintf("%s shape %q", where, ch.Shape)),
			})
		}
		return out

	case anim.KindVisibility:
		out := &anim.VisibilityTrack{Name: t.Name, FrameCount: t.Frames}
		for _, ch := range t.Objects {
			out.Objects = append(out.Objects, anim.VisibilityChannel{
				Object: c.object(ch.Object, where),
				Frames: ch.Frames,
			})
		}
		return out

	case anim.KindColor:
		out := &anim.ColorTrack{Name: t.Name, FrameCount: t.Frames}
		for _, ch := range t.Groups {
			if ch.Group < 0 || ch.Group >= c.groups {
				c.fail("%s: color group %d out of range", where, ch.Group)
			}
			cc := anim.ColorChannel{Group: ch.Group}
			for _, k := range ch.Keys {
				cc.Keys = append(cc.Keys, anim.ColorKey{Frame: k.Frame, Color: k.Color})
			}
			out.Groups = append(out.Groups, cc)
		}
		return out

	case anim.KindPattern:
		out := &anim.PatternTrack{Name: t.Name, FrameCount: t.Frames}
		for _, ch := range t.Materials {
			pc := anim.PatternChannel{Material: c.material(ch.Material, where)}
			for _, k := range ch.Textures {
				pc.Keys = append(pc.Keys, anim.PatternKey{Frame: k[0], Texture: k[1]})
			}
			out.Materials = append(out.Materials, pc)
		}
		return out
	}
	return nil
}

func (c *converter) edit(i int, e editDoc) Edit {
	where := fmt.Sprintf("edit %d", i)
	out := Edit{Bone: skeleton.NoParent, UpdateBindState: e.Bind, UpdateBoneOnly: e.BoneOnly}

	switch {
	case e.Bone != "" && e.Vertex != nil:
		c.fail("%s: set either bone or vertex, not both", where)
	case e.Bone != "":
		out.Bone = c.bone(e.Bone, where)
		if out.Bone == skeleton.NoParent {
			return out
		}
		out.Transform = c.binds[out.Bone]
		if e.Scale != nil {
			out.Transform.Scale = *e.Scale
		}
		if e.Rotate != nil {
			out.Transform.Rotate = *e.Rotate
		}
		if e.Translate != nil {
			out.Transform.Translate = *e.Translate
		}
	case e.Vertex != nil:
		out.Vertex = *e.Vertex
		if out.Vertex < 0 || out.Vertex >= c.vertices {
			c.fail("%s: vertex %d out of range", where, out.Vertex)
		}
		if e.Position == nil {
			c.fail("%s: vertex edit needs a position", where)
		} else {
			out.Position = *e.Position
		}
	default:
		c.fail("%s: needs a bone or a vertex", where)
	}
	return out
}
