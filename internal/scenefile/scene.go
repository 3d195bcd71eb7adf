// Package scenefile reads a YAML description of a decoded model, its
// animation tracks and a list of scripted edits.
//
// Bones, materials, objects and shapes are referenced by name; the loader
// resolves them to indices and reports every bad reference at once.
package scenefile

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/posekit/internal/engine/anim"
	"github.com/Faultbox/posekit/internal/engine/model"
	"github.com/Faultbox/posekit/internal/engine/skeleton"
)

// Scene is a decoded scene file.
type Scene struct {
	Definition model.Definition
	Tracks     []anim.Track
	Edits      []Edit
}

// Edit is one scripted edit transaction. Bone is skeleton.NoParent for a
// vertex edit.
type Edit struct {
	Bone            int
	Transform       skeleton.Transform
	Vertex          int
	Position        [3]float32
	UpdateBindState bool
	UpdateBoneOnly  bool
}

// IsBone reports whether the edit moves a bone.
func (e Edit) IsBone() bool { return e.Bone != skeleton.NoParent }

// Track returns the first track with the given name.
func (s *Scene) Track(name string) (anim.Track, bool) {
	for _, t := range s.Tracks {
		if t.TrackName() == name {
			return t, true
		}
	}
	return nil, false
}

// Load reads and converts a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene from YAML. Unknown fields are errors.
func Parse(data []byte) (*Scene, error) {
	var doc sceneDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return doc.convert()
}

type sceneDoc struct {
	Name        string        `yaml:"name"`
	Bones       []boneDoc     `yaml:"bones"`
	Vertices    []vertexDoc   `yaml:"vertices"`
	Indices     []uint32      `yaml:"indices"`
	Materials   []materialDoc `yaml:"materials"`
	Objects     []objectDoc   `yaml:"objects"`
	ColorGroups int           `yaml:"color_groups"`
	Shapes      []shapeDoc    `yaml:"shapes"`
	Tracks      []trackDoc    `yaml:"tracks"`
	Edits       []editDoc     `yaml:"edits"`
}

type boneDoc struct {
	Name        string      `yaml:"name"`
	Parent      string      `yaml:"parent"` // empty for the root
	Scale       *[3]float32 `yaml:"scale"`
	Rotate      [3]float32  `yaml:"rotate"` // degrees
	Translate   [3]float32  `yaml:"translate"`
	NoTransform bool        `yaml:"no_transform"`
	Billboard   bool        `yaml:"billboard"`
}

type vertexDoc struct {
	Position   [3]float32  `yaml:"position"`
	Normal     [3]float32  `yaml:"normal"`
	UV         [2]float32  `yaml:"uv"`
	Color      *[4]float32 `yaml:"color"`
	ColorGroup *int        `yaml:"color_group"`
	Weights    []weightDoc `yaml:"weights"`
}

type weightDoc struct {
	Bone   string  `yaml:"bone"`
	Weight float32 `yaml:"weight"`
}

type materialDoc struct {
	Name    string `yaml:"name"`
	Texture int    `yaml:"texture"`
}

type objectDoc struct {
	Name     string `yaml:"name"`
	Material string `yaml:"material"`
	Start    int32  `yaml:"start"`
	Count    int32  `yaml:"count"`
	Hidden   bool   `yaml:"hidden"`
}

type shapeDoc struct {
	Name     string       `yaml:"name"`
	Vertices []int        `yaml:"vertices"`
	Deltas   [][3]float32 `yaml:"deltas"`
}

// curveDoc is a list of keys, each [frame, value] or [frame, value, tangent].
type curveDoc [][]float32

type vec3CurveDoc struct {
	X curveDoc `yaml:"x"`
	Y curveDoc `yaml:"y"`
	Z curveDoc `yaml:"z"`
}

type vec2CurveDoc struct {
	X curveDoc `yaml:"x"`
	Y curveDoc `yaml:"y"`
}

type trackDoc struct {
	Kind   string `yaml:"kind"`
	Name   string `yaml:"name"`
	Frames int    `yaml:"frames"`
	Interp string `yaml:"interp"`

	Bones     []boneChannelDoc     `yaml:"bones"`
	Materials []materialChannelDoc `yaml:"materials"`
	Shapes    []shapeChannelDoc    `yaml:"shapes"`
	Objects   []objectChannelDoc   `yaml:"objects"`
	Groups    []groupChannelDoc    `yaml:"groups"`
}

type boneChannelDoc struct {
	Bone      string       `yaml:"bone"`
	Scale     vec3CurveDoc `yaml:"scale"`
	Rotate    vec3CurveDoc `yaml:"rotate"`
	Translate vec3CurveDoc `yaml:"translate"`
}

// materialChannelDoc serves both texture SRT and pattern tracks.
type materialChannelDoc struct {
	Material  string       `yaml:"material"`
	Scale     vec2CurveDoc `yaml:"scale"`
	Rotate    curveDoc     `yaml:"rotate"`
	Translate vec2CurveDoc `yaml:"translate"`
	Textures  [][2]int     `yaml:"textures"` // [frame, texture]
}

type shapeChannelDoc struct {
	Shape  string   `yaml:"shape"`
	Weight curveDoc `yaml:"weight"`
}

type objectChannelDoc struct {
	Object string `yaml:"object"`
	Frames []bool `yaml:"frames"`
}

type groupChannelDoc struct {
	Group int           `yaml:"group"`
	Keys  []colorKeyDoc `yaml:"keys"`
}

type colorKeyDoc struct {
	Frame float32    `yaml:"frame"`
	Color [4]float32 `yaml:"color"`
}

type editDoc struct {
	Bone      string      `yaml:"bone"`
	Scale     *[3]float32 `yaml:"scale"`
	Rotate    *[3]float32 `yaml:"rotate"`
	Translate *[3]float32 `yaml:"translate"`
	Bind      bool        `yaml:"bind"`
	BoneOnly  bool        `yaml:"bone_only"`

	Vertex   *int        `yaml:"vertex"`
	Position *[3]float32 `yaml:"position"`
}
