// Package export writes a model's resolved pose to glTF 2.0 so it can be
// inspected in any viewer.
package export

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/posekit/internal/engine/model"
	"github.com/Faultbox/posekit/internal/engine/skeleton"
	"github.com/Faultbox/posekit/internal/logger"
)

// Options control what is written.
type Options struct {
	// IncludeBones adds a node per bone carrying its resolved local matrix.
	IncludeBones bool
}

// Build converts the model's current resolved state into a glTF document.
// Hidden objects are left out; vertex data is shared by all primitives.
func Build(m *model.Model, opts Options) (*gltf.Document, error) {
	st := m.Resolve()
	if len(st.Vertices) == 0 {
		return nil, errors.New("export: model has no vertices")
	}

	doc := gltf.NewDocument()

	n := len(st.Vertices)
	pos := make([][3]float32, n)
	nrm := make([][3]float32, n)
	uv := make([][2]float32, n)
	col := make([][4]float32, n)
	for i, v := range st.Vertices {
		pos[i] = v.Position
		nrm[i] = v.Normal
		uv[i] = v.TexCoord
		col[i] = v.Color
	}
	attrs := map[string]int{
		"POSITION":   modeler.WritePosition(doc, pos),
		"NORMAL":     modeler.WriteNormal(doc, nrm),
		"TEXCOORD_0": modeler.WriteTextureCoord(doc, uv),
		"COLOR_0":    modeler.WriteColor(doc, col),
	}

	for i, mat := range m.Materials() {
		extras := map[string]any{"texture": mat.Texture}
		if o, ok := m.MaterialOverride(i); ok {
			extras["texture"] = o.Texture
			if o.HasSRT {
				extras["texMatrix"] = o.TexMatrix
			}
		}
		doc.Materials = append(doc.Materials, &gltf.Material{Name: mat.Name, Extras: extras})
	}

	indices := m.Indices()
	mesh := &gltf.Mesh{Name: m.Name()}
	for i, o := range m.Objects() {
		if !m.Visibility(i) || o.IndexCount <= 0 {
			continue
		}
		end := int(o.StartIndex) + int(o.IndexCount)
		if o.StartIndex < 0 || end > len(indices) {
			return nil, fmt.Errorf("export: object %q: indices %d..%d out of range", o.Name, o.StartIndex, end)
		}
		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Attributes: maps.Clone(attrs),
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices[o.StartIndex:end])),
			Material:   gltf.Index(o.Material),
		})
	}
	if len(m.Objects()) == 0 {
		p := &gltf.Primitive{Attributes: attrs}
		if len(indices) > 0 {
			p.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
		}
		mesh.Primitives = append(mesh.Primitives, p)
	}

	if len(mesh.Primitives) > 0 {
		doc.Meshes = append(doc.Meshes, mesh)
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: m.Name(), Mesh: gltf.Index(len(doc.Meshes) - 1)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	if opts.IncludeBones {
		addBones(doc, m.Skeleton(), st)
	}
	return doc, nil
}

// addBones writes the skeleton as a node tree. Each node carries the bone's
// resolved transform relative to its parent.
func addBones(doc *gltf.Document, h *skeleton.Hierarchy, st *model.State) {
	base := len(doc.Nodes)
	for i := 0; i < h.Len(); i++ {
		b := h.Bone(i)
		local := st.Bones[i]
		if b.Parent != skeleton.NoParent {
			local = st.Bones[b.Parent].Inverse().Mul(local)
		}
		node := &gltf.Node{Name: b.Name, Matrix: local.Float64()}
		for _, c := range b.Children {
			node.Children = append(node.Children, base+c)
		}
		doc.Nodes = append(doc.Nodes, node)
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, base+h.Root())
}

// Write builds the document and saves it. A .glb path gets the binary
// container; anything else is written as JSON with a sidecar .bin buffer.
func Write(path string, m *model.Model, opts Options) error {
	doc, err := Build(m, opts)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for i, b := range doc.Buffers {
			if b.URI == "" {
				b.URI = fmt.Sprintf("%s%d.bin", base, i)
			}
		}
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("export: writing %s: %w", path, err)
	}

	logger.Named("export").Info("pose exported",
		zap.String("path", path),
		zap.String("model", m.Name()),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("accessors", len(doc.Accessors)))
	return nil
}
