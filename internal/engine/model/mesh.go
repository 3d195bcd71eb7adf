package model

import (
	gomath "math"

	"github.com/Faultbox/posekit/pkg/math"
)

// GenerateNormals fills in bind normals from the triangle list for
// definitions that carry none. Face normals are accumulated per vertex and
// then averaged across vertices that share a position.
func GenerateNormals(vertices []BindVertex, indices []uint32) {
	acc := make([]math.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if a >= len(vertices) || b >= len(vertices) || c >= len(vertices) {
			continue
		}
		v0 := math.V3(vertices[a].Position)
		e1 := math.V3(vertices[b].Position).Sub(v0)
		e2 := math.V3(vertices[c].Position).Sub(v0)
		n := e1.Cross(e2)

		// Degenerate triangle
		if n.Length() < 1e-5 {
			continue
		}
		n = n.Normalize()
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	for i := range vertices {
		vertices[i].Normal = unitOrUp(acc[i])
	}
	SmoothNormals(vertices)
}

// HasNormals reports whether any vertex carries a non-zero normal.
func HasNormals(vertices []BindVertex) bool {
	for _, v := range vertices {
		if v.Normal != [3]float32{} {
			return true
		}
	}
	return false
}

// SmoothNormals averages normals at shared vertex positions.
// This reduces faceted appearance on split-vertex meshes.
func SmoothNormals(vertices []BindVertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}
		var sum math.Vec3
		for _, idx := range idxs {
			sum = sum.Add(math.V3(vertices[idx].Normal))
		}
		avg := unitOrUp(sum)
		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}

func unitOrUp(v math.Vec3) [3]float32 {
	if v.Length() < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return v.Normalize().Array()
}

func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{
		Min: [3]float32{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
		Max: [3]float32{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
	}
	for i := range vertices {
		updateBounds(&b, vertices[i].Position)
	}
	return b
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
