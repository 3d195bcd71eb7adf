package skin

// Normalize repairs an influence table for callers that choose to fix rather
// than reject an InfluenceError: weights on missing bones or with
// non-positive values are dropped and the rest are rescaled to sum to 1.
// Vertices left with no usable weight stay empty and still fail Build.
func Normalize(table []Influence, boneCount int) []Influence {
	out := make([]Influence, len(table))
	for v, inf := range table {
		var kept Influence
		var sum float32
		for _, w := range inf {
			if w.Bone < 0 || w.Bone >= boneCount || w.Weight <= 0 {
				continue
			}
			kept = append(kept, w)
			sum += w.Weight
		}
		if sum == 0 {
			continue
		}
		for i := range kept {
			kept[i].Weight /= sum
		}
		if len(kept) == 1 {
			kept[0].Weight = 1
		}
		out[v] = kept
	}
	return out
}
