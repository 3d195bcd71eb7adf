package skeleton

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/posekit/pkg/math"
)

func bind(t [3]float32) Transform {
	tr := IdentityTransform()
	tr.Translate = t
	return tr
}

// armDefs is root -> upper -> lower, plus a helper under root.
func armDefs() []BoneDef {
	return []BoneDef{
		{Name: "root", Parent: NoParent, Bind: IdentityTransform()},
		{Name: "upper", Parent: 0, Bind: bind([3]float32{0, 1, 0})},
		{Name: "lower", Parent: 1, Bind: bind([3]float32{0, 1, 0})},
		{Name: "helper", Parent: 0, Bind: bind([3]float32{2, 0, 0})},
	}
}

func TestBuild(t *testing.T) {
	h, err := Build(armDefs())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.Len() != 4 {
		t.Errorf("expected 4 bones, got %d", h.Len())
	}
	if h.Root() != 0 {
		t.Errorf("expected root 0, got %d", h.Root())
	}
	if i, ok := h.Index("lower"); !ok || i != 2 {
		t.Errorf("Index(lower) = %d, %v", i, ok)
	}
	if got := h.Bone(0).Children; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("root children = %v, want [1 3]", got)
	}

	want := [3]float32{0, 2, 0}
	if got := h.World(2).Translation(); got != want {
		t.Errorf("lower world translation = %v, want %v", got, want)
	}
}

func TestBuildChildBeforeParent(t *testing.T) {
	defs := []BoneDef{
		{Name: "tip", Parent: 2, Bind: bind([3]float32{0, 0, 1})},
		{Name: "root", Parent: NoParent, Bind: IdentityTransform()},
		{Name: "mid", Parent: 1, Bind: bind([3]float32{0, 0, 1})},
	}
	h, err := Build(defs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	seen := make(map[int]bool)
	for _, i := range h.Order() {
		if p := h.Bone(i).Parent; p != NoParent && !seen[p] {
			t.Errorf("bone %d evaluated before its parent %d", i, p)
		}
		seen[i] = true
	}
	if got := h.World(0).Translation(); got != [3]float32{0, 0, 2} {
		t.Errorf("tip world translation = %v, want (0, 0, 2)", got)
	}
}

func TestBuildStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		defs []BoneDef
		kind StructureKind
	}{
		{name: "empty", defs: nil, kind: NoRoot},
		{
			name: "multiple roots",
			defs: []BoneDef{
				{Name: "a", Parent: NoParent, Bind: IdentityTransform()},
				{Name: "b", Parent: NoParent, Bind: IdentityTransform()},
			},
			kind: MultipleRoots,
		},
		{
			name: "cycle without root",
			defs: []BoneDef{
				{Name: "a", Parent: 1, Bind: IdentityTransform()},
				{Name: "b", Parent: 0, Bind: IdentityTransform()},
			},
			kind: Cycle,
		},
		{
			name: "cycle beside root",
			defs: []BoneDef{
				{Name: "root", Parent: NoParent, Bind: IdentityTransform()},
				{Name: "a", Parent: 2, Bind: IdentityTransform()},
				{Name: "b", Parent: 1, Bind: IdentityTransform()},
			},
			kind: Cycle,
		},
		{
			name: "self parent",
			defs: []BoneDef{
				{Name: "a", Parent: 0, Bind: IdentityTransform()},
			},
			kind: BadParent,
		},
		{
			name: "parent out of range",
			defs: []BoneDef{
				{Name: "root", Parent: NoParent, Bind: IdentityTransform()},
				{Name: "a", Parent: 7, Bind: IdentityTransform()},
			},
			kind: BadParent,
		},
		{
			name: "duplicate name",
			defs: []BoneDef{
				{Name: "root", Parent: NoParent, Bind: IdentityTransform()},
				{Name: "root", Parent: 0, Bind: IdentityTransform()},
			},
			kind: DuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.defs)
			var serr *StructureError
			if !errors.As(err, &serr) {
				t.Fatalf("expected *StructureError, got %v", err)
			}
			if serr.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v (%v)", tt.kind, serr.Kind, err)
			}
		})
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	h, err := Build(armDefs())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	pose := IdentityTransform()
	pose.Rotate = [3]float32{13, 27, 41}
	pose.Translate = [3]float32{0.1, 1, 0.3}
	h.SetAnimatedLocal(1, pose)

	h.RecomputeWorldTransforms(nil)
	first := h.Worlds()
	for i := 0; i < 100; i++ {
		h.RecomputeWorldTransforms(nil)
	}
	second := h.Worlds()

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("bone %d drifted after repeated recompute", i)
		}
	}
}

func TestResetToBindIsExact(t *testing.T) {
	h, err := Build(armDefs())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	bindWorlds := h.Worlds()

	pose := IdentityTransform()
	pose.Rotate = [3]float32{0, 90, 0}
	h.SetAnimatedLocal(1, pose)
	h.RecomputeWorldTransforms(nil)
	if h.AtBind(2) {
		t.Fatal("lower should have moved with its parent")
	}

	h.ResetToBind()
	for i, w := range h.Worlds() {
		if w != bindWorlds[i] {
			t.Errorf("bone %d not restored bit-for-bit", i)
		}
		if !h.AtBind(i) || h.IsAnimated(i) {
			t.Errorf("bone %d should be at bind without override", i)
		}
	}
}

func TestBillboardIgnoresParentRotation(t *testing.T) {
	defs := []BoneDef{
		{Name: "root", Parent: NoParent, Bind: IdentityTransform()},
		{Name: "sprite", Parent: 0, Bind: bind([3]float32{0, 0, 3}), Billboard: true},
	}
	h, err := Build(defs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	view := math.QuatFromAxisAngle(math.Vec3{Y: 1}, float32(gomath.Pi/6))
	facing := view.Conjugate().ToMat4()

	for _, angle := range []float32{0, 45, 90, 180} {
		rootPose := IdentityTransform()
		rootPose.Rotate = [3]float32{0, angle, 0}
		h.SetAnimatedLocal(0, rootPose)
		h.RecomputeWorldTransforms(&view)

		w := h.World(1)
		var rot math.Mat4 = w
		rot[12], rot[13], rot[14] = 0, 0, 0
		if !rot.NearlyEqual(facing, 1e-5) {
			t.Errorf("parent at %v deg: billboard rotation %v, want %v", angle, rot, facing)
		}

		// translation still follows the parent
		want := h.World(0).TransformPoint([3]float32{0, 0, 3})
		if !math.NearlyEqual3(w.Translation(), want, 1e-5) {
			t.Errorf("parent at %v deg: billboard translation %v, want %v", angle, w.Translation(), want)
		}
	}
}

func TestBillboardKeepsInheritedScale(t *testing.T) {
	root := IdentityTransform()
	root.Scale = [3]float32{2, 2, 2}
	root.Rotate = [3]float32{0, 0, 30}
	defs := []BoneDef{
		{Name: "root", Parent: NoParent, Bind: root},
		{Name: "sprite", Parent: 0, Bind: IdentityTransform(), Billboard: true},
	}
	h, err := Build(defs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	view := math.QuatIdentity()
	h.RecomputeWorldTransforms(&view)
	if s := h.World(1).AxisScale(); !math.NearlyEqual3(s, [3]float32{2, 2, 2}, 1e-5) {
		t.Errorf("billboard scale = %v, want (2, 2, 2)", s)
	}
}

func TestNoTransformBoneInheritsParent(t *testing.T) {
	defs := armDefs()
	defs[1].NoTransform = true
	h, err := Build(defs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.World(1) != h.World(0) {
		t.Error("NoTransform bone should share its parent's world")
	}
	if got := h.World(2).Translation(); got != [3]float32{0, 1, 0} {
		t.Errorf("child of NoTransform bone: translation %v, want (0, 1, 0)", got)
	}
}

func TestSetBindLocal(t *testing.T) {
	h, err := Build(armDefs())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	h.SetBindLocal(1, bind([3]float32{0, 5, 0}))
	h.RecomputeWorldTransforms(nil)

	if got := h.BindWorld(2).Translation(); got != [3]float32{0, 6, 0} {
		t.Errorf("lower bind translation = %v, want (0, 6, 0)", got)
	}
	for i := 0; i < h.Len(); i++ {
		if !h.AtBind(i) {
			t.Errorf("bone %d should sit at the new bind pose", i)
		}
	}
}

func TestDescendantsAndClone(t *testing.T) {
	h, err := Build(armDefs())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := h.Descendants(1)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Descendants(1) = %v, want [1 2]", got)
	}

	c := h.Clone()
	c.SetBindLocal(3, bind([3]float32{9, 9, 9}))
	if h.BindLocal(3).Translate == c.BindLocal(3).Translate {
		t.Error("clone should not share bone storage")
	}
}
