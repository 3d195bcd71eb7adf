package skeleton

import (
	"fmt"
	"strings"
)

// StructureKind classifies a malformed hierarchy.
type StructureKind int

const (
	NoRoot StructureKind = iota
	MultipleRoots
	Cycle
	BadParent
	DuplicateName
)

func (k StructureKind) String() string {
	switch k {
	case NoRoot:
		return "no root"
	case MultipleRoots:
		return "multiple roots"
	case Cycle:
		return "cycle"
	case BadParent:
		return "bad parent"
	case DuplicateName:
		return "duplicate name"
	default:
		return fmt.Sprintf("StructureKind(%d)", int(k))
	}
}

// StructureError reports a bone list that cannot form a single-rooted tree.
type StructureError struct {
	Kind  StructureKind
	Bones []string
}

func (e *StructureError) Error() string {
	if len(e.Bones) == 0 {
		return "skeleton: " + e.Kind.String()
	}
	return fmt.Sprintf("skeleton: %s: %s", e.Kind, strings.Join(e.Bones, ", "))
}
