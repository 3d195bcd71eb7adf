package undo

import (
	"errors"
	"fmt"
)

var (
	// ErrEditInProgress is returned by BeginEdit while a transaction is open.
	ErrEditInProgress = errors.New("undo: edit already in progress")
	// ErrNoEdit is returned by edit calls made outside a transaction.
	ErrNoEdit = errors.New("undo: no edit in progress")
	// ErrBoneOnly is returned when a vertex edit is attempted in a bone-only
	// transaction.
	ErrBoneOnly = errors.New("undo: bone-only edit cannot move vertices")
)

// EmptyStackError is returned by Undo or Redo when there is nothing to do.
// It is recoverable: the session is unchanged.
type EmptyStackError struct {
	Op string // "undo" or "redo"
}

func (e *EmptyStackError) Error() string {
	return fmt.Sprintf("undo: nothing to %s", e.Op)
}

// TargetError reports an edit to a bone or vertex outside the open
// transaction's target set.
type TargetError struct {
	What  string // "bone" or "vertex"
	Index int
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("undo: %s %d is not part of the open edit", e.What, e.Index)
}
