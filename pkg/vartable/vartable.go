// Package vartable implements the flow-sensitive variable table from
// spec §4.6: a stack of Scope/Branch frames with branch-merge-by-union
// semantics.
package vartable

import "github.com/tidesmith/symbolcore/pkg/langtype"

// frame is either a Scope or a Branch. branches records every child
// Branch pushed under this frame, for later PruneBranches.
type frame struct {
	isBranch  bool
	variables map[string]langtype.TypeString
	branches  []*frame
}

func newFrame(isBranch bool) *frame {
	return &frame{isBranch: isBranch, variables: map[string]langtype.TypeString{}}
}

// Table is the variable table: a stack whose bottom frame is always a
// Scope (spec §3 invariant).
type Table struct {
	frames []*frame
}

// New returns a Table with a single bottom Scope frame.
func New() *Table {
	return &Table{frames: []*frame{newFrame(false)}}
}

func (t *Table) top() *frame { return t.frames[len(t.frames)-1] }

// PushScope pushes a new Scope. If carry is non-empty, each named
// variable's current type (looked up in the enclosing scopes before
// this Scope hides them) is copied into the new frame.
func (t *Table) PushScope(carry []string) {
	carried := make(map[string]langtype.TypeString, len(carry))
	for _, name := range carry {
		if ty := t.GetType(name, ""); !ty.IsEmpty() {
			carried[name] = ty
		}
	}
	nf := newFrame(false)
	for name, ty := range carried {
		nf.variables[name] = ty
	}
	t.frames = append(t.frames, nf)
}

// PopScope pops the top Scope frame.
func (t *Table) PopScope() {
	t.frames = t.frames[:len(t.frames)-1]
}

// PushBranch pushes a Branch under the current top, recording it in
// the parent's branch list for a later PruneBranches.
func (t *Table) PushBranch() {
	parent := t.top()
	br := newFrame(true)
	parent.branches = append(parent.branches, br)
	t.frames = append(t.frames, br)
}

// PopBranch pops the top Branch frame. The branch's recorded variables
// remain reachable through the parent's branch list until pruned.
func (t *Table) PopBranch() {
	t.frames = t.frames[:len(t.frames)-1]
}

// PruneBranches merges every recorded child Branch of the current top
// into the top's own variable mapping: each variable's type becomes
// the union of its type across branches and any pre-existing value.
func (t *Table) PruneBranches() {
	top := t.top()
	for _, br := range top.branches {
		for name, ty := range br.variables {
			if existing, ok := top.variables[name]; ok {
				top.variables[name] = existing.Merge(ty)
			} else {
				top.variables[name] = ty
			}
		}
	}
	top.branches = nil
}

// SetType writes name's type into the current top frame. Empty names
// or empty types are ignored.
func (t *Table) SetType(name string, ty langtype.TypeString) {
	if name == "" || ty.IsEmpty() {
		return
	}
	t.top().variables[name] = ty
}

// SetTypeMany is a bulk convenience form of SetType.
func (t *Table) SetTypeMany(names []string, ty langtype.TypeString) {
	for _, n := range names {
		t.SetType(n, ty)
	}
}

// GetType returns name's type, walking frames top-down. `$this`
// resolves directly to thisName. Per spec invariant, the walk never
// crosses a Scope boundary upward: once a Scope frame is reached with
// no match, the search stops there even if lower frames exist.
func (t *Table) GetType(name, thisName string) langtype.TypeString {
	if name == "$this" {
		return langtype.New(thisName)
	}
	for i := len(t.frames) - 1; i >= 0; i-- {
		f := t.frames[i]
		if ty, ok := f.variables[name]; ok {
			return ty
		}
		if !f.isBranch {
			break
		}
	}
	return langtype.Empty()
}
