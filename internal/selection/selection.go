// Package selection implements prefecture selection state and click semantics.
package selection

import "slices"

// Selection is an ordered, duplicate-free list of selected region ids.
type Selection []int

// Contains reports whether id is selected.
func (s Selection) Contains(id int) bool {
	return slices.Contains(s, id)
}

// Clone returns a copy that shares no backing array with s.
func (s Selection) Clone() Selection {
	if s == nil {
		return Selection{}
	}
	return slices.Clone(s)
}

// Toggle returns the selection after clicking id. It never modifies s.
//
// In single-select mode clicking the selected region clears the selection and
// clicking any other region replaces it. In multi-select mode membership of id
// is flipped and new ids are appended.
func Toggle(s Selection, id int, multi bool) Selection {
	if !multi {
		if s.Contains(id) {
			return Selection{}
		}
		return Selection{id}
	}

	if s.Contains(id) {
		out := make(Selection, 0, len(s))
		for _, v := range s {
			if v != id {
				out = append(out, v)
			}
		}
		return out
	}
	out := make(Selection, 0, len(s)+1)
	out = append(out, s...)
	return append(out, id)
}

// Source yields a caller-owned selection.
type Source func() Selection

// Controller applies click transitions.
type Controller interface {
	// ApplyClick handles a click on id. The bool is true when the controller
	// changed its own state; the returned Selection is then the new state.
	ApplyClick(id int) (Selection, bool)
	// Current returns the selection to render.
	Current() Selection
	// Controlled reports whether the selection belongs to the caller.
	Controlled() bool
}

// NewController picks the strategy once: a non-nil external source means the
// caller owns the selection for the controller's whole lifetime.
func NewController(external Source, multi bool) Controller {
	if external != nil {
		return &controlled{source: external}
	}
	return &uncontrolled{multi: multi, sel: Selection{}}
}

// uncontrolled owns its selection and mutates it on click.
type uncontrolled struct {
	multi bool
	sel   Selection
}

func (c *uncontrolled) ApplyClick(id int) (Selection, bool) {
	c.sel = Toggle(c.sel, id, c.multi)
	return c.sel.Clone(), true
}

func (c *uncontrolled) Current() Selection { return c.sel.Clone() }

func (c *uncontrolled) Controlled() bool { return false }

// controlled only reads the caller's selection; the caller's click handler
// is responsible for every transition.
type controlled struct {
	source Source
}

func (c *controlled) ApplyClick(int) (Selection, bool) { return nil, false }

func (c *controlled) Current() Selection { return c.source().Clone() }

func (c *controlled) Controlled() bool { return true }
