// Package overlay holds the named overlay entries and their transform state.
package overlay

import (
	"fmt"
	"image"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// NotFoundError reports an operation on a name that is not loaded.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("overlay %q not found", e.Name) }

// DuplicateNameError reports a load under a name already in use.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string { return fmt.Sprintf("overlay %q already loaded", e.Name) }

// DuplicatePolicy decides what Load does with a name already in use.
type DuplicatePolicy int

const (
	// DuplicateSuffix appends _1, _2, ... until the name is free.
	DuplicateSuffix DuplicatePolicy = iota
	// DuplicateReject fails with DuplicateNameError.
	DuplicateReject
)

// ParseDuplicatePolicy accepts "suffix" or "reject".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "suffix", "rename":
		return DuplicateSuffix, nil
	case "reject", "strict", "error":
		return DuplicateReject, nil
	}
	return DuplicateSuffix, fmt.Errorf("unknown duplicate policy %q", s)
}

func (p DuplicatePolicy) String() string {
	if p == DuplicateReject {
		return "reject"
	}
	return "suffix"
}

// Options configure a Set.
type Options struct {
	Duplicates          DuplicatePolicy
	Undo                UndoPolicy
	DefaultTransparency float64
}

// Set is the ordered collection of entries. Insertion order is draw order,
// the last entry is drawn on top.
type Set struct {
	opts    Options
	entries map[string]*Entry
	order   []string
	active  string
}

// NewSet returns an empty set.
func NewSet(opts Options) *Set {
	if opts.DefaultTransparency <= 0 {
		opts.DefaultTransparency = 1
	}
	return &Set{opts: opts, entries: make(map[string]*Entry)}
}

// SetOptions replaces the options used for future loads.
func (s *Set) SetOptions(opts Options) {
	if opts.DefaultTransparency <= 0 {
		opts.DefaultTransparency = 1
	}
	s.opts = opts
	for _, e := range s.entries {
		e.History.Policy = opts.Undo
	}
}

func (s *Set) Options() Options { return s.opts }

// Load adds src under name, centred on center, and makes it active. The
// returned entry carries the name actually used.
func (s *Set) Load(name string, src *image.RGBA, center r2.Vec) (*Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "image"
	}
	if _, ok := s.entries[name]; ok {
		if s.opts.Duplicates == DuplicateReject {
			return nil, &DuplicateNameError{Name: name}
		}
		name = s.uniqueName(name)
	}
	e := &Entry{
		Name:      name,
		Source:    src,
		Visible:   true,
		Transform: NewTransform(center, s.opts.DefaultTransparency),
		History:   History{Policy: s.opts.Undo},
	}
	s.entries[name] = e
	s.order = append(s.order, name)
	s.active = name
	return e, nil
}

func (s *Set) uniqueName(base string) string {
	for i := 1; ; i++ {
		n := fmt.Sprintf("%s_%d", base, i)
		if _, ok := s.entries[n]; !ok {
			return n
		}
	}
}

// Get returns the named entry.
func (s *Set) Get(name string) (*Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Active returns the active entry or nil.
func (s *Set) Active() *Entry {
	if s.active == "" {
		return nil
	}
	return s.entries[s.active]
}

func (s *Set) ActiveName() string { return s.active }

// SetActive selects name. Selecting the active entry again is a no-op.
func (s *Set) SetActive(name string) error {
	if _, ok := s.entries[name]; !ok {
		return &NotFoundError{Name: name}
	}
	s.active = name
	return nil
}

// SetVisible shows or hides name. The transform is left untouched.
func (s *Set) SetVisible(name string, visible bool) error {
	e, ok := s.entries[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	e.Visible = visible
	return nil
}

// IsVisible reports false for unknown names.
func (s *Set) IsVisible(name string) bool {
	e, ok := s.entries[name]
	return ok && e.Visible
}

// Delete removes name. If it was active the first remaining visible entry
// takes over, or nothing when none is visible.
func (s *Set) Delete(name string) error {
	if _, ok := s.entries[name]; !ok {
		return &NotFoundError{Name: name}
	}
	delete(s.entries, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.active == name {
		s.active = ""
		for _, n := range s.order {
			if s.entries[n].Visible {
				s.active = n
				break
			}
		}
	}
	return nil
}

// Names lists entries in draw order.
func (s *Set) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Set) Len() int { return len(s.order) }

// Visible returns the visible entries in draw order.
func (s *Set) Visible() []*Entry {
	var out []*Entry
	for _, n := range s.order {
		if e := s.entries[n]; e.Visible {
			out = append(out, e)
		}
	}
	return out
}

// EntryAt returns the topmost visible entry whose scaled bounds contain p.
func (s *Set) EntryAt(p image.Point) *Entry {
	for i := len(s.order) - 1; i >= 0; i-- {
		e := s.entries[s.order[i]]
		if e.Visible && p.In(e.Bounds()) {
			return e
		}
	}
	return nil
}

// Next returns the entry after the active one in draw order, wrapping.
func (s *Set) Next() *Entry {
	if len(s.order) == 0 {
		return nil
	}
	idx := -1
	for i, n := range s.order {
		if n == s.active {
			idx = i
			break
		}
	}
	return s.entries[s.order[(idx+1)%len(s.order)]]
}
