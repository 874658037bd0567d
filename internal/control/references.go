package control

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/orthybt/orthy/internal/overlay"
)

// Reference is a built-in template overlay shipped with the binary.
type Reference struct {
	Name string
	File string
}

// References lists the reference overlays offered by the control panel.
func (c *Controller) References() []Reference { return c.references }

func (c *Controller) reference(name string) (Reference, bool) {
	for _, r := range c.references {
		if r.Name == name {
			return r, true
		}
	}
	return Reference{}, false
}

// referenceEntry returns the entry loaded for ref, if it is still in the set.
func (c *Controller) referenceEntry(ref Reference) (*overlay.Entry, bool) {
	e := c.refEntries[ref.Name]
	if e == nil {
		return nil, false
	}
	if got, ok := c.set.Get(e.Name); !ok || got != e {
		delete(c.refEntries, ref.Name)
		return nil, false
	}
	return e, true
}

// freeName returns base, or base_N when a user entry already holds base.
func (c *Controller) freeName(base string) string {
	name := base
	for i := 1; ; i++ {
		if _, taken := c.set.Get(name); !taken {
			return name
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

// ReferenceVisible reports whether the named reference overlay is shown.
func (c *Controller) ReferenceVisible(name string) bool {
	ref, ok := c.reference(name)
	if !ok {
		return false
	}
	e, ok := c.referenceEntry(ref)
	return ok && e.Visible
}

// ToggleReference shows the named reference overlay, loading it on first
// use, or hides it when visible. Showing one re-centres it and makes it
// active; hiding it gives focus back to whatever was active before. User
// entries that happen to share the reference's name are never touched.
func (c *Controller) ToggleReference(name string) error {
	ref, ok := c.reference(name)
	if !ok {
		return &overlay.NotFoundError{Name: name}
	}
	e, loaded := c.referenceEntry(ref)
	if loaded && e.Visible {
		c.hideReference(e)
		return nil
	}
	if !loaded {
		if c.decoder == nil || c.assets == nil {
			return errors.New("reference overlays unavailable")
		}
		img, err := c.decoder.DecodeFS(c.assets, ref.File)
		if err != nil {
			c.dialogs.Error("Error", fmt.Sprintf("Failed to load %s: %v", ref.Name, err))
			return err
		}
		prev := c.set.ActiveName()
		e, err = c.LoadImage(c.freeName(ref.Name), img)
		if err != nil {
			return err
		}
		e.Reference = true
		if c.refEntries == nil {
			c.refEntries = make(map[string]*overlay.Entry)
		}
		c.refEntries[ref.Name] = e
		c.previousActive = prev
	} else {
		if prev := c.set.ActiveName(); prev != e.Name {
			c.previousActive = prev
		}
	}
	c.dispatch("show_reference", func() bool {
		e.Visible = true
		e.Transform.MoveTo(r2.Add(c.CanvasCenter(), c.settings.ReferenceOffset))
		_ = c.set.SetActive(e.Name)
		return true
	})
	return nil
}

func (c *Controller) hideReference(e *overlay.Entry) {
	c.dispatch("hide_reference", func() bool {
		e.Visible = false
		if c.set.ActiveName() != e.Name {
			return true
		}
		if _, ok := c.set.Get(c.previousActive); ok && c.previousActive != e.Name {
			_ = c.set.SetActive(c.previousActive)
		} else if v := c.set.Visible(); len(v) > 0 {
			_ = c.set.SetActive(v[0].Name)
		}
		c.previousActive = ""
		return true
	})
}

// RemoveReferences deletes every reference overlay, as done on shutdown.
func (c *Controller) RemoveReferences() {
	for _, ref := range c.references {
		if e, ok := c.referenceEntry(ref); ok {
			_ = c.Delete(e.Name)
		}
	}
	c.refEntries = nil
}
