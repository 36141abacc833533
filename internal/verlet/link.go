package verlet

import (
	"fmt"
	"iter"
)

// Link is a distance constraint between two particles.
type Link struct {
	A, B   Handle
	Target float64
	// SnapDistance removes the link once its endpoints are further apart.
	// Zero means the link never snaps.
	SnapDistance float64
}

func (l Link) validate() error {
	switch {
	case l.A.IsZero() || l.B.IsZero():
		return fmt.Errorf("%w: zero handle", ErrInvalidConstraint)
	case l.A == l.B:
		return fmt.Errorf("%w: link %v to itself", ErrInvalidConstraint, l.A)
	case !(l.Target > 0):
		return fmt.Errorf("%w: target distance %g", ErrInvalidConstraint, l.Target)
	case l.SnapDistance < 0:
		return fmt.Errorf("%w: snap distance %g", ErrInvalidConstraint, l.SnapDistance)
	}
	return nil
}

// ConstraintStore is an insertion-ordered collection of links.
type ConstraintStore struct {
	links growable[Link]
}

// NewConstraintStore creates an empty store. maxCap of 0 means unbounded.
func NewConstraintStore(initialCap, maxCap int) *ConstraintStore {
	return &ConstraintStore{links: newGrowable[Link](initialCap, maxCap)}
}

func (c *ConstraintStore) Len() int { return c.links.len() }
func (c *ConstraintStore) Cap() int { return c.links.cap() }

// Add appends l and returns its index.
func (c *ConstraintStore) Add(l Link) (int, error) {
	if err := l.validate(); err != nil {
		return -1, err
	}
	return c.links.push(l)
}

func (c *ConstraintStore) Get(i int) (*Link, error) { return c.links.at(i) }

// Remove deletes the link at i, shifting later links down one index.
func (c *ConstraintStore) Remove(i int) error { return c.links.removeAt(i) }

// RemoveIf deletes every link for which pred returns true and returns the
// number removed.
func (c *ConstraintStore) RemoveIf(pred func(i int, l *Link) bool) int {
	w := 0
	items := c.links.items
	for r := range items {
		if pred(r, &items[r]) {
			continue
		}
		if w != r {
			items[w] = items[r]
		}
		w++
	}
	removed := len(items) - w
	c.links.truncate(w)
	return removed
}

// All iterates links in insertion order.
func (c *ConstraintStore) All() iter.Seq2[int, *Link] {
	return func(yield func(int, *Link) bool) {
		for i := range c.links.items {
			if !yield(i, &c.links.items[i]) {
				return
			}
		}
	}
}

// Touches reports whether l references h.
func (l Link) Touches(h Handle) bool { return l.A == h || l.B == h }

func (c *ConstraintStore) Reset() { c.links.truncate(0) }
