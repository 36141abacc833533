package verlet

import "gonum.org/v1/gonum/spatial/r2"

// Input is a snapshot of pointer state for one frame.
type Input struct {
	Cursor r2.Vec
	// Primary is held; PrimaryPressed is true only on the frame it went down.
	Primary        bool
	PrimaryPressed bool
	Secondary      bool
}

// PickAt returns the top-most particle under point.
func (w *World) PickAt(point r2.Vec) (Handle, bool) {
	for i := w.Particles.Len() - 1; i >= 0; i-- {
		if w.Particles.entries.items[i].p.Overlaps(point, 0) {
			return w.Particles.entries.items[i].h, true
		}
	}
	return Handle{}, false
}

// Drag moves the particle to point with zero velocity. A suspended
// particle's anchor follows.
func (w *World) Drag(h Handle, point r2.Vec) error {
	p, err := w.Particles.Lookup(h)
	if err != nil {
		return err
	}
	if p.Status == Suspended {
		p.Anchor = point
	}
	p.Position = point
	p.Previous = point
	return nil
}

// RemoveAt deletes every particle whose circle, padded by radius, contains
// point, along with their links.
func (w *World) RemoveAt(point r2.Vec, radius float64) int {
	n := w.Particles.RemoveIf(func(_ int, p *Particle) bool {
		return p.Overlaps(point, radius)
	})
	if n > 0 {
		w.pruneLinks()
	}
	return n
}

// Cut removes every link whose segment passes within tolerance of point.
func (w *World) Cut(point r2.Vec, tolerance float64) int {
	n := w.Links.RemoveIf(func(_ int, l *Link) bool {
		a, errA := w.Particles.Lookup(l.A)
		b, errB := w.Particles.Lookup(l.B)
		if errA != nil || errB != nil {
			return true
		}
		return segmentDistance(point, a.Position, b.Position) <= tolerance
	})
	if n > 0 {
		w.logger.Debug("cut links", "count", n, "x", point.X, "y", point.Y)
	}
	return n
}

// CullOutside deletes particles that no longer touch box, along with
// their links.
func (w *World) CullOutside(box Box) int {
	n := w.Particles.RemoveIf(func(_ int, p *Particle) bool {
		return !box.Intersects(p.Position, p.Radius)
	})
	if n > 0 {
		w.pruneLinks()
		w.logger.Debug("culled particles", "count", n)
	}
	return n
}

// Snap removes links stretched beyond their SnapDistance and links whose
// endpoints are gone.
func (w *World) Snap() int {
	n := w.Links.RemoveIf(func(_ int, l *Link) bool {
		a, errA := w.Particles.Lookup(l.A)
		b, errB := w.Particles.Lookup(l.B)
		if errA != nil || errB != nil {
			return true
		}
		return l.SnapDistance > 0 && r2.Norm(r2.Sub(a.Position, b.Position)) > l.SnapDistance
	})
	if n > 0 {
		w.logger.Debug("snapped links", "count", n, "step", w.steps)
	}
	return n
}

func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = clamp(t, 0, 1)
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}
