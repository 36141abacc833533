package verlet

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func fill(t *testing.T, s *ParticleStore, n int) []Handle {
	t.Helper()
	handles := make([]Handle, n)
	for i := range n {
		idx, err := s.Add(NewParticle(r2.Vec{X: float64(i)}, 1))
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		if idx != i {
			t.Fatalf("expected index %d, got %d", i, idx)
		}
		handles[i], _ = s.HandleAt(idx)
	}
	return handles
}

func TestParticleStoreGrowth(t *testing.T) {
	s := NewParticleStore(2, 0)
	fill(t, s, 9)

	if s.Len() != 9 {
		t.Errorf("expected len 9, got %d", s.Len())
	}
	if s.Cap() != 16 {
		t.Errorf("expected doubled cap 16, got %d", s.Cap())
	}
}

func TestParticleStoreCapacityExhausted(t *testing.T) {
	s := NewParticleStore(2, 3)
	fill(t, s, 3)

	_, err := s.Add(NewParticle(r2.Vec{}, 1))
	if !errors.Is(err, ErrCapacityExhausted) {
		t.Fatalf("expected ErrCapacityExhausted, got %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("failed add changed len to %d", s.Len())
	}
}

func TestParticleStoreRemoveReindexes(t *testing.T) {
	s := NewParticleStore(4, 0)
	handles := fill(t, s, 5)

	if err := s.Remove(2); err != nil {
		t.Fatal(err)
	}

	for i, want := range []float64{0, 1, 3, 4} {
		p, err := s.Get(i)
		if err != nil {
			t.Fatal(err)
		}
		if p.Position.X != want {
			t.Errorf("index %d: expected x=%v, got %v", i, want, p.Position.X)
		}
	}

	if _, err := s.Resolve(handles[2]); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected stale handle, got %v", err)
	}
	for orig, want := range map[int]int{0: 0, 1: 1, 3: 2, 4: 3} {
		got, err := s.Resolve(handles[orig])
		if err != nil {
			t.Fatalf("handle %d: %v", orig, err)
		}
		if got != want {
			t.Errorf("handle of particle %d: expected index %d, got %d", orig, want, got)
		}
	}
}

func TestParticleStoreOutOfRange(t *testing.T) {
	s := NewParticleStore(1, 0)
	fill(t, s, 2)

	tests := []int{-1, 2, 100}
	for _, i := range tests {
		if _, err := s.Get(i); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Get(%d): expected ErrOutOfRange, got %v", i, err)
		}
		if err := s.Remove(i); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Remove(%d): expected ErrOutOfRange, got %v", i, err)
		}
	}
}

func TestParticleStoreSlotReuse(t *testing.T) {
	s := NewParticleStore(1, 0)
	handles := fill(t, s, 2)

	if err := s.RemoveHandle(handles[0]); err != nil {
		t.Fatal(err)
	}
	idx, _ := s.Add(NewParticle(r2.Vec{X: 9}, 1))
	fresh, _ := s.HandleAt(idx)

	if fresh == handles[0] {
		t.Error("reused slot must not reproduce the stale handle")
	}
	if _, err := s.Lookup(handles[0]); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected stale handle, got %v", err)
	}
	p, err := s.Lookup(fresh)
	if err != nil || p.Position.X != 9 {
		t.Errorf("fresh handle resolved to %+v, %v", p, err)
	}
}

func TestParticleStoreRemoveIf(t *testing.T) {
	s := NewParticleStore(4, 0)
	handles := fill(t, s, 6)

	var seen []int
	removed := s.RemoveIf(func(i int, p *Particle) bool {
		seen = append(seen, i)
		return int(p.Position.X)%2 == 0
	})

	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}
	if len(seen) != 6 {
		t.Errorf("predicate should see every particle once, saw %v", seen)
	}
	for i, want := range []float64{1, 3, 5} {
		p, _ := s.Get(i)
		if p.Position.X != want {
			t.Errorf("index %d: expected x=%v, got %v", i, want, p.Position.X)
		}
		got, err := s.Resolve(handles[int(want)])
		if err != nil || got != i {
			t.Errorf("handle %d resolved to %d, %v", int(want), got, err)
		}
	}
}

func TestZeroHandle(t *testing.T) {
	s := NewParticleStore(1, 0)
	fill(t, s, 1)

	if !(Handle{}).IsZero() {
		t.Error("zero handle should report IsZero")
	}
	if _, err := s.Resolve(Handle{}); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected zero handle to be stale, got %v", err)
	}
}

func TestConstraintStoreValidation(t *testing.T) {
	s := NewParticleStore(2, 0)
	h := fill(t, s, 2)
	c := NewConstraintStore(1, 0)

	tests := []struct {
		name string
		link Link
		ok   bool
	}{
		{"valid", Link{A: h[0], B: h[1], Target: 5}, true},
		{"zero handle", Link{A: h[0], Target: 5}, false},
		{"self", Link{A: h[0], B: h[0], Target: 5}, false},
		{"zero target", Link{A: h[0], B: h[1]}, false},
		{"negative snap", Link{A: h[0], B: h[1], Target: 5, SnapDistance: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Add(tt.link)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConstraint) {
				t.Errorf("expected ErrInvalidConstraint, got %v", err)
			}
		})
	}
}

func TestConstraintStoreRemove(t *testing.T) {
	s := NewParticleStore(3, 0)
	h := fill(t, s, 3)
	c := NewConstraintStore(1, 0)
	for _, tgt := range []float64{1, 2, 3} {
		if _, err := c.Add(Link{A: h[0], B: h[1], Target: tgt}); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Remove(0); err != nil {
		t.Fatal(err)
	}
	l, _ := c.Get(0)
	if l.Target != 2 {
		t.Errorf("expected shifted link target 2, got %v", l.Target)
	}
	if err := c.Remove(5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}
