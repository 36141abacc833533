package verlet

import (
	"fmt"
	"iter"
)

// Handle identifies a particle across removals and store growth. A handle
// to a removed particle fails with ErrStaleHandle instead of aliasing
// whichever particle now occupies its old index. The zero Handle is never
// valid.
type Handle struct {
	slot uint32
	gen  uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string { return fmt.Sprintf("#%d.%d", h.slot, h.gen) }

type slot struct {
	dense int
	gen   uint32
}

type entry struct {
	p Particle
	h Handle
}

// ParticleStore owns particle memory. Particles are addressed by dense
// index (insertion order, shifted on removal) or by Handle.
//
// Pointers returned by Get and Lookup are only valid until the next Add or
// Remove.
type ParticleStore struct {
	entries growable[entry]
	slots   []slot
	free    []uint32
}

// NewParticleStore creates an empty store. maxCap of 0 means unbounded.
func NewParticleStore(initialCap, maxCap int) *ParticleStore {
	return &ParticleStore{entries: newGrowable[entry](initialCap, maxCap)}
}

func (s *ParticleStore) Len() int { return s.entries.len() }
func (s *ParticleStore) Cap() int { return s.entries.cap() }

// Add appends p and returns its index.
func (s *ParticleStore) Add(p Particle) (int, error) {
	h := s.allocSlot()
	idx, err := s.entries.push(entry{p: p, h: h})
	if err != nil {
		s.releaseSlot(h)
		return -1, err
	}
	s.slots[h.slot].dense = idx
	return idx, nil
}

// Get returns the particle at index i.
func (s *ParticleStore) Get(i int) (*Particle, error) {
	e, err := s.entries.at(i)
	if err != nil {
		return nil, err
	}
	return &e.p, nil
}

// HandleAt returns the stable handle of the particle at index i.
func (s *ParticleStore) HandleAt(i int) (Handle, error) {
	e, err := s.entries.at(i)
	if err != nil {
		return Handle{}, err
	}
	return e.h, nil
}

// Resolve returns the current index of h.
func (s *ParticleStore) Resolve(h Handle) (int, error) {
	if int(h.slot) >= len(s.slots) {
		return -1, fmt.Errorf("%w: %v", ErrStaleHandle, h)
	}
	sl := s.slots[h.slot]
	if sl.gen != h.gen || sl.dense < 0 {
		return -1, fmt.Errorf("%w: %v", ErrStaleHandle, h)
	}
	return sl.dense, nil
}

// Lookup returns the particle identified by h.
func (s *ParticleStore) Lookup(h Handle) (*Particle, error) {
	i, err := s.Resolve(h)
	if err != nil {
		return nil, err
	}
	return &s.entries.items[i].p, nil
}

// Remove deletes the particle at index i. Every particle after i moves
// down one index; their handles remain valid.
func (s *ParticleStore) Remove(i int) error {
	e, err := s.entries.at(i)
	if err != nil {
		return err
	}
	h := e.h
	if err := s.entries.removeAt(i); err != nil {
		return err
	}
	for k := i; k < s.entries.len(); k++ {
		s.slots[s.entries.items[k].h.slot].dense = k
	}
	s.releaseSlot(h)
	return nil
}

// RemoveHandle deletes the particle identified by h.
func (s *ParticleStore) RemoveHandle(h Handle) error {
	i, err := s.Resolve(h)
	if err != nil {
		return err
	}
	return s.Remove(i)
}

// RemoveIf deletes every particle for which pred returns true, in one
// mark-and-compact pass. pred sees each particle exactly once with its
// index before compaction. Survivors keep their relative order.
func (s *ParticleStore) RemoveIf(pred func(i int, p *Particle) bool) int {
	w := 0
	items := s.entries.items
	for r := range items {
		if pred(r, &items[r].p) {
			s.releaseSlot(items[r].h)
			continue
		}
		if w != r {
			items[w] = items[r]
		}
		s.slots[items[w].h.slot].dense = w
		w++
	}
	removed := len(items) - w
	s.entries.truncate(w)
	return removed
}

// All iterates particles in index order.
func (s *ParticleStore) All() iter.Seq2[int, *Particle] {
	return func(yield func(int, *Particle) bool) {
		for i := range s.entries.items {
			if !yield(i, &s.entries.items[i].p) {
				return
			}
		}
	}
}

// Reset removes every particle and invalidates all handles.
func (s *ParticleStore) Reset() {
	for _, e := range s.entries.items {
		s.releaseSlot(e.h)
	}
	s.entries.truncate(0)
}

func (s *ParticleStore) allocSlot() Handle {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		return Handle{slot: idx, gen: s.slots[idx].gen}
	}
	s.slots = append(s.slots, slot{dense: -1, gen: 1})
	return Handle{slot: uint32(len(s.slots) - 1), gen: 1}
}

func (s *ParticleStore) releaseSlot(h Handle) {
	sl := &s.slots[h.slot]
	sl.dense = -1
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1
	}
	s.free = append(s.free, h.slot)
}
