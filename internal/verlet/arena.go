package verlet

import "fmt"

// growable is an append-only-at-the-end slice with explicit doubling growth
// and shift-left removal. maxCap of 0 means unbounded.
type growable[T any] struct {
	items  []T
	maxCap int
}

func newGrowable[T any](initialCap, maxCap int) growable[T] {
	if initialCap < 1 {
		initialCap = 1
	}
	if maxCap > 0 && initialCap > maxCap {
		initialCap = maxCap
	}
	return growable[T]{items: make([]T, 0, initialCap), maxCap: maxCap}
}

func (g *growable[T]) len() int { return len(g.items) }
func (g *growable[T]) cap() int { return cap(g.items) }

func (g *growable[T]) grow() error {
	n := cap(g.items) * 2
	if n == 0 {
		n = 1
	}
	if g.maxCap > 0 && n > g.maxCap {
		if cap(g.items) >= g.maxCap {
			return fmt.Errorf("%w: limit %d", ErrCapacityExhausted, g.maxCap)
		}
		n = g.maxCap
	}
	next := make([]T, len(g.items), n)
	copy(next, g.items)
	g.items = next
	return nil
}

// setLimit changes the hard cap. It fails when more than maxCap elements
// are already stored.
func (g *growable[T]) setLimit(maxCap int) error {
	if maxCap > 0 && len(g.items) > maxCap {
		return fmt.Errorf("%w: limit %d below %d stored", ErrCapacityExhausted, maxCap, len(g.items))
	}
	g.maxCap = maxCap
	return nil
}

func (g *growable[T]) push(v T) (int, error) {
	if g.maxCap > 0 && len(g.items) >= g.maxCap {
		return -1, fmt.Errorf("%w: limit %d", ErrCapacityExhausted, g.maxCap)
	}
	if len(g.items) == cap(g.items) {
		if err := g.grow(); err != nil {
			return -1, err
		}
	}
	g.items = append(g.items, v)
	return len(g.items) - 1, nil
}

func (g *growable[T]) check(i int) error {
	if i < 0 || i >= len(g.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, i, len(g.items))
	}
	return nil
}

func (g *growable[T]) at(i int) (*T, error) {
	if err := g.check(i); err != nil {
		return nil, err
	}
	return &g.items[i], nil
}

// removeAt shifts every later element down one slot.
func (g *growable[T]) removeAt(i int) error {
	if err := g.check(i); err != nil {
		return err
	}
	n := len(g.items)
	copy(g.items[i:], g.items[i+1:])
	var zero T
	g.items[n-1] = zero
	g.items = g.items[:n-1]
	return nil
}

// truncate zeroes the tail past n so dropped values can be collected.
func (g *growable[T]) truncate(n int) {
	var zero T
	for i := n; i < len(g.items); i++ {
		g.items[i] = zero
	}
	g.items = g.items[:n]
}
