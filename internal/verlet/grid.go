package verlet

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pair is an unordered candidate collision pair stored with I < J.
type Pair struct{ I, J int }

func orderedPair(i, j int) Pair {
	if i > j {
		i, j = j, i
	}
	return Pair{I: i, J: j}
}

// Grid buckets particle indices into square cells over a fixed region.
// For the broad phase to find every contact, the cell size must be at
// least the largest particle diameter.
type Grid struct {
	origin     r2.Vec
	cellSize   float64
	cols, rows int
	cells      [][]int
}

// NewGrid covers the square of half-size halfExtent around center.
func NewGrid(center r2.Vec, halfExtent, cellSize float64) (*Grid, error) {
	if !(cellSize > 0) || !(halfExtent > 0) {
		return nil, fmt.Errorf("%w: grid extent %g cell %g", ErrInvalidConfig, halfExtent, cellSize)
	}
	n := int(math.Ceil(2 * halfExtent / cellSize))
	g := &Grid{
		origin:   r2.Vec{X: center.X - halfExtent, Y: center.Y - halfExtent},
		cellSize: cellSize,
		cols:     n,
		rows:     n,
		cells:    make([][]int, n*n),
	}
	for i := range g.cells {
		g.cells[i] = make([]int, 0, 4)
	}
	return g, nil
}

func (g *Grid) Cols() int         { return g.cols }
func (g *Grid) Rows() int         { return g.rows }
func (g *Grid) CellSize() float64 { return g.cellSize }
func (g *Grid) Origin() r2.Vec    { return g.origin }

// Cell returns the indices bucketed in a cell, or nil when out of range.
func (g *Grid) Cell(col, row int) []int {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return nil
	}
	return g.cells[row*g.cols+col]
}

// CellOf returns the cell containing pos.
func (g *Grid) CellOf(pos r2.Vec) (col, row int, ok bool) {
	fx := math.Floor((pos.X - g.origin.X) / g.cellSize)
	fy := math.Floor((pos.Y - g.origin.Y) / g.cellSize)
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return 0, 0, false
	}
	if fx < 0 || fy < 0 || fx >= float64(g.cols) || fy >= float64(g.rows) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

// Clear empties every cell, keeping allocated capacity.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert buckets index at pos. Positions outside the grid are dropped.
func (g *Grid) Insert(index int, pos r2.Vec) bool {
	col, row, ok := g.CellOf(pos)
	if !ok {
		return false
	}
	i := row*g.cols + col
	g.cells[i] = append(g.cells[i], index)
	return true
}

// Populate clears the grid and buckets every particle of s. It returns how
// many particles fell outside the grid.
func (g *Grid) Populate(s *ParticleStore) int {
	g.Clear()
	skipped := 0
	for i, p := range s.All() {
		if !g.Insert(i, p.Position) {
			skipped++
		}
	}
	return skipped
}

// VisitPairs calls fn for every candidate pair: same-cell pairs once, and
// for each cell the full cross product with each of its 8 neighbours. A
// pair spanning two cells is therefore visited from both sides.
func (g *Grid) VisitPairs(fn func(i, j int)) {
	g.VisitRows(0, g.rows, fn)
}

// VisitRows is VisitPairs restricted to cells in rows [r0, r1).
func (g *Grid) VisitRows(r0, r1 int, fn func(i, j int)) {
	r0 = max(r0, 0)
	r1 = min(r1, g.rows)
	for r := r0; r < r1; r++ {
		for c := 0; c < g.cols; c++ {
			cell := g.cells[r*g.cols+c]
			if len(cell) == 0 {
				continue
			}
			for a := 0; a < len(cell); a++ {
				for b := a + 1; b < len(cell); b++ {
					fn(cell[a], cell[b])
				}
			}
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					nr, nc := r+dr, c+dc
					if (dr == 0 && dc == 0) || nr < 0 || nr >= g.rows || nc < 0 || nc >= g.cols {
						continue
					}
					neighbor := g.cells[nr*g.cols+nc]
					for _, i := range cell {
						for _, j := range neighbor {
							fn(i, j)
						}
					}
				}
			}
		}
	}
}

// Bands splits the rows into consecutive bands of the given height
// (at least 2). Bands of equal parity never share a neighbouring row.
func (g *Grid) Bands(height int) [][2]int {
	height = max(height, 2)
	var bands [][2]int
	for r := 0; r < g.rows; r += height {
		bands = append(bands, [2]int{r, min(r+height, g.rows)})
	}
	return bands
}

// CandidatePairs returns the de-duplicated broad-phase pairs, sorted.
func (g *Grid) CandidatePairs() []Pair {
	seen := make(map[Pair]struct{})
	g.VisitPairs(func(i, j int) {
		seen[orderedPair(i, j)] = struct{}{}
	})
	return sortedPairs(seen)
}

// OverlappingPairs returns the broad-phase pairs whose circles overlap.
func (g *Grid) OverlappingPairs(s *ParticleStore) []Pair {
	seen := make(map[Pair]struct{})
	g.VisitPairs(func(i, j int) {
		if overlapping(&s.entries.items[i].p, &s.entries.items[j].p) {
			seen[orderedPair(i, j)] = struct{}{}
		}
	})
	return sortedPairs(seen)
}

// BruteForcePairs checks every pair of s for overlap in O(n²).
func BruteForcePairs(s *ParticleStore) []Pair {
	var pairs []Pair
	items := s.entries.items
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			if overlapping(&items[i].p, &items[j].p) {
				pairs = append(pairs, Pair{I: i, J: j})
			}
		}
	}
	return pairs
}

func overlapping(a, b *Particle) bool {
	r := a.Radius + b.Radius
	return r2.Norm2(r2.Sub(a.Position, b.Position)) < r*r
}

func sortedPairs(set map[Pair]struct{}) []Pair {
	pairs := make([]Pair, 0, len(set))
	for p := range set {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b Pair) int {
		if c := cmp.Compare(a.I, b.I); c != 0 {
			return c
		}
		return cmp.Compare(a.J, b.J)
	})
	return pairs
}
