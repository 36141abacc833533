package verlet

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// StepReport summarises what happened during one step or frame.
// Collisions counts resolved pair visits; a pair spanning two cells is
// visited from both and may count twice.
type StepReport struct {
	Steps      int
	Collisions int
	Contacts   int
	OutOfGrid  int
	Pruned     int
	Snapped    int
	Culled     int
	Errors     []error
}

func (r *StepReport) merge(o StepReport) {
	r.Steps += o.Steps
	r.Collisions += o.Collisions
	r.Contacts += o.Contacts
	r.OutOfGrid += o.OutOfGrid
	r.Pruned += o.Pruned
	r.Snapped += o.Snapped
	r.Culled += o.Culled
	r.Errors = append(r.Errors, o.Errors...)
}

type Option func(*World)

func WithLogger(l *log.Logger) Option {
	return func(w *World) { w.logger = l }
}

func WithGravity(g r2.Vec) Option {
	return func(w *World) { w.gravity = g }
}

func WithContainer(c Container) Option {
	return func(w *World) { w.container = c }
}

// WithGridCenter fixes the centre of the broad-phase grid. By default the
// grid is centred on the container.
func WithGridCenter(c r2.Vec) Option {
	return func(w *World) {
		w.gridCenter = c
		w.gridCentered = true
	}
}

// World owns the particles, links and grid of one simulation.
type World struct {
	Particles *ParticleStore
	Links     *ConstraintStore

	cfg          Config
	grid         *Grid
	gridCenter   r2.Vec
	gridCentered bool
	gravity      r2.Vec
	container    Container
	logger       *log.Logger
	steps        int
	time         float64
}

func New(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:       cfg,
		Particles: NewParticleStore(cfg.InitialCapacity, cfg.MaxParticles),
		Links:     NewConstraintStore(cfg.InitialCapacity, cfg.MaxLinks),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(w)
	}
	if !w.gridCentered {
		w.gridCenter = containerCenter(w.container)
	}
	grid, err := NewGrid(w.gridCenter, cfg.GridExtent, cfg.CellSize)
	if err != nil {
		return nil, err
	}
	w.grid = grid
	return w, nil
}

func containerCenter(c Container) r2.Vec {
	switch c := c.(type) {
	case Circle:
		return c.Center
	case Box:
		return r2.Scale(0.5, r2.Add(c.Min, c.Max))
	}
	return r2.Vec{}
}

func (w *World) Config() Config           { return w.cfg }
func (w *World) Gravity() r2.Vec          { return w.gravity }
func (w *World) SetGravity(g r2.Vec)      { w.gravity = g }
func (w *World) Container() Container     { return w.container }
func (w *World) SetContainer(c Container) { w.container = c }
func (w *World) Grid() *Grid              { return w.grid }
func (w *World) Steps() int               { return w.steps }
func (w *World) Time() float64            { return w.time }

// UpdateConfig applies fn to a copy of the configuration and installs it
// if it validates against the current contents. The grid is rebuilt when
// its geometry changed; store limits take effect immediately.
func (w *World) UpdateConfig(fn func(*Config)) error {
	next := w.cfg
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	if next.CellSize < w.cfg.CellSize {
		for _, p := range w.Particles.All() {
			if 2*p.Radius > next.CellSize {
				return fmt.Errorf("%w: cell_size %g smaller than a particle of radius %g", ErrInvalidConfig, next.CellSize, p.Radius)
			}
		}
	}
	if next.MaxParticles > 0 && w.Particles.Len() > next.MaxParticles {
		return fmt.Errorf("%w: max_particles %d below %d live particles", ErrInvalidConfig, next.MaxParticles, w.Particles.Len())
	}
	if next.MaxLinks > 0 && w.Links.Len() > next.MaxLinks {
		return fmt.Errorf("%w: max_links %d below %d links", ErrInvalidConfig, next.MaxLinks, w.Links.Len())
	}
	if next.CellSize != w.cfg.CellSize || next.GridExtent != w.cfg.GridExtent {
		grid, err := NewGrid(w.gridCenter, next.GridExtent, next.CellSize)
		if err != nil {
			return err
		}
		w.grid = grid
	}
	if err := errors.Join(
		w.Particles.entries.setLimit(next.MaxParticles),
		w.Links.links.setLimit(next.MaxLinks),
	); err != nil {
		return err
	}
	w.cfg = next
	return nil
}

// AddParticle stores p and returns its handle. The particle must fit in
// one grid cell.
func (w *World) AddParticle(p Particle) (Handle, error) {
	if 2*p.Radius > w.cfg.CellSize {
		return Handle{}, fmt.Errorf("%w: radius %g does not fit cell_size %g", ErrInvalidConfig, p.Radius, w.cfg.CellSize)
	}
	i, err := w.Particles.Add(p)
	if err != nil {
		return Handle{}, fmt.Errorf("add particle: %w", err)
	}
	return w.Particles.HandleAt(i)
}

// RemoveParticle deletes the particle and every link touching it.
func (w *World) RemoveParticle(h Handle) error {
	if err := w.Particles.RemoveHandle(h); err != nil {
		return err
	}
	w.Links.RemoveIf(func(_ int, l *Link) bool { return l.Touches(h) })
	return nil
}

// AddLink connects two live particles at the given rest distance.
func (w *World) AddLink(a, b Handle, target float64) (int, error) {
	return w.InsertLink(Link{A: a, B: b, Target: target})
}

func (w *World) InsertLink(l Link) (int, error) {
	if _, err := w.Particles.Resolve(l.A); err != nil && !l.A.IsZero() {
		return -1, err
	}
	if _, err := w.Particles.Resolve(l.B); err != nil && !l.B.IsZero() {
		return -1, err
	}
	i, err := w.Links.Add(l)
	if err != nil {
		return -1, fmt.Errorf("add link: %w", err)
	}
	return i, nil
}

func (w *World) RemoveLink(i int) error {
	return w.Links.Remove(i)
}

// Step advances the world by one sub-step of length dt: integrate, bucket
// and collide, clamp to the container, relax links. Per-element failures
// are collected in the report and never abort the step.
func (w *World) Step(dt float64) (StepReport, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return StepReport{}, fmt.Errorf("%w: dt %g", ErrInvalidStep, dt)
	}
	w.steps++
	report := StepReport{Steps: 1}

	for _, p := range w.Particles.All() {
		Integrate(p, w.gravity, dt, &w.cfg)
	}

	if w.cfg.Collide {
		report.OutOfGrid = w.grid.Populate(w.Particles)
		if w.cfg.Workers > 1 {
			report.merge(w.collideParallel())
		} else {
			report.merge(w.collideRows(0, w.grid.Rows()))
		}
	}

	if w.container != nil {
		for _, p := range w.Particles.All() {
			if !p.Movable() || !w.container.Constrain(p) {
				continue
			}
			report.Contacts++
			if w.cfg.ResetAccelerationOnContact {
				resetAcceleration(p, w.gravity)
			}
		}
	}

	report.merge(w.relaxLinks())
	report.Steps = 1
	w.time += dt
	return report, nil
}

func (w *World) collideRows(r0, r1 int) StepReport {
	var report StepReport
	items := w.Particles.entries.items
	w.grid.VisitRows(r0, r1, func(i, j int) {
		hit, err := ResolveCollision(&items[i].p, &items[j].p, w.cfg.CollisionScale)
		if err != nil {
			report.Errors = append(report.Errors, &ElementError{Step: w.steps, Kind: KindPair, Index: i, Other: j, Wrapped: err})
			return
		}
		if hit {
			report.Collisions++
			if w.cfg.ResetAccelerationOnContact {
				resetAcceleration(&items[i].p, w.gravity)
				resetAcceleration(&items[j].p, w.gravity)
			}
		}
	})
	return report
}

// collideParallel runs even row bands concurrently, then odd ones. Two
// bands of the same parity are at least two rows apart, so their
// neighbourhoods never share a particle.
func (w *World) collideParallel() StepReport {
	height := max(2, w.grid.Rows()/(2*w.cfg.Workers))
	bands := w.grid.Bands(height)
	results := make([]StepReport, len(bands))
	for parity := range 2 {
		var g errgroup.Group
		g.SetLimit(w.cfg.Workers)
		for b := parity; b < len(bands); b += 2 {
			g.Go(func() error {
				results[b] = w.collideRows(bands[b][0], bands[b][1])
				return nil
			})
		}
		_ = g.Wait()
	}
	var report StepReport
	for _, r := range results {
		report.merge(r)
	}
	return report
}

func (w *World) relaxLinks() StepReport {
	var report StepReport
	stale := false
	for i, l := range w.Links.All() {
		a, errA := w.Particles.Lookup(l.A)
		b, errB := w.Particles.Lookup(l.B)
		if err := firstErr(errA, errB); err != nil {
			report.Errors = append(report.Errors, &ElementError{Step: w.steps, Kind: KindLink, Index: i, Wrapped: err})
			stale = true
			continue
		}
		if _, err := RelaxLink(a, b, *l, w.cfg.LinkScale, w.cfg.LinkPolicy); err != nil {
			report.Errors = append(report.Errors, &ElementError{Step: w.steps, Kind: KindLink, Index: i, Wrapped: err})
		}
	}
	if stale {
		report.Pruned = w.pruneLinks()
	}
	return report
}

// pruneLinks removes links with an endpoint that no longer exists.
func (w *World) pruneLinks() int {
	n := w.Links.RemoveIf(func(_ int, l *Link) bool {
		_, errA := w.Particles.Resolve(l.A)
		_, errB := w.Particles.Resolve(l.B)
		return errA != nil || errB != nil
	})
	if n > 0 {
		w.logger.Debug("pruned stale links", "count", n, "step", w.steps)
	}
	return n
}

// Frame runs SubSteps sub-steps covering frameDt and then snaps
// overstretched links.
func (w *World) Frame(frameDt float64) (StepReport, error) {
	if !(frameDt > 0) || math.IsInf(frameDt, 0) {
		return StepReport{}, fmt.Errorf("%w: frame dt %g", ErrInvalidStep, frameDt)
	}
	dt := frameDt / float64(w.cfg.SubSteps)
	var report StepReport
	for range w.cfg.SubSteps {
		r, err := w.Step(dt)
		if err != nil {
			return report, err
		}
		report.merge(r)
	}
	report.Snapped = w.Snap()
	return report, nil
}

func resetAcceleration(p *Particle, gravity r2.Vec) {
	if p.Movable() {
		p.Acceleration = gravity
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
