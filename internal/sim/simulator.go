package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/verletlab/internal/metrics"
	"github.com/san-kum/verletlab/internal/scene"
	"github.com/san-kum/verletlab/internal/verlet"
)

// Simulator drives a scene frame by frame without a window.
type Simulator struct {
	scene     scene.Scene
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(s scene.Scene, logger *log.Logger) *Simulator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{
		scene:     s,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Scene() scene.Scene     { return s.scene }

func DefaultMetrics(maxSpeed float64) []Metric {
	if maxSpeed <= 0 {
		maxSpeed = 10
	}
	return []Metric{
		metrics.NewKineticEnergy(),
		metrics.NewLinkStrain(),
		metrics.NewPenetration(),
		metrics.NewStability(maxSpeed),
		metrics.NewCount(),
	}
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	if cfg.RecordEvery < 0 {
		return nil, fmt.Errorf("record_every must be >= 0, got %d", cfg.RecordEvery)
	}
	input := cfg.Input
	if input == nil {
		input = s.scene.Script
	}

	w := s.scene.World()
	result := &Result{
		Scene:   s.scene.Name(),
		Times:   make([]float64, 0, cfg.Frames),
		Reports: make([]verlet.StepReport, 0, cfg.Frames),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Now()
	result.Frames = append(result.Frames, Capture(w, s.scene.Frame()))

	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			return result, ctx.Err()
		default:
		}

		frame := s.scene.Frame()
		report, err := s.scene.Update(input(frame))
		if err != nil {
			result.Errors = append(result.Errors, err)
			s.logger.Error("frame failed", "frame", frame, "err", err)
			break
		}
		result.Errors = append(result.Errors, report.Errors...)
		result.Reports = append(result.Reports, report)
		result.Times = append(result.Times, w.Time())
		result.FramesRun++

		for _, m := range s.metrics {
			m.Observe(w, w.Time())
		}
		for _, obs := range s.observers {
			obs.OnFrame(frame, w, report)
		}

		last := i == cfg.Frames-1
		if last || (cfg.RecordEvery > 0 && (i+1)%cfg.RecordEvery == 0) {
			result.Frames = append(result.Frames, Capture(w, s.scene.Frame()))
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)

	s.logger.Debug("run finished", "scene", result.Scene, "frames", result.FramesRun,
		"errors", len(result.Errors), "elapsed", result.Elapsed)
	return result, nil
}
