// Package sim advances the colony: fire, job assignment, character movement and work.
package sim

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/basebuilder/internal/ctxlog"
	"github.com/samdwyer/basebuilder/internal/entity"
	"github.com/samdwyer/basebuilder/internal/jobs"
	"github.com/samdwyer/basebuilder/internal/pathgraph"
	"github.com/samdwyer/basebuilder/internal/telemetry"
	"github.com/samdwyer/basebuilder/internal/world"
)

// DefaultMaxJobAttempts is how many failed routes a job survives before it is abandoned.
const DefaultMaxJobAttempts = 3

// ErrJobExists is returned when a job already covers one of the requested tiles.
var ErrJobExists = errors.New("a job already covers this tile")

// Options configures a Simulation.
type Options struct {
	Diagonals      bool
	MaxJobAttempts int
	Tracer         trace.Tracer
	// Meter creates the simulation and path graph counters. Defaults to the global provider.
	Meter metric.Meter
}

// Report lists what happened during one tick.
type Report struct {
	Burnt     []*world.Furniture
	Completed []*jobs.Job
	Abandoned []*jobs.Job
	// Cancelled holds jobs dropped because their furniture was removed since the previous tick.
	Cancelled []*jobs.Job
}

// Simulation owns the world's job queue and crew and keeps the path graph in step with the world.
// It registers itself as the world's change listener. It is not safe for concurrent use.
type Simulation struct {
	world *world.World
	paths *pathgraph.Controller
	queue *jobs.Queue
	crew  *entity.Crew

	maxAttempts int
	tracer      trace.Tracer
	completed   metric.Int64Counter

	cancelled []*jobs.Job
	ticks     uint64
	elapsed   float64
}

var _ world.ChangeListener = (*Simulation)(nil)

// New creates a simulation for w and takes over its change listener.
func New(w *world.World, opts Options) *Simulation {
	if opts.MaxJobAttempts <= 0 {
		opts.MaxJobAttempts = DefaultMaxJobAttempts
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.Tracer("sim")
	}
	pathOpts := []pathgraph.Option{pathgraph.WithDiagonals(opts.Diagonals)}
	if opts.Meter == nil {
		opts.Meter = telemetry.Meter("sim")
	} else {
		pathOpts = append(pathOpts, pathgraph.WithMeter(opts.Meter))
	}
	completed, err := opts.Meter.Int64Counter("sim.jobs_completed",
		metric.WithDescription("Number of jobs finished by characters"))
	if err != nil {
		completed = noop.Int64Counter{}
	}

	s := &Simulation{
		world:       w,
		paths:       pathgraph.NewController(w, pathOpts...),
		queue:       jobs.NewQueue(),
		crew:        entity.NewCrew(),
		maxAttempts: opts.MaxJobAttempts,
		tracer:      opts.Tracer,
		completed:   completed,
	}
	w.SetListener(s)
	return s
}

// World returns the simulated world.
func (s *Simulation) World() *world.World { return s.world }

// Paths returns the path controller kept in step with the world.
func (s *Simulation) Paths() *pathgraph.Controller { return s.paths }

// Queue returns the queue of unassigned jobs.
func (s *Simulation) Queue() *jobs.Queue { return s.queue }

// Crew returns the characters.
func (s *Simulation) Crew() *entity.Crew { return s.crew }

// Ticks returns the number of ticks run.
func (s *Simulation) Ticks() uint64 { return s.ticks }

// Elapsed returns the simulated seconds run.
func (s *Simulation) Elapsed() float64 { return s.elapsed }

// AddCharacter adds a character to the crew.
func (s *Simulation) AddCharacter(ch *entity.Character) {
	s.crew.Add(ch)
}

// Replace swaps in a new crew and job list, e.g. after loading a snapshot.
func (s *Simulation) Replace(chars []*entity.Character, queued []*jobs.Job) {
	s.crew.Reset()
	for _, ch := range chars {
		s.crew.Add(ch)
	}
	s.queue = jobs.NewQueue()
	for _, j := range queued {
		s.queue.Enqueue(j)
	}
	s.cancelled = nil
}

// Jobs returns every open job: assigned ones first in crew order, then the queue oldest first.
func (s *Simulation) Jobs() []*jobs.Job {
	var out []*jobs.Job
	for _, ch := range s.crew.All() {
		if ch.Job != nil {
			out = append(out, ch.Job)
		}
	}
	return append(out, s.queue.Jobs()...)
}

// JobAt returns the open job covering p, or nil.
func (s *Simulation) JobAt(p world.Point) *jobs.Job {
	for _, j := range s.Jobs() {
		if j.Covers(p) {
			return j
		}
	}
	return nil
}

// RequestBuild queues a job to place proto with its origin at p. The placement must be valid now.
func (s *Simulation) RequestBuild(proto *world.Prototype, p world.Point) (*jobs.Job, error) {
	if err := s.world.CanPlace(proto, p.X, p.Y); err != nil {
		return nil, err
	}
	j := jobs.NewBuild(proto, p)
	if err := s.checkFree(j); err != nil {
		return nil, err
	}
	s.queue.Enqueue(j)
	return j, nil
}

// RequestDeconstruct queues a job to remove f.
func (s *Simulation) RequestDeconstruct(f *world.Furniture) (*jobs.Job, error) {
	if s.world.FurnitureAt(f.Origin()) != f {
		return nil, fmt.Errorf("deconstruct %s at %v: %w", f.Type(), f.Origin(), world.ErrNotPlaced)
	}
	j := jobs.NewDeconstruct(f)
	if err := s.checkFree(j); err != nil {
		return nil, err
	}
	s.queue.Enqueue(j)
	return j, nil
}

func (s *Simulation) checkFree(j *jobs.Job) error {
	w, h := j.Prototype.Size()
	for y := j.Origin.Y; y < j.Origin.Y+h; y++ {
		for x := j.Origin.X; x < j.Origin.X+w; x++ {
			if other := s.JobAt(world.Pt(x, y)); other != nil {
				return fmt.Errorf("%v: %w (%v)", world.Pt(x, y), ErrJobExists, other)
			}
		}
	}
	return nil
}

// OnObjectPlaced implements world.ChangeListener.
func (s *Simulation) OnObjectPlaced(f *world.Furniture) {
	s.paths.OnObjectPlaced(f)
}

// OnObjectRemoved implements world.ChangeListener. Jobs that target f are cancelled.
func (s *Simulation) OnObjectRemoved(f *world.Furniture) {
	s.paths.OnObjectRemoved(f)
	s.cancelled = append(s.cancelled, s.queue.CancelFor(f)...)
	for _, ch := range s.crew.All() {
		if ch.Job != nil && ch.Job.Furniture == f {
			s.cancelled = append(s.cancelled, ch.Job)
			ch.Job = nil
			ch.ClearRoute()
		}
	}
}

// OnCellCostChanged implements world.ChangeListener.
func (s *Simulation) OnCellCostChanged(t *world.Tile) {
	s.paths.OnCellCostChanged(t)
}

// OnWorldLoaded implements world.ChangeListener. Every job and route refers to the old world and is dropped.
func (s *Simulation) OnWorldLoaded() {
	s.paths.OnWorldLoaded()
	s.queue = jobs.NewQueue()
	s.cancelled = nil
	for _, ch := range s.crew.All() {
		ch.Job = nil
		ch.ClearRoute()
	}
}

// Tick advances the simulation by dt seconds: furniture first, then job assignment, movement and work.
func (s *Simulation) Tick(ctx context.Context, dt float64) Report {
	ctx, span := s.tracer.Start(ctx, "sim.tick")
	defer span.End()

	s.ticks++
	s.elapsed += dt

	var report Report
	report.Burnt = s.world.Tick(dt)

	s.assign(ctx, &report)
	s.move(ctx, dt, &report)
	s.work(ctx, dt, &report)

	report.Cancelled = s.cancelled
	s.cancelled = nil

	span.SetAttributes(
		attribute.Int64("sim.tick", int64(s.ticks)),
		attribute.Int("sim.burnt", len(report.Burnt)),
		attribute.Int("sim.completed", len(report.Completed)),
		attribute.Int("sim.abandoned", len(report.Abandoned)),
		attribute.Int("sim.queued", s.queue.Len()),
	)
	return report
}

// assign gives each idle character at most one job per tick.
func (s *Simulation) assign(ctx context.Context, report *Report) {
	log := ctxlog.FromContext(ctx)
	for _, ch := range s.crew.All() {
		if ch.Job != nil {
			continue
		}
		j := s.queue.Dequeue()
		if j == nil {
			s.wander(ctx, ch)
			continue
		}
		path, err := s.routeTo(ctx, ch, j)
		if err != nil {
			s.fail(ctx, j, err, report)
			continue
		}
		ch.Job = j
		ch.SetRoute(path.Points())
		log.Debug("sim: job assigned",
			"job", j.ID,
			"kind", j.Kind.String(),
			"character", ch.Name,
			"route_cost", path.Cost,
		)
	}
}

// wander sends a character without work to the nearest stockpile.
func (s *Simulation) wander(ctx context.Context, ch *entity.Character) {
	if ch.HasRoute() {
		return
	}
	if f := s.world.FurnitureAt(ch.Position()); f != nil && f.IsStockpile() {
		return
	}
	path, err := s.paths.FindPath(ctx, ch.Position(), pathgraph.Matching(s.isStockpile))
	if err != nil {
		return
	}
	ch.SetRoute(path.Points())
}

func (s *Simulation) isStockpile(t *world.Tile) bool {
	f := s.world.FurnitureAt(t.Point())
	return f != nil && f.IsStockpile()
}

func (s *Simulation) routeTo(ctx context.Context, ch *entity.Character, j *jobs.Job) (pathgraph.Path, error) {
	return s.paths.FindPath(ctx, ch.Position(), pathgraph.Matching(func(t *world.Tile) bool {
		return j.InReach(t.Point())
	}))
}

// fail records a failed attempt and requeues the job, or abandons it once it has used up its attempts.
func (s *Simulation) fail(ctx context.Context, j *jobs.Job, err error, report *Report) {
	j.Attempts++
	if j.Attempts >= s.maxAttempts {
		report.Abandoned = append(report.Abandoned, j)
		ctxlog.FromContext(ctx).Info("sim: job abandoned", "job", j.ID, "attempts", j.Attempts, "error", err)
		return
	}
	s.queue.Enqueue(j)
}

func (s *Simulation) move(ctx context.Context, dt float64, report *Report) {
	cost := func(p world.Point) float64 {
		return s.world.MovementCost(s.world.Tile(p))
	}
	for _, ch := range s.crew.All() {
		if ch.Advance(dt, cost) != entity.Blocked {
			continue
		}
		if ch.Job == nil {
			ch.ClearRoute()
			continue
		}
		path, err := s.routeTo(ctx, ch, ch.Job)
		if err != nil {
			j := ch.Job
			ch.Job = nil
			ch.ClearRoute()
			s.fail(ctx, j, err, report)
			continue
		}
		ch.SetRoute(path.Points())
	}
}

func (s *Simulation) work(ctx context.Context, dt float64, report *Report) {
	log := ctxlog.FromContext(ctx)
	for _, ch := range s.crew.All() {
		j := ch.Job
		if j == nil || ch.HasRoute() {
			continue
		}
		if !j.InReach(ch.Position()) {
			// Out of reach with no route left: hand the job back.
			ch.Job = nil
			s.queue.Enqueue(j)
			continue
		}
		if !j.Work(dt) {
			continue
		}
		ch.Job = nil
		if err := s.complete(j); err != nil {
			report.Abandoned = append(report.Abandoned, j)
			log.Info("sim: job could not be completed", "job", j.ID, "error", err)
			continue
		}
		report.Completed = append(report.Completed, j)
		s.completed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", j.Kind.String())))
		log.Debug("sim: job completed", "job", j.ID, "character", ch.Name)
	}
}

func (s *Simulation) complete(j *jobs.Job) error {
	switch j.Kind {
	case jobs.Build:
		_, err := s.world.PlaceFurniture(j.Prototype, j.Origin.X, j.Origin.Y)
		return err
	case jobs.Deconstruct:
		return s.world.Deconstruct(j.Furniture)
	default:
		return fmt.Errorf("unknown job kind %v", j.Kind)
	}
}
