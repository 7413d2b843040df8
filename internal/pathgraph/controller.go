package pathgraph

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/basebuilder/internal/ctxlog"
	"github.com/samdwyer/basebuilder/internal/telemetry"
	"github.com/samdwyer/basebuilder/internal/world"
)

// State is the freshness of the controller's cached graph.
type State int

const (
	// StateStale means the world changed since the last build. A controller starts Stale.
	StateStale State = iota
	// StateFresh means the cached graph matches the world.
	StateFresh
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStale:
		return "stale"
	case StateFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// Controller owns the current graph generation for a grid. Any mutation notification marks it stale and
// the next Current or FindPath call rebuilds it. Changes between two queries cost a single rebuild.
//
// Controller implements world.ChangeListener.
type Controller struct {
	grid    Grid
	opts    Options
	tracer  trace.Tracer
	meter   metric.Meter
	metrics controllerMetrics

	mu         sync.Mutex
	graph      *Graph
	stale      bool
	generation uint64
}

var _ world.ChangeListener = (*Controller)(nil)

type controllerMetrics struct {
	rebuilds metric.Int64Counter
	queries  metric.Int64Counter
	failures metric.Int64Counter
}

// Option configures a Controller.
type Option func(*Controller)

// WithDiagonals builds graphs with diagonal neighbours.
func WithDiagonals(diagonals bool) Option {
	return func(c *Controller) {
		c.opts.Diagonals = diagonals
	}
}

// WithMeter sets the meter the controller's counters are created from.
func WithMeter(m metric.Meter) Option {
	return func(c *Controller) {
		c.meter = m
	}
}

// WithTracer sets the tracer used for query spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = t
	}
}

// NewController returns a stale controller for grid.
func NewController(grid Grid, opts ...Option) *Controller {
	c := &Controller{
		grid:   grid,
		tracer: telemetry.Tracer("pathgraph"),
		meter:  telemetry.Meter("pathgraph"),
		stale:  true,
	}
	for _, opt := range opts {
		opt(c)
	}

	meter := c.meter
	c.metrics.rebuilds = counter(meter, "pathgraph.rebuilds", "Number of graph generations built")
	c.metrics.queries = counter(meter, "pathgraph.queries", "Number of path queries")
	c.metrics.failures = counter(meter, "pathgraph.query_failures", "Number of path queries that found no route")
	return c
}

func counter(m metric.Meter, name, desc string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Invalidate marks the cached graph stale.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// OnObjectPlaced implements world.ChangeListener.
func (c *Controller) OnObjectPlaced(*world.Furniture) { c.Invalidate() }

// OnObjectRemoved implements world.ChangeListener.
func (c *Controller) OnObjectRemoved(*world.Furniture) { c.Invalidate() }

// OnCellCostChanged implements world.ChangeListener.
func (c *Controller) OnCellCostChanged(*world.Tile) { c.Invalidate() }

// OnWorldLoaded implements world.ChangeListener.
func (c *Controller) OnWorldLoaded() { c.Invalidate() }

// State reports whether the cached graph is up to date.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale || c.graph == nil {
		return StateStale
	}
	return StateFresh
}

// Generation returns the number of graphs built so far.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Current returns an up-to-date graph, rebuilding it first if the controller is stale.
// The lock is held across the build so no caller ever sees a half-built graph.
func (c *Controller) Current(ctx context.Context) (*Graph, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stale && c.graph != nil {
		return c.graph, nil
	}

	g, err := Build(ctx, c.grid, c.opts)
	if err != nil {
		c.graph = nil
		return nil, err
	}

	c.generation++
	g.generation = c.generation
	c.graph = g
	c.stale = false
	c.metrics.rebuilds.Add(ctx, 1)

	ctxlog.FromContext(ctx).Debug("pathgraph: new generation",
		"generation", c.generation,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
	)
	return g, nil
}

// FindPath finds the cheapest route from start to goal on an up-to-date graph.
func (c *Controller) FindPath(ctx context.Context, start world.Point, goal Goal) (Path, error) {
	ctx, span := c.tracer.Start(ctx, "pathgraph.find_path")
	defer span.End()

	span.SetAttributes(
		attribute.Int("path.start_x", start.X),
		attribute.Int("path.start_y", start.Y),
	)
	c.metrics.queries.Add(ctx, 1)

	g, err := c.Current(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "graph unavailable")
		return Path{}, err
	}

	path, err := FindPath(g, start, goal)
	if err != nil {
		reason := "no_path"
		if errors.Is(err, ErrUnreachableStart) {
			reason = "unreachable_start"
		}
		c.metrics.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
		span.SetAttributes(
			attribute.Bool("path.found", false),
			attribute.String("path.failure", reason),
		)
		return Path{}, err
	}

	span.SetAttributes(
		attribute.Bool("path.found", true),
		attribute.Int("path.length", path.Len()),
		attribute.Float64("path.cost", path.Cost),
		attribute.Int64("pathgraph.generation", int64(g.Generation())),
	)
	return path, nil
}
