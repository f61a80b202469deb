package compose

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/savorlab/foodstate/stateid"
	"github.com/savorlab/foodstate/taxonomy"
	"github.com/savorlab/foodstate/transform"
)

const instrumentationName = "github.com/savorlab/foodstate/compose"

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPartsCatalog overrides the default attribute-encoded parts source with
// an external catalog.
func WithPartsCatalog(catalog PartsCatalog) Option {
	return func(e *Engine) {
		e.parts = catalog
	}
}

// WithCache enables result caching. Entries are keyed by graph build and the
// canonical form of the raw request, so a rebuilt graph never serves stale
// results.
func WithCache(cache Cache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithTracer sets an OpenTelemetry tracer for composition spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for composition counters.
func WithMeter(meter metric.Meter) Option {
	return func(e *Engine) {
		e.meter = meter
	}
}

// Engine validates and normalizes composition requests against a taxonomy
// graph and a transform registry, deriving a stable identifier for every
// valid composition.
//
// Compose is a pure function of (graph state, registry state, input): the
// same inputs always yield the same output. The engine holds no locks and
// mutates no shared state, so any number of requests may run in parallel;
// the only place a request can block is an I/O-backed registry or parts
// catalog lookup.
type Engine struct {
	graph    *taxonomy.Graph
	registry transform.Registry
	parts    PartsCatalog
	cache    Cache
	logger   *slog.Logger
	tracer   trace.Tracer
	meter    metric.Meter

	composeTotal  metric.Int64Counter
	composeFailed metric.Int64Counter
}

// NewEngine creates a composition engine over the given graph and registry.
func NewEngine(graph *taxonomy.Graph, registry transform.Registry, opts ...Option) *Engine {
	e := &Engine{
		graph:    graph,
		registry: registry,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(instrumentationName)
	}
	if e.meter == nil {
		e.meter = otel.Meter(instrumentationName)
	}

	var err error
	e.composeTotal, err = e.meter.Int64Counter("foodstate.compose.requests",
		metric.WithDescription("Composition requests processed"))
	if err != nil {
		e.logger.Warn("failed to create request counter", "error", err)
	}
	e.composeFailed, err = e.meter.Int64Counter("foodstate.compose.rejected",
		metric.WithDescription("Composition requests rejected with validation errors"))
	if err != nil {
		e.logger.Warn("failed to create rejection counter", "error", err)
	}

	return e
}

// Compose validates and normalizes a (taxon, part, transform chain) request.
//
// Validation is fail-soft and exhaustive: every error across the request is
// collected, not just the first. Steps that fail validation are dropped from
// the normalized chain; surviving steps keep their original relative order.
// The result carries a derived identifier exactly when no errors were
// collected.
//
// An empty transform chain is valid and identifies the raw food state for
// taxon+part. Cancelling ctx abandons the request; partial results are never
// observable.
func (e *Engine) Compose(ctx context.Context, in Input) Result {
	ctx, span := e.tracer.Start(ctx, "Engine.Compose",
		trace.WithAttributes(
			attribute.String("foodstate.taxon", in.TaxonID),
			attribute.String("foodstate.part", in.PartID),
			attribute.Int("foodstate.chain_length", len(in.Transforms)),
		))
	defer span.End()

	if e.composeTotal != nil {
		e.composeTotal.Add(ctx, 1)
	}

	cacheKey := e.cacheKey(in)
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, cacheKey); ok {
			span.SetAttributes(attribute.Bool("foodstate.cache_hit", true))
			return cached
		}
	}

	result := e.compose(ctx, in)

	if !result.OK() {
		if e.composeFailed != nil {
			e.composeFailed.Add(ctx, 1)
		}
		span.SetAttributes(attribute.Int("foodstate.error_count", len(result.Errors)))
	}
	if e.cache != nil {
		e.cache.Set(ctx, cacheKey, result)
	}
	return result
}

// compose runs the validation/normalization algorithm.
func (e *Engine) compose(ctx context.Context, in Input) Result {
	errs := []string{}
	normalized := &Normalized{
		TaxonID:    in.TaxonID,
		PartID:     in.PartID,
		Transforms: []NormalizedTransform{},
	}

	// Step 1: resolve the taxon. An unknown taxon aborts taxon-dependent
	// checks (part recognition, applicability) but transform lookup and
	// parameter validation still run so all independent errors surface.
	var attrs map[string]string
	taxonKnown := true
	if _, err := e.graph.Node(in.TaxonID); err != nil {
		errs = append(errs, fmt.Sprintf("unknown taxon: %s", in.TaxonID))
		taxonKnown = false
	} else {
		// Step 2: effective attributes via the ancestor cascade.
		attrs, err = e.graph.ResolveAttributes(in.TaxonID)
		if err != nil {
			// Unreachable for a node that just resolved, but the
			// contract stays fail-soft.
			errs = append(errs, fmt.Sprintf("unknown taxon: %s", in.TaxonID))
			taxonKnown = false
		}
	}

	// Step 3: part recognition. A taxon that declares no parts accepts any
	// part; declared parts are a closed set.
	if taxonKnown {
		if !e.partRecognized(ctx, in.TaxonID, in.PartID) {
			errs = append(errs, fmt.Sprintf("unknown part: %s", in.PartID))
		}
	}

	// Step 4: per-transform validation in request order.
	seen := make(map[string]bool, len(in.Transforms))
	for _, step := range in.Transforms {
		def, err := e.registry.Lookup(ctx, step.ID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("unknown transform: %s", step.ID))
			continue
		}

		if taxonKnown {
			if !def.IsApplicable(attrs, in.PartID) {
				errs = append(errs, fmt.Sprintf("transform %s not applicable to %s", step.ID, in.PartID))
				continue
			}
			if def.NonRepeatable && seen[step.ID] {
				errs = append(errs, fmt.Sprintf("transform %s not applicable to %s", step.ID, in.PartID))
				continue
			}
		}

		canonical, paramErrs := def.Params.Apply(step.Params)
		if len(paramErrs) > 0 {
			for _, perr := range paramErrs {
				errs = append(errs, fmt.Sprintf("invalid parameter for transform %s: %v", step.ID, perr))
			}
			continue
		}

		seen[step.ID] = true
		normalized.Transforms = append(normalized.Transforms, NormalizedTransform{
			ID:     step.ID,
			Params: canonical,
		})
	}

	// Step 5/6: identifier exactly when the error list is empty.
	if len(errs) > 0 {
		return Result{Errors: errs, Normalized: normalized}
	}

	steps := make([]stateid.Step, len(normalized.Transforms))
	for i, t := range normalized.Transforms {
		steps[i] = stateid.Step{ID: t.ID, Params: t.Params}
	}
	return Result{
		ID:         stateid.Derive(normalized.TaxonID, normalized.PartID, steps),
		Errors:     []string{},
		Normalized: normalized,
	}
}

// partRecognized checks the part against the configured source: the external
// catalog when present, otherwise the taxonomy's parts attribute. Catalog
// lookup failures count as "no parts declared" per the engine's closed error
// vocabulary.
func (e *Engine) partRecognized(ctx context.Context, taxonID, partID string) bool {
	var parts []string
	if e.parts != nil {
		declared, err := e.parts.Parts(ctx, taxonID)
		if err != nil {
			e.logger.Warn("parts catalog lookup failed",
				"taxon", taxonID,
				"error", err)
		} else {
			parts = declared
		}
	} else {
		// The graph cannot fail here: the taxon was already resolved.
		parts, _ = e.graph.Parts(taxonID)
	}

	if len(parts) == 0 {
		return true
	}
	for _, p := range parts {
		if p == partID {
			return true
		}
	}
	return false
}

// cacheKey derives the cache key for a request: the graph build id plus the
// canonical form of the raw input. Raw parameters are part of the key, so
// requests that normalize identically but were phrased differently occupy
// separate entries; correctness over hit rate.
func (e *Engine) cacheKey(in Input) string {
	steps := make([]stateid.Step, len(in.Transforms))
	for i, t := range in.Transforms {
		steps[i] = stateid.Step{ID: t.ID, Params: t.Params}
	}
	return e.graph.BuildID() + "|" + stateid.Canonical(in.TaxonID, in.PartID, steps)
}
