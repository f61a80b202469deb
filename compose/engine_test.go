package compose

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/savorlab/foodstate/schema"
	"github.com/savorlab/foodstate/taxonomy"
	"github.com/savorlab/foodstate/transform"
)

const litopenaeus = "animalia:arthropoda:decapoda:litopenaeus"

// testGraph builds the shrimp lineage used across the engine tests.
// The genus node deliberately declares no parts attribute.
func testGraph(t *testing.T, extraAttrs ...taxonomy.Attribute) *taxonomy.Graph {
	t.Helper()

	attrs := append([]taxonomy.Attribute{
		{NodeID: "animalia", Key: "edible", Value: "true"},
	}, extraAttrs...)

	g, err := taxonomy.NewGraph([]taxonomy.Node{
		{ID: "life", Name: "Life", Slug: "life", Rank: taxonomy.RankRoot},
		{ID: "animalia", Name: "Animals", Slug: "animalia", Rank: taxonomy.RankKingdom, ParentID: "life"},
		{ID: "animalia:arthropoda", Slug: "arthropoda", Rank: taxonomy.RankPhylum, ParentID: "animalia"},
		{ID: "animalia:arthropoda:decapoda", Slug: "decapoda", Rank: taxonomy.RankOrder, ParentID: "animalia:arthropoda"},
		{ID: litopenaeus, Name: "Whiteleg shrimp", Slug: "litopenaeus", Rank: taxonomy.RankGenus, ParentID: "animalia:arthropoda:decapoda"},
	}, attrs)
	require.NoError(t, err)
	return g
}

// testRegistry registers the transforms the engine tests compose with.
func testRegistry(t *testing.T) *transform.StaticRegistry {
	t.Helper()

	reg := transform.NewStaticRegistry()
	reg.MustRegister(transform.Definition{
		ID: "peel",
	})
	reg.MustRegister(transform.Definition{
		ID: "grill",
		Params: schema.Params{
			"heat": schema.Enum("low", "medium", "high").WithDefault("medium"),
		},
		Applicable: transform.MustCELPredicate(`attrs["edible"] == "true"`),
	})
	reg.MustRegister(transform.Definition{
		ID:            "brine",
		Params:        schema.Params{"hours": schema.Int().WithDefault("12")},
		NonRepeatable: true,
	})
	reg.MustRegister(transform.Definition{
		ID:         "shuck",
		Applicable: transform.MustCELPredicate(`part == "shell"`),
	})
	return reg
}

func TestComposeValidChain(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	result := engine.Compose(context.Background(), Input{
		TaxonID: litopenaeus,
		PartID:  "tail",
		Transforms: []TransformInput{
			{ID: "peel"},
			{ID: "grill", Params: map[string]string{"heat": "high"}},
		},
	})

	require.Empty(t, result.Errors)
	assert.NotEmpty(t, result.ID)
	require.NotNil(t, result.Normalized)
	assert.Equal(t, []NormalizedTransform{
		{ID: "peel", Params: map[string]string{}},
		{ID: "grill", Params: map[string]string{"heat": "high"}},
	}, result.Normalized.Transforms)
}

func TestComposeEmptyChain(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	result := engine.Compose(context.Background(), Input{
		TaxonID: litopenaeus,
		PartID:  "tail",
	})

	require.Empty(t, result.Errors)
	assert.NotEmpty(t, result.ID)
	require.NotNil(t, result.Normalized)
	assert.Equal(t, []NormalizedTransform{}, result.Normalized.Transforms)
}

func TestComposeUnknownTransform(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	result := engine.Compose(context.Background(), Input{
		TaxonID:    litopenaeus,
		PartID:     "tail",
		Transforms: []TransformInput{{ID: "smoke"}},
	})

	assert.Equal(t, []string{"unknown transform: smoke"}, result.Errors)
	assert.Empty(t, result.ID)
}

func TestComposeUnknownTaxon(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	result := engine.Compose(context.Background(), Input{
		TaxonID: "plantae:rosaceae:malus",
		PartID:  "tail",
		Transforms: []TransformInput{
			{ID: "smoke"},
			{ID: "peel"},
		},
	})

	// Unknown taxon aborts taxon-dependent checks, but transform lookup
	// still runs so independent errors surface in the same pass.
	assert.Equal(t, []string{
		"unknown taxon: plantae:rosaceae:malus",
		"unknown transform: smoke",
	}, result.Errors)
	assert.Empty(t, result.ID)

	// Steps that passed their independent checks still normalize.
	require.NotNil(t, result.Normalized)
	assert.Equal(t, []NormalizedTransform{
		{ID: "peel", Params: map[string]string{}},
	}, result.Normalized.Transforms)
}

func TestComposeDeclaredParts(t *testing.T) {
	g := testGraph(t, taxonomy.Attribute{
		NodeID: "animalia:arthropoda:decapoda", Key: "parts", Value: "tail,head,shell",
	})
	engine := NewEngine(g, testRegistry(t))

	ok := engine.Compose(context.Background(), Input{TaxonID: litopenaeus, PartID: "shell"})
	assert.Empty(t, ok.Errors)

	bad := engine.Compose(context.Background(), Input{TaxonID: litopenaeus, PartID: "fin"})
	assert.Equal(t, []string{"unknown part: fin"}, bad.Errors)
	assert.Empty(t, bad.ID)
}

// TestComposeUndeclaredPartsOpenWorld pins the recognition rule: a taxon
// that declares no parts anywhere in its chain accepts any part.
func TestComposeUndeclaredPartsOpenWorld(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	result := engine.Compose(context.Background(), Input{TaxonID: litopenaeus, PartID: "anything"})
	assert.Empty(t, result.Errors)
}

func TestComposeNotApplicable(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	result := engine.Compose(context.Background(), Input{
		TaxonID:    litopenaeus,
		PartID:     "tail",
		Transforms: []TransformInput{{ID: "shuck"}, {ID: "peel"}},
	})

	assert.Equal(t, []string{"transform shuck not applicable to tail"}, result.Errors)
	assert.Empty(t, result.ID)
	// The inapplicable step is dropped; the valid one survives.
	assert.Equal(t, []NormalizedTransform{
		{ID: "peel", Params: map[string]string{}},
	}, result.Normalized.Transforms)
}

func TestComposeInvalidParameters(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	result := engine.Compose(context.Background(), Input{
		TaxonID: litopenaeus,
		PartID:  "tail",
		Transforms: []TransformInput{
			{ID: "grill", Params: map[string]string{"heat": "volcanic", "wood": "oak"}},
		},
	})

	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "invalid parameter for transform grill")
	assert.Contains(t, result.Errors[0], "unknown parameter wood")
	assert.Contains(t, result.Errors[1], "not one of the allowed values")
	assert.Empty(t, result.ID)
	assert.Empty(t, result.Normalized.Transforms)
}

func TestComposeDefaultsFilled(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	result := engine.Compose(context.Background(), Input{
		TaxonID:    litopenaeus,
		PartID:     "tail",
		Transforms: []TransformInput{{ID: "grill"}},
	})

	require.Empty(t, result.Errors)
	assert.Equal(t, map[string]string{"heat": "medium"}, result.Normalized.Transforms[0].Params)
}

func TestComposeCollectsAllErrors(t *testing.T) {
	g := testGraph(t, taxonomy.Attribute{
		NodeID: litopenaeus, Key: "parts", Value: "tail",
	})
	engine := NewEngine(g, testRegistry(t))

	result := engine.Compose(context.Background(), Input{
		TaxonID: litopenaeus,
		PartID:  "fin",
		Transforms: []TransformInput{
			{ID: "smoke"},
			{ID: "grill", Params: map[string]string{"heat": "volcanic"}},
			{ID: "peel"},
		},
	})

	assert.Equal(t, []string{
		"unknown part: fin",
		"unknown transform: smoke",
		"invalid parameter for transform grill: parameter heat: \"volcanic\" is not one of the allowed values [low medium high]",
	}, result.Errors)
	assert.Empty(t, result.ID)
	assert.Equal(t, []NormalizedTransform{
		{ID: "peel", Params: map[string]string{}},
	}, result.Normalized.Transforms)
}

func TestComposeRepeatedTransform(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	// Repeatable transforms may appear any number of times.
	repeat := engine.Compose(context.Background(), Input{
		TaxonID:    litopenaeus,
		PartID:     "tail",
		Transforms: []TransformInput{{ID: "peel"}, {ID: "peel"}},
	})
	assert.Empty(t, repeat.Errors)
	assert.Len(t, repeat.Normalized.Transforms, 2)

	// Non-repeatable transforms reject the second occurrence only.
	brined := engine.Compose(context.Background(), Input{
		TaxonID:    litopenaeus,
		PartID:     "tail",
		Transforms: []TransformInput{{ID: "brine"}, {ID: "brine"}},
	})
	assert.Equal(t, []string{"transform brine not applicable to tail"}, brined.Errors)
	assert.Len(t, brined.Normalized.Transforms, 1)
}

// TestComposeIDErrorsInvariant checks id ⇔ errors across a spread of inputs.
func TestComposeIDErrorsInvariant(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	inputs := []Input{
		{TaxonID: litopenaeus, PartID: "tail"},
		{TaxonID: litopenaeus, PartID: "tail", Transforms: []TransformInput{{ID: "peel"}}},
		{TaxonID: litopenaeus, PartID: "tail", Transforms: []TransformInput{{ID: "smoke"}}},
		{TaxonID: "nowhere", PartID: "tail"},
		{TaxonID: litopenaeus, PartID: "tail", Transforms: []TransformInput{{ID: "grill", Params: map[string]string{"heat": "volcanic"}}}},
	}

	for _, in := range inputs {
		result := engine.Compose(context.Background(), in)
		if len(result.Errors) == 0 {
			assert.NotEmpty(t, result.ID, "input %+v", in)
		} else {
			assert.Empty(t, result.ID, "input %+v", in)
		}
	}
}

func TestComposeDeterminism(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	in := Input{
		TaxonID: litopenaeus,
		PartID:  "tail",
		Transforms: []TransformInput{
			{ID: "peel"},
			{ID: "grill", Params: map[string]string{"heat": "high"}},
		},
	}

	first := engine.Compose(context.Background(), in)
	second := engine.Compose(context.Background(), in)

	// Byte-identical results, not merely equal.
	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestComposeOrderSensitivity(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	ab := engine.Compose(context.Background(), Input{
		TaxonID:    litopenaeus,
		PartID:     "tail",
		Transforms: []TransformInput{{ID: "peel"}, {ID: "grill"}},
	})
	ba := engine.Compose(context.Background(), Input{
		TaxonID:    litopenaeus,
		PartID:     "tail",
		Transforms: []TransformInput{{ID: "grill"}, {ID: "peel"}},
	})

	require.Empty(t, ab.Errors)
	require.Empty(t, ba.Errors)
	assert.NotEqual(t, ab.ID, ba.ID)
}

// staticPartsCatalog is a test double for an external parts source.
type staticPartsCatalog struct {
	parts map[string][]string
	err   error
}

func (c *staticPartsCatalog) Parts(_ context.Context, taxonID string) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.parts[taxonID], nil
}

func TestComposePartsCatalogOverride(t *testing.T) {
	catalog := &staticPartsCatalog{parts: map[string][]string{
		litopenaeus: {"tail", "head"},
	}}
	engine := NewEngine(testGraph(t), testRegistry(t), WithPartsCatalog(catalog))

	ok := engine.Compose(context.Background(), Input{TaxonID: litopenaeus, PartID: "head"})
	assert.Empty(t, ok.Errors)

	bad := engine.Compose(context.Background(), Input{TaxonID: litopenaeus, PartID: "shell"})
	assert.Equal(t, []string{"unknown part: shell"}, bad.Errors)
}

func TestComposePartsCatalogFailureIsOpenWorld(t *testing.T) {
	catalog := &staticPartsCatalog{err: errors.New("catalog unavailable")}
	engine := NewEngine(testGraph(t), testRegistry(t), WithPartsCatalog(catalog))

	result := engine.Compose(context.Background(), Input{TaxonID: litopenaeus, PartID: "tail"})
	assert.Empty(t, result.Errors)
}

// recordingCache is a test double capturing engine cache traffic.
type recordingCache struct {
	entries map[string]Result
	hits    int
	sets    int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string]Result)}
}

func (c *recordingCache) Get(_ context.Context, key string) (Result, bool) {
	r, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *recordingCache) Set(_ context.Context, key string, result Result) {
	c.sets++
	c.entries[key] = result
}

func TestComposeCaching(t *testing.T) {
	cache := newRecordingCache()
	engine := NewEngine(testGraph(t), testRegistry(t), WithCache(cache))

	in := Input{
		TaxonID:    litopenaeus,
		PartID:     "tail",
		Transforms: []TransformInput{{ID: "peel"}},
	}

	first := engine.Compose(context.Background(), in)
	require.Equal(t, 1, cache.sets)
	require.Equal(t, 0, cache.hits)

	second := engine.Compose(context.Background(), in)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, second)
}

func TestComposeCacheKeyedByGraphBuild(t *testing.T) {
	cache := newRecordingCache()
	reg := testRegistry(t)
	in := Input{TaxonID: litopenaeus, PartID: "tail"}

	NewEngine(testGraph(t), reg, WithCache(cache)).Compose(context.Background(), in)
	NewEngine(testGraph(t), reg, WithCache(cache)).Compose(context.Background(), in)

	// Two builds of the same content occupy distinct cache entries.
	assert.Equal(t, 2, cache.sets)
	assert.Equal(t, 0, cache.hits)
}

func TestComposeTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	engine := NewEngine(testGraph(t), testRegistry(t), WithTracer(tp.Tracer("test")))

	engine.Compose(context.Background(), Input{TaxonID: litopenaeus, PartID: "tail"})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Engine.Compose", spans[0].Name())
}

func TestComposeConcurrent(t *testing.T) {
	engine := NewEngine(testGraph(t), testRegistry(t))

	in := Input{
		TaxonID:    litopenaeus,
		PartID:     "tail",
		Transforms: []TransformInput{{ID: "peel"}, {ID: "grill"}},
	}
	want := engine.Compose(context.Background(), in)

	done := make(chan Result, 16)
	for i := 0; i < 16; i++ {
		go func() {
			done <- engine.Compose(context.Background(), in)
		}()
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, want, <-done)
	}
}
