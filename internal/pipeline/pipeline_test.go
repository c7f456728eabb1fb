package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pathway-engine/internal/fixture"
	"github.com/pdiddy/pathway-engine/internal/generation"
	"github.com/pdiddy/pathway-engine/internal/retrieval"
	"github.com/pdiddy/pathway-engine/internal/schema"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

// --- mocks ---

type fakeSearcher struct {
	byQuery map[string][]types.RetrievedDocument
	err     error
	calls   atomic.Int32
}

func (f *fakeSearcher) Retrieve(_ context.Context, query string, _ int) ([]types.RetrievedDocument, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[query], nil
}

type fakeGenerator struct {
	mu          sync.Mutex
	structured  []byte
	structErr   error
	enhanced    string
	enhanceErr  error
	calls       int
	lastPrompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastPrompts = append(f.lastPrompts, prompt)
	return f.enhanced, f.enhanceErr
}

func (f *fakeGenerator) GenerateStructured(_ context.Context, prompt string, _ *schema.Descriptor) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastPrompts = append(f.lastPrompts, prompt)
	return f.structured, f.structErr
}

type harness struct {
	p                 *Pipeline
	search            *fakeSearcher
	gen               *fakeGenerator
	searcherFactories atomic.Int32
	genFactories      atomic.Int32
	searchKeys        []string
	genKeys           []string
}

func newHarness(search *fakeSearcher, gen *fakeGenerator) *harness {
	h := &harness{search: search, gen: gen}
	h.p = &Pipeline{
		Config:   types.DefaultPipelineConfig(),
		Defaults: types.Credentials{SearchKey: "default-tavily", GenerationKey: "default-google"},
		NewSearcher: func(key string, _ types.SearchConfig) (retrieval.Searcher, error) {
			h.searcherFactories.Add(1)
			h.searchKeys = append(h.searchKeys, key)
			return search, nil
		},
		NewGenerator: func(_ context.Context, key string, _ types.AIConfig) (generation.Generator, error) {
			h.genFactories.Add(1)
			h.genKeys = append(h.genKeys, key)
			return gen, nil
		},
	}
	return h
}

func validRaw() map[string]string {
	return map[string]string{
		"learning_style": "visual",
		"progress":       "graph theory",
		"hobby":          "chess",
		"domain":         "logistics",
		"google_api_key": "g-key",
		"tavily_api_key": "t-key",
	}
}

func docsFor(urls ...string) []types.RetrievedDocument {
	var out []types.RetrievedDocument
	for _, u := range urls {
		out = append(out, types.RetrievedDocument{Text: "text from " + u, SourceURL: u})
	}
	return out
}

// Links from all three queries are unioned in first-seen order and the
// enhanced explanations replace the generated ones.
func TestRunHappyPath(t *testing.T) {
	search := &fakeSearcher{byQuery: map[string][]types.RetrievedDocument{
		"graph theory":                           docsFor("u1", "u2"),
		"logistics with respect to graph theory": docsFor("u2", "u3"),
		"visual with respect to graph theory":    docsFor("u1"),
	}}
	gen := &fakeGenerator{
		structured: fixture.PathwayJSON(),
		enhanced:   `[{"title":"Knights and Graphs","content":"..."}]`,
	}
	h := newHarness(search, gen)

	got, err := h.p.Run(context.Background(), validRaw())
	require.NoError(t, err)

	assert.Equal(t, []string{"u1", "u2", "u3"}, got.RelevantLinks)
	require.Len(t, got.ExplanationAndKickstartExamples, 1)
	assert.Equal(t, "Knights and Graphs", got.ExplanationAndKickstartExamples[0].Title)
	assert.Len(t, got.Phases, 7)
	assert.EqualValues(t, 3, search.calls.Load())
	assert.Equal(t, 2, gen.calls)

	// Payload credentials win over server defaults.
	assert.Equal(t, []string{"t-key"}, h.searchKeys)
	assert.Equal(t, []string{"g-key", "g-key"}, h.genKeys)
	assert.Contains(t, gen.lastPrompts[0], "text from u1")
}

// Unusable enhancement output leaves the generated pathway intact.
func TestRunEnhancementFallback(t *testing.T) {
	search := &fakeSearcher{byQuery: map[string][]types.RetrievedDocument{"graph theory": docsFor("u1")}}
	gen := &fakeGenerator{structured: fixture.PathwayJSON(), enhanced: "Here are your sections!"}
	h := newHarness(search, gen)

	got, err := h.p.Run(context.Background(), validRaw())
	require.NoError(t, err)

	want := fixture.Pathway()
	want.RelevantLinks = []string{"u1"}
	assert.Equal(t, want, got)
	assert.Equal(t, "Original explanation 1", got.ExplanationAndKickstartExamples[0].Content)
}

// Queries that succeed with no documents still yield a pathway with an
// empty, non-nil link list.
func TestRunEmptyRetrieval(t *testing.T) {
	gen := &fakeGenerator{structured: fixture.PathwayJSON(), enhanceErr: errors.New("quota")}
	h := newHarness(&fakeSearcher{}, gen)

	got, err := h.p.Run(context.Background(), validRaw())
	require.NoError(t, err)
	assert.NotNil(t, got.RelevantLinks)
	assert.Empty(t, got.RelevantLinks)
}

func TestRunValidationMakesNoCapabilityCalls(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]string
		defaults types.Credentials
	}{
		{"missing hobby", func() map[string]string { r := validRaw(); delete(r, "hobby"); return r }(), types.Credentials{}},
		{"blank domain", func() map[string]string { r := validRaw(); r["domain"] = "  "; return r }(), types.Credentials{}},
		{"no credentials anywhere", func() map[string]string {
			r := validRaw()
			delete(r, "google_api_key")
			delete(r, "tavily_api_key")
			return r
		}(), types.Credentials{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &fakeSearcher{}
			gen := &fakeGenerator{}
			h := newHarness(search, gen)
			h.p.Defaults = tt.defaults

			_, err := h.p.Run(context.Background(), tt.raw)

			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, 400, types.StatusCode(err))
			assert.Zero(t, h.searcherFactories.Load())
			assert.Zero(t, h.genFactories.Load())
			assert.Zero(t, search.calls.Load())
			assert.Zero(t, gen.calls)
		})
	}
}

func TestRunUsesDefaultCredentials(t *testing.T) {
	raw := validRaw()
	delete(raw, "google_api_key")
	delete(raw, "tavily_api_key")

	h := newHarness(&fakeSearcher{}, &fakeGenerator{structured: fixture.PathwayJSON(), enhanced: "[]"})
	_, err := h.p.Run(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"default-tavily"}, h.searchKeys)
	assert.Equal(t, "default-google", h.genKeys[0])
}

func TestRunRetrievalFailure(t *testing.T) {
	gen := &fakeGenerator{}
	h := newHarness(&fakeSearcher{err: errors.New("down")}, gen)

	_, err := h.p.Run(context.Background(), validRaw())
	var re *types.RetrievalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 500, types.StatusCode(err))
	assert.Zero(t, gen.calls)
}

func TestRunGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{structErr: errors.New("401 unauthorized")}
	h := newHarness(&fakeSearcher{}, gen)

	_, err := h.p.Run(context.Background(), validRaw())
	var ge *types.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, 1, gen.calls)
}

func TestRunSchemaFailure(t *testing.T) {
	gen := &fakeGenerator{structured: []byte(`{"title":"only a title"}`)}
	h := newHarness(&fakeSearcher{}, gen)

	_, err := h.p.Run(context.Background(), validRaw())
	var sve *types.SchemaValidationError
	require.ErrorAs(t, err, &sve)
	assert.Equal(t, 500, types.StatusCode(err))
	assert.Equal(t, 1, gen.calls, "enhancement must not run after a schema failure")
}

func TestRunSearcherFactoryError(t *testing.T) {
	h := newHarness(&fakeSearcher{}, &fakeGenerator{})
	h.p.NewSearcher = func(string, types.SearchConfig) (retrieval.Searcher, error) {
		return nil, errors.New("bad key")
	}

	_, err := h.p.Run(context.Background(), validRaw())
	var re *types.RetrievalError
	assert.ErrorAs(t, err, &re)
}

func TestRunEnhancementDisabled(t *testing.T) {
	gen := &fakeGenerator{structured: fixture.PathwayJSON(), enhanced: `[{"title":"T","content":"C"}]`}
	h := newHarness(&fakeSearcher{}, gen)
	h.p.Config.Enhancement.Disabled = true

	got, err := h.p.Run(context.Background(), validRaw())
	require.NoError(t, err)
	assert.Len(t, got.ExplanationAndKickstartExamples, 5)
	assert.Equal(t, 1, gen.calls)
	assert.EqualValues(t, 1, h.genFactories.Load())
}

func TestRunWithIDAssignsDistinctIDs(t *testing.T) {
	h := newHarness(&fakeSearcher{}, &fakeGenerator{structured: fixture.PathwayJSON()})

	a, err := h.p.RunWithID(context.Background(), validRaw())
	require.NoError(t, err)
	b, err := h.p.RunWithID(context.Background(), validRaw())
	require.NoError(t, err)
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunConcurrentRequests(t *testing.T) {
	h := newHarness(
		&fakeSearcher{byQuery: map[string][]types.RetrievedDocument{"graph theory": docsFor("u1")}},
		&fakeGenerator{structured: fixture.PathwayJSON()},
	)
	h.p.NewSearcher = func(string, types.SearchConfig) (retrieval.Searcher, error) { return h.search, nil }
	h.p.NewGenerator = func(context.Context, string, types.AIConfig) (generation.Generator, error) { return h.gen, nil }

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.p.Run(context.Background(), validRaw())
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}
