// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the pathway stages in order: profile validation,
// retrieval, structured generation, enhancement and link injection.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pdiddy/pathway-engine/internal/enhance"
	"github.com/pdiddy/pathway-engine/internal/generation"
	"github.com/pdiddy/pathway-engine/internal/logger"
	"github.com/pdiddy/pathway-engine/internal/profile"
	"github.com/pdiddy/pathway-engine/internal/retrieval"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

const tracerName = "github.com/pdiddy/pathway-engine/internal/pipeline"

// SearcherFactory builds a search capability for one request.
type SearcherFactory func(apiKey string, cfg types.SearchConfig) (retrieval.Searcher, error)

// GeneratorFactory builds a generative-model capability for one request.
type GeneratorFactory func(ctx context.Context, apiKey string, cfg types.AIConfig) (generation.Generator, error)

// Pipeline holds the read-only configuration shared by all requests. It is
// safe for concurrent use.
type Pipeline struct {
	Config types.PipelineConfig

	// Defaults fills credentials a request does not carry.
	Defaults types.Credentials

	NewSearcher  SearcherFactory
	NewGenerator GeneratorFactory
}

// New returns a pipeline wired to the Tavily and Gemini adapters.
func New(cfg types.PipelineConfig, defaults types.Credentials) *Pipeline {
	return &Pipeline{
		Config:   cfg,
		Defaults: defaults,
		NewSearcher: func(key string, sc types.SearchConfig) (retrieval.Searcher, error) {
			return retrieval.NewTavilySearcher(key, sc)
		},
		NewGenerator: func(ctx context.Context, key string, ac types.AIConfig) (generation.Generator, error) {
			return generation.NewGeminiGenerator(ctx, key, ac)
		},
	}
}

// Result is a finished pipeline run.
type Result struct {
	RunID   string
	Pathway *types.LearningPathway
}

// Run executes one request end to end. Errors are returned unchanged from
// the stage that raised them: *types.ValidationError, *types.RetrievalError,
// *types.GenerationError or *types.SchemaValidationError.
func (p *Pipeline) Run(ctx context.Context, raw map[string]string) (*types.LearningPathway, error) {
	res, err := p.RunWithID(ctx, raw)
	if err != nil {
		return nil, err
	}
	return res.Pathway, nil
}

// RunWithID is Run, also reporting the run identifier used in logs and
// traces.
func (p *Pipeline) RunWithID(ctx context.Context, raw map[string]string) (Result, error) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With("run_id", runID)
	ctx = logger.ContextWithLogger(ctx, log)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pathway.run",
		trace.WithAttributes(attribute.String("run_id", runID)))
	defer span.End()

	start := time.Now()
	pathway, err := p.execute(ctx, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("pipeline failed", "err", err, "status", types.StatusCode(err), "elapsed", time.Since(start))
		return Result{RunID: runID}, err
	}

	log.Info("pipeline complete",
		"title", pathway.Title,
		"phases", len(pathway.Phases),
		"links", len(pathway.RelevantLinks),
		"elapsed", time.Since(start))
	return Result{RunID: runID, Pathway: pathway}, nil
}

func (p *Pipeline) execute(ctx context.Context, raw map[string]string) (*types.LearningPathway, error) {
	var student types.StudentProfile
	err := stage(ctx, "validate", func(context.Context) error {
		var err error
		student, err = profile.Validate(raw, p.Defaults)
		return err
	})
	if err != nil {
		return nil, err
	}
	creds := student.Credentials

	var retrieved types.RetrievalResult
	err = stage(ctx, "retrieve", func(ctx context.Context) error {
		searcher, err := p.NewSearcher(creds.SearchKey, p.Config.Search)
		if err != nil {
			return &types.RetrievalError{Failures: []string{"creating searcher: " + err.Error()}}
		}
		rs := &retrieval.Stage{Searcher: searcher, Timeout: p.Config.Search.Timeout}
		retrieved, err = rs.Run(ctx, student)
		return err
	})
	if err != nil {
		return nil, err
	}

	var pathway *types.LearningPathway
	err = stage(ctx, "generate", func(ctx context.Context) error {
		gen, err := p.NewGenerator(ctx, creds.GenerationKey, p.Config.Generation.AIConfig)
		if err != nil {
			return &types.GenerationError{Stage: generation.StageName, Err: err}
		}
		gs := &generation.Stage{Generator: gen, Timeout: p.Config.Generation.Timeout}
		pathway, err = gs.Run(ctx, student, retrieved.CombinedText)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !p.Config.Enhancement.Disabled {
		_ = stage(ctx, "enhance", func(ctx context.Context) error {
			gen, err := p.NewGenerator(ctx, creds.GenerationKey, p.Config.Enhancement.AIConfig)
			if err != nil {
				logger.FromContext(ctx).Warn("enhancement skipped", "err", err)
				return nil
			}
			es := &enhance.Stage{Generator: gen, Timeout: p.Config.Enhancement.Timeout}
			pathway = es.Run(ctx, pathway, student)
			return nil
		})
	}

	out := pathway.Clone()
	out.RelevantLinks = append([]string{}, retrieved.RelevantLinks...)
	return out, nil
}

// stage runs fn inside a child span and logs its duration.
func stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pathway."+name)
	defer span.End()

	log := logger.FromContext(ctx)
	start := time.Now()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("stage failed", "stage", name, "elapsed", time.Since(start))
		return err
	}
	log.Debug("stage finished", "stage", name, "elapsed", time.Since(start))
	return nil
}
