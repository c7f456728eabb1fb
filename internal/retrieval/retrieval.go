// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval gathers web context for a student profile. It fans three
// profile-derived queries out to a search capability, then joins the documents
// in declaration order and deduplicates their source links.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pathway-engine/internal/logger"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

// TopK is the number of documents requested per query.
const TopK = 5

// Searcher is the search capability. Implementations return up to k
// documents for query.
type Searcher interface {
	Retrieve(ctx context.Context, query string, k int) ([]types.RetrievedDocument, error)
}

// Stage runs the retrieval step of the pipeline.
type Stage struct {
	Searcher Searcher

	// Timeout bounds each query. Zero means no per-query bound.
	Timeout time.Duration
}

// Query is one labeled search string.
type Query struct {
	Label string
	Text  string
}

// Queries derives the three search queries for p, in declaration order:
// the topic, the domain with respect to the topic, and the learning style
// with respect to the topic.
func Queries(p types.StudentProfile) []Query {
	return []Query{
		{Label: "topic", Text: p.Topic},
		{Label: "domain", Text: fmt.Sprintf("%s with respect to %s", p.Domain, p.Topic)},
		{Label: "learning_style", Text: fmt.Sprintf("%s with respect to %s", p.LearningStyle, p.Topic)},
	}
}

// Run issues all queries concurrently. A failing query contributes nothing;
// if every query fails Run returns a *types.RetrievalError.
func (s *Stage) Run(ctx context.Context, p types.StudentProfile) (types.RetrievalResult, error) {
	log := logger.FromContext(ctx)
	queries := Queries(p)

	docs := make([][]types.RetrievedDocument, len(queries))
	errs := make([]error, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			qctx := ctx
			if s.Timeout > 0 {
				var cancel context.CancelFunc
				qctx, cancel = context.WithTimeout(ctx, s.Timeout)
				defer cancel()
			}
			log.Debug("retrieving", "query", q.Label, "text", q.Text)
			docs[i], errs[i] = s.Searcher.Retrieve(qctx, q.Text, TopK)
			return nil
		})
	}
	_ = g.Wait()

	var failures []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		docs[i] = nil
		failures = append(failures, fmt.Sprintf("%s: %v", queries[i].Label, err))
		log.Warn("retrieval query failed", "query", queries[i].Label, "err", err)
	}
	if len(failures) == len(queries) {
		return types.RetrievalResult{}, &types.RetrievalError{Failures: failures}
	}

	result := Aggregate(docs)
	log.Info("retrieval complete",
		"documents", countDocs(docs),
		"links", len(result.RelevantLinks),
		"failed_queries", len(failures))
	return result, nil
}

// Aggregate joins per-query document groups into a RetrievalResult. Texts
// keep group order then document order, separated by a blank line. Links
// are deduplicated; the first occurrence fixes a link's position.
func Aggregate(groups [][]types.RetrievedDocument) types.RetrievalResult {
	var texts []string
	links := []string{}
	seen := make(map[string]bool)

	for _, group := range groups {
		for _, d := range group {
			texts = append(texts, d.Text)
			if d.SourceURL == "" || seen[d.SourceURL] {
				continue
			}
			seen[d.SourceURL] = true
			links = append(links, d.SourceURL)
		}
	}

	return types.RetrievalResult{
		CombinedText:  strings.Join(texts, "\n\n"),
		RelevantLinks: links,
	}
}

func countDocs(groups [][]types.RetrievedDocument) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}
