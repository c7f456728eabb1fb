// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enhance rewrites the explanation sections of a generated pathway
// with longer, phase-aware content. Enhancement is best effort: any failure
// leaves the pathway as generated.
package enhance

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pdiddy/pathway-engine/internal/generation"
	"github.com/pdiddy/pathway-engine/internal/logger"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

// Stage runs the enhancement step.
type Stage struct {
	Generator generation.Generator

	// Timeout bounds the capability call. Zero means no bound.
	Timeout time.Duration
}

var enhancePromptTmpl = template.Must(template.New("enhance").Parse(`You are an expert educator who writes engaging, thorough explanations.

Student profile:
- Learning Style: {{.Profile.LearningStyle}}
- Hobbies/Interests: {{.Profile.Hobby}}
- Domain: {{.Profile.Domain}}
- Topic: {{.Profile.Topic}}

Current learning phases:
{{.Phases}}
Task: write explanation sections that follow the phases above. Each section should
1. break complex concepts into digestible parts,
2. use analogies from {{.Profile.Hobby}} to make concepts relatable,
3. show practical applications in {{.Profile.Domain}},
4. point out common pitfalls and how to avoid them,
5. show how each concept builds on earlier ones.

Write 5-7 sections of 200-400 words each, in language suited to a {{.Profile.LearningStyle}} learner. Focus on why and how rather than only what.

Return ONLY a JSON array of objects with "title" and "content" fields, where content is markdown:
[{"title": "Concept Title", "content": "Detailed markdown explanation..."}]
`))

type promptData struct {
	Profile types.StudentProfile
	Phases  string
}

// PhaseSummary renders every phase and step of p as the text block the
// enhancement prompt embeds.
func PhaseSummary(p *types.LearningPathway) string {
	var b strings.Builder
	for i, ph := range p.Phases {
		fmt.Fprintf(&b, "## Phase %d: %s\n%s\n", i+1, ph.Title, ph.Description)
		for j, st := range ph.Steps {
			fmt.Fprintf(&b, "  %d. %s: %s\n", j+1, st.Title, st.Content)
		}
	}
	return b.String()
}

// Prompt renders the enhancement prompt.
func Prompt(p *types.LearningPathway, profile types.StudentProfile) (string, error) {
	var buf bytes.Buffer
	if err := enhancePromptTmpl.Execute(&buf, promptData{Profile: profile, Phases: PhaseSummary(p)}); err != nil {
		return "", fmt.Errorf("rendering enhancement prompt: %w", err)
	}
	return buf.String(), nil
}

// Run returns a copy of pathway whose explanation sections were replaced by
// the model's output. On any failure it returns pathway itself, unchanged.
// Run never returns an error and never mutates its input.
func (s *Stage) Run(ctx context.Context, pathway *types.LearningPathway, profile types.StudentProfile) *types.LearningPathway {
	log := logger.FromContext(ctx)

	prompt, err := Prompt(pathway, profile)
	if err != nil {
		log.Warn("enhancement skipped", "err", err)
		return pathway
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	out, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		log.Warn("enhancement call failed, keeping generated explanations", "err", err)
		return pathway
	}

	sections, err := ParseSections(out)
	if err != nil {
		log.Warn("enhancement output unusable, keeping generated explanations", "err", err)
		return pathway
	}

	enhanced := pathway.Clone()
	enhanced.ExplanationAndKickstartExamples = sections
	log.Info("explanations enhanced", "sections", len(sections))
	return enhanced
}

// ParseSections decodes a JSON array of {title, content} objects. A
// surrounding code fence is ignored. The array must be non-empty and every
// element must carry string title and content.
func ParseSections(out string) ([]types.ExplanationSection, error) {
	body := generation.StripFence(out)
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	res := gjson.Parse(body)
	if !res.IsArray() {
		return nil, fmt.Errorf("response is not a JSON array")
	}

	items := res.Array()
	if len(items) == 0 {
		return nil, fmt.Errorf("response array is empty")
	}

	sections := make([]types.ExplanationSection, 0, len(items))
	for i, item := range items {
		title, content := item.Get("title"), item.Get("content")
		if !item.IsObject() || title.Type != gjson.String || content.Type != gjson.String {
			return nil, fmt.Errorf("element %d lacks string title or content", i)
		}
		sections = append(sections, types.ExplanationSection{Title: title.Str, Content: content.Str})
	}
	return sections, nil
}
