// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generation turns a student profile and retrieved context into a
// schema-conformant LearningPathway by calling a generative model.
package generation

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/pathway-engine/internal/logger"
	"github.com/pdiddy/pathway-engine/internal/schema"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

// StageName labels errors raised by this stage.
const StageName = "generation"

// Generator is the generative-model capability.
type Generator interface {
	// Generate returns free-form text for prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStructured returns raw JSON intended to satisfy d. Callers
	// must still validate the result.
	GenerateStructured(ctx context.Context, prompt string, d *schema.Descriptor) ([]byte, error)
}

// Stage runs the structured generation step.
type Stage struct {
	Generator Generator

	// Timeout bounds the capability call. Zero means no bound.
	Timeout time.Duration
}

var pathwayPromptTmpl = template.Must(template.New("pathway").Parse(`Create a personalized, adaptive learning pathway for a learner with the following preferences:
- Preferred Learning Style: {{.Profile.LearningStyle}}
- Learning Topic/Subject: {{.Profile.Topic}}
- Hobbies: {{.Profile.Hobby}}
- Domain/Field of Interest: {{.Profile.Domain}}

Act as an agentic learning assistant. Curate the best resources, design a comprehensive personalized adaptive learning pathway, and explain each step clearly.

Use the following context to enrich the plan with diverse perspectives and broad coverage:
{{.Context}}

The pathway should include:
1. An engaging history of the topic with 5-7 key milestones.
2. Examples customized around the learner's hobbies throughout the explanation sections.
3. Real-world project ideas and use cases relevant to their domain.
4. Phases that build on each other in a logical progression.

Structure the response with:
- A catchy title and a welcoming introduction
- At least 7 learning phases, each with 3-4 detailed steps typed "concept", "example" or "project"
- 5-6 explanation sections with hobby-specific analogies
- 5-7 historical milestones, each with an integer year
- A next steps section with 4-5 actionable recommendations

The tone should be encouraging, clear and personalized. Use markdown formatting in content fields.
`))

type promptData struct {
	Profile types.StudentProfile
	Context string
}

// Prompt renders the generation prompt for p and the retrieved context.
func Prompt(p types.StudentProfile, combinedText string) (string, error) {
	var buf bytes.Buffer
	if err := pathwayPromptTmpl.Execute(&buf, promptData{Profile: p, Context: combinedText}); err != nil {
		return "", fmt.Errorf("rendering pathway prompt: %w", err)
	}
	return buf.String(), nil
}

// Run generates a pathway. A failed or timed-out call yields a
// *types.GenerationError; output that violates the pathway schema yields a
// *types.SchemaValidationError. The returned pathway has no RelevantLinks.
func (s *Stage) Run(ctx context.Context, p types.StudentProfile, combinedText string) (*types.LearningPathway, error) {
	log := logger.FromContext(ctx)

	prompt, err := Prompt(p, combinedText)
	if err != nil {
		return nil, &types.GenerationError{Stage: StageName, Err: err}
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	d := schema.ForPathway()
	start := time.Now()
	raw, err := s.Generator.GenerateStructured(ctx, prompt, d)
	if err != nil {
		return nil, &types.GenerationError{Stage: StageName, Err: err}
	}
	log.Debug("structured output received", "bytes", len(raw), "elapsed", time.Since(start))

	var pathway types.LearningPathway
	if err := d.Decode(raw, &pathway); err != nil {
		log.Warn("structured output rejected", "err", err)
		return nil, err
	}
	pathway.RelevantLinks = nil

	log.Info("pathway generated", "title", pathway.Title, "phases", len(pathway.Phases))
	return &pathway, nil
}

// StripFence removes a surrounding markdown code fence (``` or ```json)
// from model output. Text without a fence is returned trimmed.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
