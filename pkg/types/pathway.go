// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pathway-engine pipeline:
// the student profile, retrieval results, the LearningPathway artifact, the
// error taxonomy, and per-stage configuration.
//
// The jsonschema tags on LearningPathway are the structural contract the
// generation stage enforces; see internal/schema.
package types

// StepType classifies a PathwayStep.
type StepType string

const (
	StepConcept  StepType = "concept"
	StepExample  StepType = "example"
	StepProject  StepType = "project"
	StepResource StepType = "resource"
)

// PathwayStep is a single learning step within a phase.
type PathwayStep struct {
	Title          string   `json:"title" yaml:"title" jsonschema:"required" jsonschema_description:"The title of the learning step"`
	Type           StepType `json:"type" yaml:"type" jsonschema:"required,enum=concept,enum=example,enum=project,enum=resource" jsonschema_description:"Type of the learning step"`
	Content        string   `json:"content" yaml:"content" jsonschema:"required" jsonschema_description:"Detailed content of the step in markdown format"`
	Benefit        string   `json:"benefit,omitempty" yaml:"benefit,omitempty" jsonschema_description:"The specific benefit of this step for the user's domain"`
	PracticalFocus string   `json:"practical_focus,omitempty" yaml:"practical_focus,omitempty" jsonschema_description:"A practical action item or thought experiment"`
}

// PathwayPhase groups three to four steps under a title.
type PathwayPhase struct {
	Title       string        `json:"title" yaml:"title" jsonschema:"required" jsonschema_description:"Title of the learning phase"`
	Description string        `json:"description" yaml:"description" jsonschema:"required" jsonschema_description:"Brief overview of what this phase covers"`
	Steps       []PathwayStep `json:"steps" yaml:"steps" jsonschema:"required,minItems=3,maxItems=4" jsonschema_description:"Individual learning steps within the phase"`
}

// ExplanationSection explains one concept using the student's hobbies.
type ExplanationSection struct {
	Title   string `json:"title" yaml:"title" jsonschema:"required" jsonschema_description:"The concept being explained"`
	Content string `json:"content" yaml:"content" jsonschema:"required" jsonschema_description:"Detailed explanation using analogies from the user's hobbies"`
}

// Milestone is a dated moment in the history of the topic.
type Milestone struct {
	Year        int    `json:"year" yaml:"year" jsonschema:"required" jsonschema_description:"The year of the milestone"`
	Description string `json:"description" yaml:"description" jsonschema:"required" jsonschema_description:"Description of the milestone"`
}

// NextStepItem is one recommendation for after the pathway.
type NextStepItem struct {
	Title       string `json:"title" yaml:"title" jsonschema:"required" jsonschema_description:"Short title for the next step"`
	Description string `json:"description" yaml:"description" jsonschema:"required" jsonschema_description:"Detailed description of the suggested next step"`
}

// NextStepsSection closes the pathway with actionable follow-ups.
type NextStepsSection struct {
	Title string         `json:"title" yaml:"title" jsonschema:"required" jsonschema_description:"Title for the next steps section"`
	Steps []NextStepItem `json:"steps" yaml:"steps" jsonschema:"required,minItems=4,maxItems=5" jsonschema_description:"List of actionable next steps"`
}

// LearningPathway is the canonical structured curriculum produced by the
// pipeline. RelevantLinks is owned by the orchestrator and is not part of
// the generation contract.
type LearningPathway struct {
	Title                           string               `json:"title" yaml:"title" jsonschema:"required" jsonschema_description:"Catchy and relevant title for the learning pathway"`
	Introduction                    string               `json:"introduction" yaml:"introduction" jsonschema:"required" jsonschema_description:"Brief, welcoming introduction to the learning pathway"`
	Phases                          []PathwayPhase       `json:"phases" yaml:"phases" jsonschema:"required,minItems=7" jsonschema_description:"Main learning phases, broken down into logical sections"`
	ExplanationAndKickstartExamples []ExplanationSection `json:"explanation_and_kickstart_examples" yaml:"explanation_and_kickstart_examples" jsonschema:"required,minItems=5,maxItems=6" jsonschema_description:"Detailed explanations with hobby-specific examples"`
	HistoryAndMilestones            []Milestone          `json:"history_and_milestones" yaml:"history_and_milestones" jsonschema:"required,minItems=5,maxItems=7" jsonschema_description:"Key historical moments and milestones"`
	NextSteps                       NextStepsSection     `json:"next_steps" yaml:"next_steps" jsonschema:"required" jsonschema_description:"Suggestions for what to do after completing the pathway"`
	RelevantLinks                   []string             `json:"relevant_links" yaml:"relevant_links" jsonschema_description:"List of useful URLs for further reading"`
}

// Clone returns a deep copy of the pathway.
func (p *LearningPathway) Clone() *LearningPathway {
	if p == nil {
		return nil
	}
	out := *p

	if p.Phases != nil {
		out.Phases = make([]PathwayPhase, len(p.Phases))
		for i, ph := range p.Phases {
			out.Phases[i] = ph
			if ph.Steps != nil {
				out.Phases[i].Steps = append([]PathwayStep(nil), ph.Steps...)
			}
		}
	}
	if p.ExplanationAndKickstartExamples != nil {
		out.ExplanationAndKickstartExamples = append([]ExplanationSection(nil), p.ExplanationAndKickstartExamples...)
	}
	if p.HistoryAndMilestones != nil {
		out.HistoryAndMilestones = append([]Milestone(nil), p.HistoryAndMilestones...)
	}
	if p.NextSteps.Steps != nil {
		out.NextSteps.Steps = append([]NextStepItem(nil), p.NextSteps.Steps...)
	}
	if p.RelevantLinks != nil {
		out.RelevantLinks = append([]string(nil), p.RelevantLinks...)
	}
	return &out
}
