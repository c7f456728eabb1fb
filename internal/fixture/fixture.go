// Package fixture builds LearningPathway values for tests.
package fixture

import (
	"encoding/json"
	"fmt"

	"github.com/pdiddy/pathway-engine/pkg/types"
)

// Pathway returns a minimal pathway that satisfies every cardinality
// constraint of the generation schema: 7 phases of 3 steps, 5 explanation
// sections, 5 milestones and 4 next steps. RelevantLinks is nil.
func Pathway() *types.LearningPathway {
	p := &types.LearningPathway{
		Title:        "Graph Theory for Chess Players",
		Introduction: "Welcome to graph theory through the lens of chess.",
		NextSteps:    types.NextStepsSection{Title: "Where to go next"},
	}
	stepTypes := []types.StepType{types.StepConcept, types.StepExample, types.StepProject}
	for i := 1; i <= 7; i++ {
		phase := types.PathwayPhase{
			Title:       fmt.Sprintf("Phase %d", i),
			Description: fmt.Sprintf("Description of phase %d", i),
		}
		for j, st := range stepTypes {
			phase.Steps = append(phase.Steps, types.PathwayStep{
				Title:   fmt.Sprintf("Step %d.%d", i, j+1),
				Type:    st,
				Content: fmt.Sprintf("Content for step %d.%d", i, j+1),
			})
		}
		p.Phases = append(p.Phases, phase)
	}
	p.Phases[0].Steps[0].Benefit = "Routes trucks like knights."
	p.Phases[0].Steps[0].PracticalFocus = "Draw the knight's graph."

	for i := 1; i <= 5; i++ {
		p.ExplanationAndKickstartExamples = append(p.ExplanationAndKickstartExamples, types.ExplanationSection{
			Title:   fmt.Sprintf("Explanation %d", i),
			Content: fmt.Sprintf("Original explanation %d", i),
		})
		p.HistoryAndMilestones = append(p.HistoryAndMilestones, types.Milestone{
			Year:        1735 + i*50,
			Description: fmt.Sprintf("Milestone %d", i),
		})
	}
	for i := 1; i <= 4; i++ {
		p.NextSteps.Steps = append(p.NextSteps.Steps, types.NextStepItem{
			Title:       fmt.Sprintf("Next %d", i),
			Description: fmt.Sprintf("Do thing %d", i),
		})
	}
	return p
}

// PathwayJSON returns Pathway encoded as JSON the way a model would emit
// it, without the relevant_links key.
func PathwayJSON() []byte {
	b, err := json.Marshal(PathwayMap())
	if err != nil {
		panic(err)
	}
	return b
}

// PathwayMap returns Pathway as a generic JSON object so tests can break
// individual fields before re-encoding. relevant_links is omitted.
func PathwayMap() map[string]any {
	b, err := json.Marshal(Pathway())
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	delete(m, "relevant_links")
	return m
}
