package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pathway-engine/internal/fixture"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestForPathwayAcceptsFixture(t *testing.T) {
	require.NoError(t, ForPathway().Validate(fixture.PathwayJSON()))

	var got types.LearningPathway
	require.NoError(t, ForPathway().Decode(fixture.PathwayJSON(), &got))
	assert.Equal(t, *fixture.Pathway(), got)
}

func TestForPathwayShape(t *testing.T) {
	doc := ForPathway().Map()
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has no properties: %s", ForPathway().String())

	phases := props["phases"].(map[string]any)
	assert.EqualValues(t, 7, phases["minItems"])

	required := doc["required"].([]any)
	assert.Contains(t, required, "phases")
	assert.Contains(t, required, "next_steps")
	assert.NotContains(t, required, "relevant_links")
}

func TestForPathwayRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		want   string
	}{
		{
			name:   "too few phases",
			mutate: func(m map[string]any) { m["phases"] = m["phases"].([]any)[:6] },
			want:   "/phases",
		},
		{
			name: "phase with two steps",
			mutate: func(m map[string]any) {
				ph := m["phases"].([]any)[2].(map[string]any)
				ph["steps"] = ph["steps"].([]any)[:2]
			},
			want: "/phases/2/steps",
		},
		{
			name: "phase with five steps",
			mutate: func(m map[string]any) {
				ph := m["phases"].([]any)[0].(map[string]any)
				steps := ph["steps"].([]any)
				ph["steps"] = append(steps, steps[0], steps[1])
			},
			want: "/phases/0/steps",
		},
		{
			name: "unknown step type",
			mutate: func(m map[string]any) {
				step := m["phases"].([]any)[1].(map[string]any)["steps"].([]any)[0].(map[string]any)
				step["type"] = "lecture"
			},
			want: "/phases/1/steps/0/type",
		},
		{
			name: "seven explanation sections",
			mutate: func(m map[string]any) {
				ex := m["explanation_and_kickstart_examples"].([]any)
				m["explanation_and_kickstart_examples"] = append(ex, ex[0], ex[1])
			},
			want: "/explanation_and_kickstart_examples",
		},
		{
			name:   "four milestones",
			mutate: func(m map[string]any) { m["history_and_milestones"] = m["history_and_milestones"].([]any)[:4] },
			want:   "/history_and_milestones",
		},
		{
			name: "milestone year as string",
			mutate: func(m map[string]any) {
				m["history_and_milestones"].([]any)[0].(map[string]any)["year"] = "1736"
			},
			want: "/history_and_milestones/0/year",
		},
		{
			name: "three next steps",
			mutate: func(m map[string]any) {
				ns := m["next_steps"].(map[string]any)
				ns["steps"] = ns["steps"].([]any)[:3]
			},
			want: "/next_steps/steps",
		},
		{
			name:   "missing title",
			mutate: func(m map[string]any) { delete(m, "title") },
			want:   "/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fixture.PathwayMap()
			tt.mutate(m)

			err := ForPathway().Validate(mustJSON(t, m))
			var sve *types.SchemaValidationError
			require.True(t, errors.As(err, &sve), "want SchemaValidationError, got %v", err)
			require.NotEmpty(t, sve.Violations)
			assert.True(t, hasLocation(sve.Violations, tt.want), "violations %v lack location %q", sve.Violations, tt.want)
		})
	}
}

func TestValidateOptionalFields(t *testing.T) {
	m := fixture.PathwayMap()
	m["relevant_links"] = []any{"https://example.com"}
	step := m["phases"].([]any)[0].(map[string]any)["steps"].([]any)[0].(map[string]any)
	delete(step, "benefit")
	delete(step, "practical_focus")

	assert.NoError(t, ForPathway().Validate(mustJSON(t, m)))
}

func TestValidateNonJSON(t *testing.T) {
	err := ForPathway().Validate([]byte("not json"))
	var sve *types.SchemaValidationError
	require.ErrorAs(t, err, &sve)
	assert.Contains(t, err.Error(), "decoding learning_pathway")
}

func TestNewRejectsInvalidSchema(t *testing.T) {
	_, err := New("broken", []byte("{"))
	assert.Error(t, err)
}

// hasLocation reports whether some violation is reported at exactly the
// JSON pointer loc.
func hasLocation(list []string, loc string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, loc+": ") {
			return true
		}
	}
	return false
}
