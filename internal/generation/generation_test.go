package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pathway-engine/internal/fixture"
	"github.com/pdiddy/pathway-engine/internal/schema"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

// --- mock generator ---

type mockGenerator struct {
	raw        []byte
	err        error
	delay      time.Duration
	prompt     string
	structured atomic.Int32
}

func (m *mockGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func (m *mockGenerator) GenerateStructured(ctx context.Context, prompt string, _ *schema.Descriptor) ([]byte, error) {
	m.structured.Add(1)
	m.prompt = prompt
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.raw, m.err
}

func testProfile() types.StudentProfile {
	return types.StudentProfile{
		LearningStyle: "visual",
		Topic:         "graph theory",
		Hobby:         "chess",
		Domain:        "logistics",
	}
}

func TestPromptIncludesProfileAndContext(t *testing.T) {
	got, err := Prompt(testProfile(), "CONTEXT-BLOCK")
	require.NoError(t, err)
	for _, want := range []string{"visual", "graph theory", "chess", "logistics", "CONTEXT-BLOCK", "At least 7 learning phases", "5-7 historical milestones"} {
		assert.Contains(t, got, want)
	}
}

func TestRunReturnsValidPathway(t *testing.T) {
	m := &mockGenerator{raw: fixture.PathwayJSON()}
	s := &Stage{Generator: m}

	got, err := s.Run(context.Background(), testProfile(), "ctx")
	require.NoError(t, err)
	assert.Equal(t, fixture.Pathway().Title, got.Title)
	assert.Len(t, got.Phases, 7)
	assert.EqualValues(t, 1, m.structured.Load())
	assert.Contains(t, m.prompt, "ctx")
}

func TestRunDiscardsGeneratedLinks(t *testing.T) {
	m := fixture.PathwayMap()
	m["relevant_links"] = []any{"https://invented.example"}
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	s := &Stage{Generator: &mockGenerator{raw: raw}}
	got, err := s.Run(context.Background(), testProfile(), "")
	require.NoError(t, err)
	assert.Nil(t, got.RelevantLinks)
}

func TestRunSchemaViolation(t *testing.T) {
	m := fixture.PathwayMap()
	m["phases"] = m["phases"].([]any)[:6]
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	s := &Stage{Generator: &mockGenerator{raw: raw}}
	_, err = s.Run(context.Background(), testProfile(), "")

	var sve *types.SchemaValidationError
	require.ErrorAs(t, err, &sve)
	assert.NotEmpty(t, sve.Violations)
}

func TestRunNonJSONOutput(t *testing.T) {
	s := &Stage{Generator: &mockGenerator{raw: []byte("Sure! Here is your pathway.")}}
	_, err := s.Run(context.Background(), testProfile(), "")

	var sve *types.SchemaValidationError
	assert.ErrorAs(t, err, &sve)
}

func TestRunCapabilityError(t *testing.T) {
	s := &Stage{Generator: &mockGenerator{err: errors.New("403 permission denied")}}
	_, err := s.Run(context.Background(), testProfile(), "")

	var ge *types.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, StageName, ge.Stage)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestRunTimeout(t *testing.T) {
	s := &Stage{
		Generator: &mockGenerator{raw: fixture.PathwayJSON(), delay: time.Second},
		Timeout:   20 * time.Millisecond,
	}
	_, err := s.Run(context.Background(), testProfile(), "")

	var ge *types.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"padded", "  [1]\n", "[1]"},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```\n", "[1,2]"},
		{"unterminated", "```json\n[1]", "[1]"},
		{"fence only", "```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFence(tt.in))
		})
	}
}

func TestPromptDoesNotMentionLinksAsOutput(t *testing.T) {
	got, err := Prompt(testProfile(), "")
	require.NoError(t, err)
	assert.False(t, strings.Contains(got, "relevant_links"))
}
