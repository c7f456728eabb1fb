// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes a LearningPathway as JSON, YAML or Markdown.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pathway-engine/pkg/types"
)

// Output formats accepted by Write.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatYAML, FormatMarkdown}

// Write encodes p to w in the given format.
func Write(w io.Writer, p *types.LearningPathway, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return JSON(w, p)
	case FormatYAML, "yml":
		return YAML(w, p)
	case FormatMarkdown, "md":
		return Markdown(w, p)
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// JSON writes p as indented JSON.
func JSON(w io.Writer, p *types.LearningPathway) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// YAML writes p as YAML.
func YAML(w io.Writer, p *types.LearningPathway) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

var markdownTmpl = template.Must(template.New("pathway").Funcs(template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"title": stepTypeLabel,
}).Parse(`# {{.Title}}

{{.Introduction}}
{{range $i, $ph := .Phases}}
## Phase {{inc $i}}: {{$ph.Title}}

{{$ph.Description}}
{{range $j, $st := $ph.Steps}}
### {{inc $j}}. {{$st.Title}} ({{title $st.Type}})

{{$st.Content}}
{{if $st.Benefit}}
**Benefit:** {{$st.Benefit}}
{{end}}{{if $st.PracticalFocus}}
**Practical focus:** {{$st.PracticalFocus}}
{{end}}{{end}}{{end}}
## Explanation and Kickstart Examples
{{range .ExplanationAndKickstartExamples}}
### {{.Title}}

{{.Content}}
{{end}}
## History and Milestones
{{range .HistoryAndMilestones}}
- **{{.Year}}**: {{.Description}}{{end}}

## {{.NextSteps.Title}}
{{range .NextSteps.Steps}}
- **{{.Title}}**: {{.Description}}{{end}}
{{if .RelevantLinks}}
## Relevant Links
{{range .RelevantLinks}}
- <{{.}}>{{end}}
{{end}}`))

// Markdown writes p as a Markdown document with the same sections the web
// front end displays.
func Markdown(w io.Writer, p *types.LearningPathway) error {
	if err := markdownTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	return nil
}

func stepTypeLabel(t types.StepType) string {
	s := string(t)
	if s == "" {
		return "step"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
