package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pathway-engine/internal/pipeline"
	"github.com/pdiddy/pathway-engine/internal/profile"
	"github.com/pdiddy/pathway-engine/internal/render"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a learning pathway for one learner",
	Long: `Generate runs the full pipeline for a single learner profile and writes the
resulting pathway as JSON, YAML or Markdown.

Profile fields missing from the flags are prompted for when stdin is a
terminal. API keys fall back to .secrets/, the environment and .env.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("learning-style", "", "preferred learning style (e.g. 'intuitive and real-world examples')")
	generateCmd.Flags().String("topic", "", "topic or subject to learn (e.g. 'agentic AI with LangGraph')")
	generateCmd.Flags().String("hobby", "", "hobbies used for analogies (e.g. 'cricket, cooking')")
	generateCmd.Flags().String("domain", "", "domain or field of interest (e.g. 'health care')")
	generateCmd.Flags().String("google-api-key", "", "Google Gemini API key (overrides configured default)")
	generateCmd.Flags().String("tavily-api-key", "", "Tavily API key (overrides configured default)")
	generateCmd.Flags().String("format", render.FormatMarkdown, "output format: json, yaml or markdown")
	generateCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	generateCmd.Flags().String("model", "", "generative model identifier (default from config)")
	generateCmd.Flags().Bool("no-enhance", false, "skip the explanation enhancement stage")
	generateCmd.Flags().Bool("no-input", false, "never prompt for missing fields")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	str := func(name string) string {
		v, _ := flags.GetString(name)
		return strings.TrimSpace(v)
	}

	raw := map[string]string{
		profile.KeyLearningStyle: str("learning-style"),
		profile.KeyProgress:      str("topic"),
		profile.KeyHobby:         str("hobby"),
		profile.KeyDomain:        str("domain"),
		profile.KeyGoogleAPIKey:  str("google-api-key"),
		profile.KeyTavilyAPIKey:  str("tavily-api-key"),
	}

	noInput, _ := flags.GetBool("no-input")
	if !noInput && interactive() {
		if err := promptMissing(raw); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if m := str("model"); m != "" {
		cfg.Generation.Model = m
		cfg.Enhancement.Model = m
	}
	if noEnhance, _ := flags.GetBool("no-enhance"); noEnhance {
		cfg.Enhancement.Disabled = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := pipeline.New(cfg, defaultCredentials)
	pathway, err := p.Run(ctx, raw)
	if err != nil {
		return err
	}
	return writeOutput(str("output"), os.Stdout, pathway, str("format"))
}

// writeOutput renders pathway to path, or to stdout when path is empty. The
// file is only created once rendering has succeeded.
func writeOutput(path string, stdout io.Writer, pathway *types.LearningPathway, format string) error {
	if path == "" {
		return render.Write(stdout, pathway, format)
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, pathway, format); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if _, err := buf.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	in := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	out := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return in && out
}

// promptMissing asks for each empty profile field.
func promptMissing(raw map[string]string) error {
	prompts := []struct {
		key, title, placeholder string
	}{
		{profile.KeyLearningStyle, "Preferred learning style", "intuitive and real-world examples"},
		{profile.KeyProgress, "Learning topic or subject", "Agentic AI using LangGraph"},
		{profile.KeyHobby, "Hobbies", "cricket, watching sitcoms"},
		{profile.KeyDomain, "Domain or field of interest", "health care"},
	}

	values := make(map[string]*string)
	var fields []huh.Field
	for _, p := range prompts {
		if raw[p.key] != "" {
			continue
		}
		v := new(string)
		values[p.key] = v
		fields = append(fields, huh.NewInput().
			Title(p.title).
			Placeholder(p.placeholder).
			Value(v).
			Validate(required(p.title)))
	}
	if len(fields) == 0 {
		return nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("reading profile: %w", err)
	}
	for key, v := range values {
		raw[key] = strings.TrimSpace(*v)
	}
	return nil
}

func required(title string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(title))
		}
		return nil
	}
}
