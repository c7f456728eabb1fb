// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Credentials holds the keys for the two external capabilities. A request
// carries its own resolved copy; nothing reads ambient configuration
// mid-pipeline.
type Credentials struct {
	// SearchKey authenticates the search capability (Tavily).
	SearchKey string `json:"tavily_api_key,omitempty" yaml:"tavily_api_key,omitempty"`

	// GenerationKey authenticates the generative-model capability (Gemini).
	GenerationKey string `json:"google_api_key,omitempty" yaml:"google_api_key,omitempty"`
}

// Complete reports whether both keys are present.
func (c Credentials) Complete() bool {
	return c.SearchKey != "" && c.GenerationKey != ""
}

// Merge returns c with empty fields filled from fallback.
func (c Credentials) Merge(fallback Credentials) Credentials {
	if c.SearchKey == "" {
		c.SearchKey = fallback.SearchKey
	}
	if c.GenerationKey == "" {
		c.GenerationKey = fallback.GenerationKey
	}
	return c
}

// StudentProfile is the validated learner description for one request.
// It is passed by value and never modified after construction.
type StudentProfile struct {
	LearningStyle string      `json:"learning_style" yaml:"learning_style"`
	Topic         string      `json:"progress" yaml:"progress"`
	Hobby         string      `json:"hobby" yaml:"hobby"`
	Domain        string      `json:"domain" yaml:"domain"`
	Credentials   Credentials `json:"-" yaml:"-"`
}

// RetrievedDocument is one search hit. SourceURL is empty when the search
// provider did not report one.
type RetrievedDocument struct {
	Text      string `json:"text" yaml:"text"`
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
}

// RetrievalResult is the aggregated output of the retrieval stage.
type RetrievalResult struct {
	// CombinedText concatenates every document text in query order, then
	// document order, separated by a blank line.
	CombinedText string `json:"combined_text" yaml:"combined_text"`

	// RelevantLinks holds each distinct source URL once.
	RelevantLinks []string `json:"relevant_links" yaml:"relevant_links"`
}
