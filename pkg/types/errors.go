// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError reports a malformed or incomplete profile. It is the only
// user-correctable error kind.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid profile: " + e.Reason
	}
	return fmt.Sprintf("invalid profile: %s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

// RetrievalError reports that every search query failed.
type RetrievalError struct {
	Failures []string
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for all %d queries: %s", len(e.Failures), strings.Join(e.Failures, "; "))
}

// GenerationError reports a transport, auth, or timeout failure of the
// generative-model capability.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation call failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SchemaValidationError reports capability output that does not conform to
// the LearningPathway schema.
type SchemaValidationError struct {
	Violations []string
	Err        error
}

func (e *SchemaValidationError) Error() string {
	var b strings.Builder
	b.WriteString("output does not conform to schema")
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Violations) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Violations, "; "))
	}
	return b.String()
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// StatusCode maps a pipeline error to the HTTP status a transport layer
// should answer with: 400 for validation failures, 500 for everything else.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
