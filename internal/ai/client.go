// Package ai talks to an external language-model service to suggest
// header-to-canonical-field mappings. The pipeline treats this collaborator
// as optional and untrusted: any failure here is absorbed by the heuristic
// fallback in the suggestion package.
package ai

import "context"

// Suggestion is one proposed pairing returned by the collaborator.
type Suggestion struct {
	SourceHeader string
	Confidence   float64
}

// Client suggests a mapping from file headers to canonical field names.
// Implementations must honor the context deadline; the call is the only
// externally-bounded operation in the pipeline.
type Client interface {
	// SuggestMapping returns canonical field -> suggestion. sampleRows may
	// be empty. An error return means the caller should fall back.
	SuggestMapping(ctx context.Context, headers []string, sampleRows []map[string]string) (map[string]Suggestion, error)

	// Enabled reports whether the collaborator is configured at all.
	Enabled() bool
}

// Disabled is the stub selected when no collaborator is configured.
type Disabled struct{}

func (Disabled) SuggestMapping(context.Context, []string, []map[string]string) (map[string]Suggestion, error) {
	return nil, ErrDisabled
}

func (Disabled) Enabled() bool { return false }
