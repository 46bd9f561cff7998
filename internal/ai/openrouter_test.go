package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bordereaux/internal/canonical"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func TestOpenRouterClient_SuggestMapping(t *testing.T) {
	content := `{
		"mappings": {"Policy Ref": "policy_number", "Start": "inception_date", "Mystery": "not_a_field"},
		"confidence_scores": {"Policy Ref": 0.95, "Start": 0.8, "Mystery": 0.9}
	}`
	srv := chatServer(t, content, http.StatusOK)
	defer srv.Close()

	client := NewOpenRouterClient("test-key", WithBaseURL(srv.URL))
	got, err := client.SuggestMapping(context.Background(), []string{"Policy Ref", "Start", "Mystery"}, nil)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, Suggestion{SourceHeader: "Policy Ref", Confidence: 0.95}, got[canonical.FieldPolicyNumber])
	assert.Equal(t, Suggestion{SourceHeader: "Start", Confidence: 0.8}, got[canonical.FieldInceptionDate])
}

func TestOpenRouterClient_StripsMarkdownFence(t *testing.T) {
	content := "```json\n{\"mappings\": {\"Policy Ref\": \"policy_number\"}, \"confidence_scores\": {\"Policy Ref\": 0.9}}\n```"
	srv := chatServer(t, content, http.StatusOK)
	defer srv.Close()

	client := NewOpenRouterClient("test-key", WithBaseURL(srv.URL))
	got, err := client.SuggestMapping(context.Background(), []string{"Policy Ref"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Policy Ref", got[canonical.FieldPolicyNumber].SourceHeader)
}

func TestOpenRouterClient_DiscardsUnknownHeadersAndBadConfidence(t *testing.T) {
	content := `{
		"mappings": {"Ghost": "policy_number", "Premium": "premium_amount"},
		"confidence_scores": {"Ghost": 0.9, "Premium": 1.7}
	}`
	srv := chatServer(t, content, http.StatusOK)
	defer srv.Close()

	client := NewOpenRouterClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SuggestMapping(context.Background(), []string{"Premium"}, nil)
	assert.Error(t, err) // nothing usable survives filtering
}

func TestOpenRouterClient_PrefersHigherConfidenceForDuplicateField(t *testing.T) {
	content := `{
		"mappings": {"Premium": "premium_amount", "Gross Premium": "premium_amount"},
		"confidence_scores": {"Premium": 0.6, "Gross Premium": 0.9}
	}`
	srv := chatServer(t, content, http.StatusOK)
	defer srv.Close()

	client := NewOpenRouterClient("test-key", WithBaseURL(srv.URL))
	got, err := client.SuggestMapping(context.Background(), []string{"Premium", "Gross Premium"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gross Premium", got[canonical.FieldPremiumAmount].SourceHeader)
}

func TestOpenRouterClient_EqualConfidenceBreaksTieOnHeader(t *testing.T) {
	content := `{
		"mappings": {"Premium": "premium_amount", "Gross Premium": "premium_amount"},
		"confidence_scores": {"Premium": 0.8, "Gross Premium": 0.8}
	}`

	// Parse the same answer repeatedly; the winner must not depend on map
	// iteration order.
	for i := 0; i < 50; i++ {
		got, err := parseModelOutput(content, []string{"Premium", "Gross Premium"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "Gross Premium", got[canonical.FieldPremiumAmount].SourceHeader, "run %d", i)
	}
}

func TestOpenRouterClient_ErrorStatus(t *testing.T) {
	srv := chatServer(t, "", http.StatusTooManyRequests)
	defer srv.Close()

	client := NewOpenRouterClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SuggestMapping(context.Background(), []string{"Premium"}, nil)
	assert.Error(t, err)
}

func TestOpenRouterClient_MalformedModelOutput(t *testing.T) {
	srv := chatServer(t, "sorry, I can't help with that", http.StatusOK)
	defer srv.Close()

	client := NewOpenRouterClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SuggestMapping(context.Background(), []string{"Premium"}, nil)
	assert.Error(t, err)
}

func TestOpenRouterClient_DisabledWithoutKey(t *testing.T) {
	client := NewOpenRouterClient("")
	assert.False(t, client.Enabled())
	_, err := client.SuggestMapping(context.Background(), []string{"Premium"}, nil)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestDisabledStub(t *testing.T) {
	var c Client = Disabled{}
	assert.False(t, c.Enabled())
	_, err := c.SuggestMapping(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrDisabled)
}
