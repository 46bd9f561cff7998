package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bordereaux/internal/entities"
)

func makeTemplate(t *testing.T, id string, fileType entities.FileType, mappings map[string]string) entities.Template {
	t.Helper()
	tpl := entities.Template{
		TemplateID: id,
		Name:       id,
		FileType:   fileType,
		Active:     true,
	}
	require.NoError(t, tpl.SetMappings(mappings))
	return tpl
}

var premiumMappings = map[string]string{
	"Policy Number":  "policy_number",
	"Inception Date": "inception_date",
	"Expiry Date":    "expiry_date",
	"Premium Amount": "premium_amount",
}

func TestMatch_ExactHeadersScoreOne(t *testing.T) {
	templates := []entities.Template{
		makeTemplate(t, "tpl-premium", entities.FileTypePremium, premiumMappings),
	}
	headers := []string{"Policy Number", "Inception Date", "Expiry Date", "Premium Amount"}

	result, err := Match(headers, entities.FileTypeUnknown, templates, 0)
	require.NoError(t, err)
	require.True(t, result.Matched())
	assert.Equal(t, "tpl-premium", result.Template.TemplateID)
	assert.Equal(t, 1.0, result.Score)
}

func TestMatch_NormalizationBridgesHeaderVariants(t *testing.T) {
	templates := []entities.Template{
		makeTemplate(t, "tpl-premium", entities.FileTypePremium, premiumMappings),
	}
	headers := []string{"policy_number", "INCEPTION DATE", " Expiry  Date ", "premium-amount"}

	result, err := Match(headers, entities.FileTypeUnknown, templates, 0)
	require.NoError(t, err)
	require.True(t, result.Matched())
	assert.Equal(t, 1.0, result.Score)
}

func TestMatch_BelowThresholdNoMatch(t *testing.T) {
	templates := []entities.Template{
		makeTemplate(t, "tpl-premium", entities.FileTypePremium, premiumMappings),
	}
	// Only 2 of 4 template keys present: score 0.5 < 0.8.
	headers := []string{"Policy Number", "Inception Date", "Something", "Else"}

	result, err := Match(headers, entities.FileTypeUnknown, templates, 0)
	require.NoError(t, err)
	assert.False(t, result.Matched())
	assert.Zero(t, result.Score)
}

func TestMatch_NoOverlapNoMatch(t *testing.T) {
	templates := []entities.Template{
		makeTemplate(t, "tpl-premium", entities.FileTypePremium, premiumMappings),
	}
	result, err := Match([]string{"Foo", "Bar"}, entities.FileTypeUnknown, templates, 0)
	require.NoError(t, err)
	assert.False(t, result.Matched())
}

func TestMatch_FileTypeFilter(t *testing.T) {
	templates := []entities.Template{
		makeTemplate(t, "tpl-premium", entities.FileTypePremium, premiumMappings),
		makeTemplate(t, "tpl-claims", entities.FileTypeClaims, map[string]string{
			"Policy Number": "policy_number",
			"Claim Amount":  "claim_amount",
		}),
	}
	headers := []string{"Policy Number", "Claim Amount"}

	result, err := Match(headers, entities.FileTypeClaims, templates, 0)
	require.NoError(t, err)
	require.True(t, result.Matched())
	assert.Equal(t, "tpl-claims", result.Template.TemplateID)

	// Hint excludes the only template that would match.
	result, err = Match(headers, entities.FileTypeExposure, templates, 0)
	require.NoError(t, err)
	assert.False(t, result.Matched())
}

func TestMatch_InactiveTemplatesIgnored(t *testing.T) {
	tpl := makeTemplate(t, "tpl-premium", entities.FileTypePremium, premiumMappings)
	tpl.Active = false

	result, err := Match([]string{"Policy Number", "Inception Date", "Expiry Date", "Premium Amount"},
		entities.FileTypeUnknown, []entities.Template{tpl}, 0)
	require.NoError(t, err)
	assert.False(t, result.Matched())
}

func TestMatch_TieBreaks(t *testing.T) {
	small := map[string]string{
		"Policy Number": "policy_number",
		"Claim Amount":  "claim_amount",
	}
	large := map[string]string{
		"Policy Number": "policy_number",
		"Claim Amount":  "claim_amount",
		"Loss Date":     "inception_date",
	}
	headers := []string{"Policy Number", "Claim Amount", "Loss Date"}

	t.Run("larger mapping set wins at equal score", func(t *testing.T) {
		templates := []entities.Template{
			makeTemplate(t, "a-small", entities.FileTypeClaims, small),
			makeTemplate(t, "b-large", entities.FileTypeClaims, large),
		}
		result, err := Match(headers, entities.FileTypeClaims, templates, 0)
		require.NoError(t, err)
		require.True(t, result.Matched())
		assert.Equal(t, "b-large", result.Template.TemplateID)
	})

	t.Run("smallest id wins at equal score and size", func(t *testing.T) {
		templates := []entities.Template{
			makeTemplate(t, "zzz", entities.FileTypeClaims, small),
			makeTemplate(t, "aaa", entities.FileTypeClaims, small),
		}
		result, err := Match(headers, entities.FileTypeClaims, templates, 0)
		require.NoError(t, err)
		require.True(t, result.Matched())
		assert.Equal(t, "aaa", result.Template.TemplateID)
	})

	t.Run("deterministic regardless of catalog order", func(t *testing.T) {
		templates := []entities.Template{
			makeTemplate(t, "aaa", entities.FileTypeClaims, small),
			makeTemplate(t, "zzz", entities.FileTypeClaims, small),
		}
		result, err := Match(headers, entities.FileTypeClaims, templates, 0)
		require.NoError(t, err)
		require.True(t, result.Matched())
		assert.Equal(t, "aaa", result.Template.TemplateID)
	})
}
