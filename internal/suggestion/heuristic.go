// Package suggestion produces candidate column mappings for files that
// matched no template. An AI collaborator is tried first when configured;
// the heuristic matcher below is the fallback and never fails.
package suggestion

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/entities"
)

// DefaultThreshold is the minimum similarity score for a heuristic pairing.
const DefaultThreshold = 0.6

// fieldSynonyms lists header spellings commonly seen in the wild for each
// canonical field. Matching any of them counts as strong evidence.
var fieldSynonyms = map[string][]string{
	canonical.FieldPolicyNumber:     {"policy", "pol", "policy_no", "policy_number", "pol_no", "policy_ref"},
	canonical.FieldInsuredName:      {"insured", "client", "customer", "name", "insured_name", "client_name"},
	canonical.FieldInceptionDate:    {"inception", "start", "start_date", "effective", "effective_date", "incept", "commence"},
	canonical.FieldExpiryDate:       {"expiry", "expire", "end", "end_date", "expiration", "exp_date"},
	canonical.FieldPremiumAmount:    {"premium", "prem", "premium_amount", "premium_amt", "premium_total", "total_premium", "gross_premium"},
	canonical.FieldCurrency:         {"currency", "curr", "ccy", "currency_code", "curr_code"},
	canonical.FieldClaimAmount:      {"claim", "claim_amount", "claim_amt", "claim_total", "loss", "loss_amount", "paid"},
	canonical.FieldCommissionAmount: {"commission", "comm", "commission_amount", "comm_amt", "brokerage"},
	canonical.FieldNetPremium:       {"net", "net_premium", "net_prem", "net_amount"},
	canonical.FieldBrokerName:       {"broker", "broker_name", "intermediary", "agent"},
	canonical.FieldProductType:      {"product", "product_type", "product_name", "line", "line_of_business"},
	canonical.FieldCoverageType:     {"coverage", "cover", "coverage_type", "class"},
	canonical.FieldRiskLocation:     {"location", "loc", "risk_location", "address", "premises", "property"},
}

// Heuristic maps headers to canonical fields by normalized edit distance
// plus a synonym-dictionary bonus.
type Heuristic struct {
	Threshold float64
}

// NewHeuristic creates a matcher with the given threshold; zero or negative
// means DefaultThreshold.
func NewHeuristic(threshold float64) *Heuristic {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Heuristic{Threshold: threshold}
}

// Match pairs each canonical field with the best-scoring unused header.
// Fields with no header above the threshold are left out. Fields are
// considered in schema order and headers in file order, so the result is
// deterministic for a given input.
func (h *Heuristic) Match(headers []string) map[string]entities.FieldCandidate {
	used := make(map[int]bool, len(headers))
	result := make(map[string]entities.FieldCandidate)

	for _, field := range canonical.FieldNames() {
		bestIdx := -1
		bestScore := 0.0
		for i, header := range headers {
			if used[i] {
				continue
			}
			score := h.score(field, header)
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx >= 0 && bestScore >= h.Threshold {
			used[bestIdx] = true
			result[field] = entities.FieldCandidate{
				SourceHeader: headers[bestIdx],
				Confidence:   bestScore,
			}
		}
	}

	return result
}

// score combines the field's own name and its synonyms: an exact match on
// either is 1.0, containment is scored by length ratio, and fuzzy edit
// distance contributes a discounted floor.
func (h *Heuristic) score(field, header string) float64 {
	normalized := canonical.NormalizeHeader(header)
	if normalized == "" {
		return 0
	}

	candidates := append([]string{field}, fieldSynonyms[field]...)
	best := 0.0
	for _, keyword := range candidates {
		keyword = canonical.NormalizeHeader(keyword)
		if keyword == normalized {
			return 1.0
		}
		if s := containmentScore(keyword, normalized); s > best {
			best = s
		}
		if s := similarity(keyword, normalized) * 0.7; s > best {
			best = s
		}
	}
	return best
}

func containmentScore(keyword, header string) float64 {
	if keyword == "" || header == "" {
		return 0
	}
	if strings.Contains(header, keyword) {
		s := float64(len(keyword)) / float64(len(header))
		return math.Min(s, 0.9)
	}
	if strings.Contains(keyword, header) {
		s := float64(len(header)) / float64(len(keyword))
		return math.Min(s, 0.8)
	}
	return 0
}

// similarity is the Levenshtein distance normalized to [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
