package suggestion

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mrlokans/bordereaux/internal/ai"
	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/entities"
)

// Generator builds mapping proposals for unmatched files. The AI
// collaborator is consulted first when enabled; any failure there degrades
// silently to the heuristic matcher.
type Generator struct {
	aiClient  ai.Client
	heuristic *Heuristic
}

func NewGenerator(aiClient ai.Client, heuristic *Heuristic) *Generator {
	if aiClient == nil {
		aiClient = ai.Disabled{}
	}
	if heuristic == nil {
		heuristic = NewHeuristic(0)
	}
	return &Generator{aiClient: aiClient, heuristic: heuristic}
}

// Generate produces a pending proposal for the file. It never fails because
// of the AI collaborator; the only error paths are encoding the proposal
// payload itself.
func (g *Generator) Generate(ctx context.Context, fileID uint, headers []string, sampleRows []map[string]string) (*entities.MappingProposal, error) {
	candidates, source := g.candidates(ctx, headers, sampleRows)

	proposal := &entities.MappingProposal{
		ProposalID:        uuid.NewString(),
		FileID:            fileID,
		Source:            source,
		Status:            entities.ProposalPending,
		OverallConfidence: overallConfidence(candidates),
	}
	if err := proposal.SetCandidates(candidates); err != nil {
		return nil, fmt.Errorf("build proposal for file %d: %w", fileID, err)
	}
	if err := proposal.SetHeaderList(headers); err != nil {
		return nil, fmt.Errorf("build proposal for file %d: %w", fileID, err)
	}
	return proposal, nil
}

func (g *Generator) candidates(ctx context.Context, headers []string, sampleRows []map[string]string) (map[string]entities.FieldCandidate, entities.ProposalSource) {
	if g.aiClient.Enabled() {
		suggested, err := g.aiClient.SuggestMapping(ctx, headers, sampleRows)
		if err == nil && len(suggested) > 0 {
			candidates := make(map[string]entities.FieldCandidate, len(suggested))
			for field, s := range suggested {
				candidates[field] = entities.FieldCandidate{
					SourceHeader: s.SourceHeader,
					Confidence:   s.Confidence,
				}
			}
			return candidates, entities.ProposalSourceAI
		}
		if err != nil {
			log.Printf("[SUGGESTION] ai collaborator failed, using heuristic matching: %v", err)
		}
	}
	return g.heuristic.Match(headers), entities.ProposalSourceHeuristic
}

// overallConfidence averages per-field confidence across the whole schema;
// unmapped fields count as zero.
func overallConfidence(candidates map[string]entities.FieldCandidate) float64 {
	total := len(canonical.FieldNames())
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range candidates {
		sum += c.Confidence
	}
	return sum / float64(total)
}
