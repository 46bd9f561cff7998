package proposals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/bordereaux/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.MappingProposal{})
	require.NoError(t, err)

	return db
}

func createProposal(t *testing.T, repo *Repository, proposalID string, fileID uint) *entities.MappingProposal {
	t.Helper()
	proposal := &entities.MappingProposal{
		ProposalID:        proposalID,
		FileID:            fileID,
		Source:            entities.ProposalSourceHeuristic,
		OverallConfidence: 0.5,
	}
	require.NoError(t, repo.Create(proposal))
	return proposal
}

func TestRepository_CreateDefaultsToPending(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	proposal := createProposal(t, repo, "p1", 1)
	assert.Equal(t, entities.ProposalPending, proposal.Status)
}

func TestRepository_Approve(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	createProposal(t, repo, "p1", 1)

	approved, err := repo.Approve("p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", approved.ProposalID)

	got, err := repo.GetByProposalID("p1")
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalApproved, got.Status)
	assert.NotNil(t, got.ReviewedAt)

	// A reviewed proposal cannot be reviewed again.
	_, err = repo.Reject("p1")
	assert.Error(t, err)
}

func TestRepository_Reject(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	createProposal(t, repo, "p1", 1)

	_, err := repo.Reject("p1")
	require.NoError(t, err)

	got, err := repo.GetByProposalID("p1")
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalRejected, got.Status)
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	createProposal(t, repo, "p1", 1)
	createProposal(t, repo, "p2", 2)
	_, err := repo.Approve("p1")
	require.NoError(t, err)

	t.Run("all", func(t *testing.T) {
		got, total, err := repo.List("", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, got, 2)
	})

	t.Run("pending only", func(t *testing.T) {
		got, total, err := repo.List(entities.ProposalPending, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, "p2", got[0].ProposalID)
	})
}

func TestRepository_ListByFile(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	createProposal(t, repo, "p1", 1)
	createProposal(t, repo, "p2", 1)
	createProposal(t, repo, "p3", 2)

	got, err := repo.ListByFile(1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Most recent first.
	assert.Equal(t, "p2", got[0].ProposalID)
}
