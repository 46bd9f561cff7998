package verrors

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

	err = db.AutoMigrate(&entities.ValidationError{})
	require.NoError(t, err)

	return db
}

func TestRepository_SaveAndList(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	errs := []entities.ValidationError{
		{FileID: 1, RowIndex: 1, RuleName: "required_policy_number", FieldName: "policy_number", Severity: entities.SeverityError, Message: "missing"},
		{FileID: 1, RowIndex: 0, RuleName: "premium_non_negative", FieldName: "premium_amount", Severity: entities.SeverityWarning, Message: "negative"},
		{FileID: 2, RowIndex: 0, RuleName: "required_policy_number", FieldName: "policy_number", Severity: entities.SeverityError, Message: "missing"},
	}
	require.NoError(t, repo.SaveErrors(errs))

	got, total, err := repo.ListByFile(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, got, 2)
	// Ordered by row index.
	assert.Equal(t, 0, got[0].RowIndex)
	assert.Equal(t, 1, got[1].RowIndex)
}

func TestRepository_ListByFilePagination(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	var errs []entities.ValidationError
	for i := 0; i < 5; i++ {
		errs = append(errs, entities.ValidationError{
			FileID: 1, RowIndex: i, RuleName: "required_policy_number",
			Severity: entities.SeverityError, Message: "missing",
		})
	}
	require.NoError(t, repo.SaveErrors(errs))

	page, total, err := repo.ListByFile(1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, 2, page[0].RowIndex)
	assert.Equal(t, 3, page[1].RowIndex)
}

func TestRepository_SaveErrorsEmptyIsNoop(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	assert.NoError(t, repo.SaveErrors(nil))
}

func TestRepository_DeleteByFile(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	require.NoError(t, repo.SaveErrors([]entities.ValidationError{
		{FileID: 1, RowIndex: 0, RuleName: "r", Severity: entities.SeverityError},
		{FileID: 2, RowIndex: 0, RuleName: "r", Severity: entities.SeverityError},
	}))

	require.NoError(t, repo.DeleteByFile(1))

	_, total, err := repo.ListByFile(1, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = repo.ListByFile(2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
