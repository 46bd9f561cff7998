// Package rows persists validated canonical rows.
package rows

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// SaveRows persists canonical rows for a file, preserving source order.
func (r *Repository) SaveRows(rows []*canonical.Row) error {
	if len(rows) == 0 {
		return nil
	}
	records := make([]entities.BordereauxRow, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return r.db.Create(&records).Error
}

// ListByFile returns a file's rows in source order.
func (r *Repository) ListByFile(fileID uint) ([]entities.BordereauxRow, error) {
	var records []entities.BordereauxRow
	err := r.db.Where("file_id = ?", fileID).Order("row_index ASC").Find(&records).Error
	return records, err
}

// DeleteByFile removes all persisted rows of a file, used on reprocess.
func (r *Repository) DeleteByFile(fileID uint) error {
	return r.db.Where("file_id = ?", fileID).Delete(&entities.BordereauxRow{}).Error
}

func toRecord(row *canonical.Row) entities.BordereauxRow {
	record := entities.BordereauxRow{
		FileID:   row.FileID,
		RowIndex: row.Index,
		RawData:  row.RawData,
	}

	if v, ok := row.String(canonical.FieldPolicyNumber); ok {
		record.PolicyNumber = v
	}
	if v, ok := row.String(canonical.FieldInsuredName); ok {
		record.InsuredName = v
	}
	if v, ok := row.Date(canonical.FieldInceptionDate); ok {
		d := v
		record.InceptionDate = &d
	}
	if v, ok := row.Date(canonical.FieldExpiryDate); ok {
		d := v
		record.ExpiryDate = &d
	}
	if v, ok := row.Decimal(canonical.FieldPremiumAmount); ok {
		d := v
		record.PremiumAmount = &d
	}
	if v, ok := row.String(canonical.FieldCurrency); ok {
		record.Currency = v
	}
	if v, ok := row.Decimal(canonical.FieldClaimAmount); ok {
		d := v
		record.ClaimAmount = &d
	}
	if v, ok := row.Decimal(canonical.FieldCommissionAmount); ok {
		d := v
		record.CommissionAmount = &d
	}
	if v, ok := row.Decimal(canonical.FieldNetPremium); ok {
		d := v
		record.NetPremium = &d
	}
	if v, ok := row.String(canonical.FieldBrokerName); ok {
		record.BrokerName = v
	}
	if v, ok := row.String(canonical.FieldProductType); ok {
		record.ProductType = v
	}
	if v, ok := row.String(canonical.FieldCoverageType); ok {
		record.CoverageType = v
	}
	if v, ok := row.String(canonical.FieldRiskLocation); ok {
		record.RiskLocation = v
	}

	return record
}
