package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BordereauxRow is a validated canonical row persisted for a file.
// Only rows with zero error-severity violations are stored.
type BordereauxRow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	FileID   uint `gorm:"index;not null" json:"file_id"`
	RowIndex int  `gorm:"index" json:"row_index"` // 0-based, source row order

	PolicyNumber  string     `gorm:"size:100;index" json:"policy_number,omitempty"`
	InsuredName   string     `gorm:"size:255" json:"insured_name,omitempty"`
	InceptionDate *time.Time `gorm:"index" json:"inception_date,omitempty"`
	ExpiryDate    *time.Time `gorm:"index" json:"expiry_date,omitempty"`

	PremiumAmount    *decimal.Decimal `gorm:"type:decimal(18,4)" json:"premium_amount,omitempty"`
	Currency         string           `gorm:"size:10" json:"currency,omitempty"`
	ClaimAmount      *decimal.Decimal `gorm:"type:decimal(18,4)" json:"claim_amount,omitempty"`
	CommissionAmount *decimal.Decimal `gorm:"type:decimal(18,4)" json:"commission_amount,omitempty"`
	NetPremium       *decimal.Decimal `gorm:"type:decimal(18,4)" json:"net_premium,omitempty"`

	BrokerName   string `gorm:"size:255" json:"broker_name,omitempty"`
	ProductType  string `gorm:"size:100" json:"product_type,omitempty"`
	CoverageType string `gorm:"size:100" json:"coverage_type,omitempty"`
	RiskLocation string `gorm:"size:255" json:"risk_location,omitempty"`

	// Original source row as JSON, kept for audit and template debugging.
	RawData string `gorm:"type:text" json:"raw_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (BordereauxRow) TableName() string {
	return "bordereaux_rows"
}
