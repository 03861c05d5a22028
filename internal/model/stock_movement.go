package model

import "github.com/shopspring/decimal"

type MovementReason string

const (
	MovementPulloutApproval MovementReason = "pullout_approval"
	MovementPulloutReturn   MovementReason = "pullout_return"
	MovementAdjustment      MovementReason = "adjustment"
)

// StockMovement is one append-only ledger entry. Delta is negative for
// deductions and positive for restorations.
type StockMovement struct {
	BaseModel
	SupplyID     uint            `gorm:"not null;index" json:"supply_id"`
	Supply       *Supply         `gorm:"foreignKey:SupplyID" json:"supply,omitempty"`
	Delta        decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"delta"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"balance_after"`
	Reason       MovementReason  `gorm:"type:varchar(30);not null;index" json:"reason"`
	ReferenceID  *uint           `gorm:"index" json:"reference_id,omitempty"`
	PerformedBy  string          `gorm:"type:varchar(255)" json:"performed_by"`
	Note         string          `gorm:"type:text" json:"note,omitempty"`
}
