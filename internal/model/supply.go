package model

import "github.com/shopspring/decimal"

type SupplyType string

const (
	// SupplyConsumable is used up by a job and never comes back.
	SupplyConsumable SupplyType = "consumable"
	// SupplyReturnable covers tools and equipment expected back after use.
	SupplyReturnable SupplyType = "returnable"
)

type Supply struct {
	BaseModel
	Name         string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Unit         string          `gorm:"type:varchar(20);not null" json:"unit" validate:"required"`
	Stock        decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock" validate:"decimal_gte0"`
	Type         SupplyType      `gorm:"type:varchar(20);not null;index" json:"type" validate:"required,oneof=consumable returnable"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"reorder_level" validate:"decimal_gte0"`
}

func (s *Supply) IsReturnable() bool {
	return s.Type == SupplyReturnable
}

// IsLowStock reports whether stock has reached the reorder level.
func (s *Supply) IsLowStock() bool {
	return s.Stock.LessThanOrEqual(s.ReorderLevel)
}
