package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PulloutStatus string

const (
	PulloutPending  PulloutStatus = "pending"
	PulloutApproved PulloutStatus = "approved"
	PulloutRejected PulloutStatus = "rejected"
)

// PulloutService links a pullout back to the job-line and the bay it was
// served in. BayLabel is a snapshot taken when the request is created.
type PulloutService struct {
	BaseModel
	ServiceOrderDetailID uint                `gorm:"not null;index" json:"service_order_detail_id"`
	ServiceOrderDetail   *ServiceOrderDetail `gorm:"foreignKey:ServiceOrderDetailID" json:"service_order_detail,omitempty"`
	BayLabel             string              `gorm:"type:varchar(100)" json:"bay_label"`
}

type PulloutRequest struct {
	BaseModel
	EmployeeID           uint            `gorm:"not null;index" json:"employee_id"`
	Employee             *Employee       `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	ServiceOrderDetailID uint            `gorm:"not null;index" json:"service_order_detail_id"`
	PulloutServiceID     uint            `gorm:"not null;index" json:"pullout_service_id"`
	PulloutService       *PulloutService `gorm:"foreignKey:PulloutServiceID" json:"pullout_service,omitempty"`

	Status    PulloutStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DecidedBy string        `gorm:"type:varchar(255)" json:"decided_by,omitempty"`
	DecidedAt *time.Time    `json:"decided_at,omitempty"`

	Details []PulloutRequestDetail `gorm:"foreignKey:PulloutRequestID" json:"details"`
}

func (r *PulloutRequest) IsPending() bool {
	return r.Status == PulloutPending
}

type PulloutRequestDetail struct {
	BaseModel
	PulloutRequestID uint            `gorm:"not null;index" json:"pullout_request_id"`
	PulloutRequest   *PulloutRequest `gorm:"foreignKey:PulloutRequestID" json:"-"`
	PulloutServiceID uint            `gorm:"not null;index" json:"pullout_service_id"`
	SupplyID         uint            `gorm:"not null;index" json:"supply_id"`
	Supply           *Supply         `gorm:"foreignKey:SupplyID" json:"supply,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`

	IsReturned bool       `gorm:"not null;default:false" json:"is_returned"`
	ReturnedBy string     `gorm:"type:varchar(255)" json:"returned_by,omitempty"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// QuantityDecimal converts the requested line quantity for ledger arithmetic.
func (d *PulloutRequestDetail) QuantityDecimal() decimal.Decimal {
	return decimal.NewFromInt(int64(d.Quantity))
}
