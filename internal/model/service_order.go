package model

import "github.com/shopspring/decimal"

// The tables below belong to the booking and staffing screens. The pullout
// workflow only reads them to resolve names, bays and active jobs.

type Bay struct {
	BaseModel
	Label string `gorm:"type:varchar(100);not null;uniqueIndex" json:"label"`
}

type Employee struct {
	BaseModel
	FullName string `gorm:"type:varchar(255);not null" json:"full_name"`
	Position string `gorm:"type:varchar(100)" json:"position"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

type Service struct {
	BaseModel
	Name  string          `gorm:"type:varchar(255);not null" json:"name"`
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
}

type ServiceOrderStatus string

const (
	OrderPending    ServiceOrderStatus = "pending"
	OrderInProgress ServiceOrderStatus = "in_progress"
	OrderCompleted  ServiceOrderStatus = "completed"
	OrderCancelled  ServiceOrderStatus = "cancelled"
)

// ActiveOrderStatuses are the order states that can still draw supplies.
var ActiveOrderStatuses = []ServiceOrderStatus{OrderPending, OrderInProgress}

type ServiceOrder struct {
	BaseModel
	CustomerName string               `gorm:"type:varchar(255);not null" json:"customer_name"`
	PlateNumber  string               `gorm:"type:varchar(20);index" json:"plate_number"`
	BayID        *uint                `gorm:"index" json:"bay_id"`
	Bay          *Bay                 `gorm:"foreignKey:BayID" json:"bay,omitempty"`
	Status       ServiceOrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Details      []ServiceOrderDetail `gorm:"foreignKey:ServiceOrderID" json:"details,omitempty"`
}

// ServiceOrderDetail is a single job-line: one service performed on one order.
type ServiceOrderDetail struct {
	BaseModel
	ServiceOrderID uint               `gorm:"not null;index" json:"service_order_id"`
	ServiceOrder   *ServiceOrder      `gorm:"foreignKey:ServiceOrderID" json:"service_order,omitempty"`
	ServiceID      uint               `gorm:"not null;index" json:"service_id"`
	Service        *Service           `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	EmployeeID     *uint              `gorm:"index" json:"employee_id"`
	Employee       *Employee          `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Status         ServiceOrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
}
