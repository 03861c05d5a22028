package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PulloutRequestView is the list row shown on the pullout screen.
type PulloutRequestView struct {
	ID              uint                   `json:"id"`
	EmployeeID      uint                   `json:"employee_id"`
	EmployeeName    string                 `json:"employee_name"`
	ServiceName     string                 `json:"service_name"`
	BayLabel        string                 `json:"bay_label"`
	SuppliesSummary string                 `json:"supplies_summary"`
	Status          PulloutStatus          `json:"status"`
	DecidedBy       string                 `json:"decided_by,omitempty"`
	DecidedAt       *time.Time             `json:"decided_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	Details         []PulloutRequestDetail `json:"details"`
}

// ReturnableLine is one approved line of a returnable supply.
type ReturnableLine struct {
	DetailID         uint       `json:"detail_id"`
	PulloutRequestID uint       `json:"pullout_request_id"`
	SupplyID         uint       `json:"supply_id"`
	SupplyName       string     `json:"supply_name"`
	Unit             string     `json:"unit"`
	Quantity         int        `json:"quantity"`
	EmployeeName     string     `json:"employee_name"`
	ServiceName      string     `json:"service_name"`
	BayLabel         string     `json:"bay_label"`
	ApprovedAt       *time.Time `json:"approved_at"`
	IsReturned       bool       `json:"is_returned"`
	ReturnedBy       string     `json:"returned_by,omitempty"`
	ReturnedAt       *time.Time `json:"returned_at,omitempty"`
}

// ActiveServiceOrder is a job-line that can still receive a pullout.
type ActiveServiceOrder struct {
	ServiceOrderDetailID uint               `json:"service_order_detail_id"`
	ServiceOrderID       uint               `json:"service_order_id"`
	CustomerName         string             `json:"customer_name"`
	PlateNumber          string             `json:"plate_number"`
	ServiceName          string             `json:"service_name"`
	BayLabel             string             `json:"bay_label"`
	EmployeeID           uint               `json:"employee_id"`
	EmployeeName         string             `json:"employee_name"`
	Status               ServiceOrderStatus `json:"status"`
}

type StockMovementData struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

type DashboardStats struct {
	TotalSupplies   int64 `json:"total_supplies"`
	LowStockCount   int64 `json:"low_stock_count"`
	PendingPullouts int64 `json:"pending_pullouts"`
	UnreturnedItems int64 `json:"unreturned_items"`
}
