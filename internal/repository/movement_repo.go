package repository

import (
	"time"

	"go-carwash-pullout/internal/model"

	"gorm.io/gorm"
)

// MovementRepository reads the stock ledger and the counters behind the dashboard.
type MovementRepository interface {
	FindBySupply(supplyID uint) ([]model.StockMovement, error)
	GetStockMovement(startDate, endDate time.Time) ([]model.StockMovementData, error)
	GetDashboardStats() (*model.DashboardStats, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) FindBySupply(supplyID uint) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.Where("supply_id = ?", supplyID).Order("created_at DESC, id DESC").Find(&movements).Error
	return movements, err
}

func (r *movementRepo) GetStockMovement(startDate, endDate time.Time) ([]model.StockMovementData, error) {
	results := []model.StockMovementData{}

	rows, err := r.db.Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data model.StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *movementRepo) GetDashboardStats() (*model.DashboardStats, error) {
	var stats model.DashboardStats

	if err := r.db.Model(&model.Supply{}).Count(&stats.TotalSupplies).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Supply{}).Where("stock <= reorder_level").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.PulloutRequest{}).Where("status = ?", model.PulloutPending).Count(&stats.PendingPullouts).Error; err != nil {
		return nil, err
	}

	// Approved returnable lines still out on the floor
	err := r.db.Model(&model.PulloutRequestDetail{}).
		Joins("JOIN pullout_requests r ON r.id = pullout_request_details.pullout_request_id AND r.deleted_at IS NULL").
		Joins("JOIN supplies s ON s.id = pullout_request_details.supply_id").
		Where("r.status = ? AND s.type = ? AND pullout_request_details.is_returned = ?", model.PulloutApproved, model.SupplyReturnable, false).
		Count(&stats.UnreturnedItems).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
