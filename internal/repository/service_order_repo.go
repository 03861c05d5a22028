package repository

import (
	"go-carwash-pullout/internal/model"

	"gorm.io/gorm"
)

// ServiceOrderRepository reads the booking side of the shop. The pullout
// workflow never writes these tables.
type ServiceOrderRepository interface {
	FindDetailByID(id uint) (*model.ServiceOrderDetail, error)
	BayLabelForDetail(tx *gorm.DB, detailID uint) (string, error)
	FindActiveForPullout() ([]model.ActiveServiceOrder, error)
}

type serviceOrderRepo struct {
	db *gorm.DB
}

func NewServiceOrderRepo(db *gorm.DB) ServiceOrderRepository {
	return &serviceOrderRepo{db}
}

func (r *serviceOrderRepo) FindDetailByID(id uint) (*model.ServiceOrderDetail, error) {
	var detail model.ServiceOrderDetail
	if err := r.db.Preload("ServiceOrder.Bay").Preload("Service").First(&detail, id).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

// BayLabelForDetail returns "" when the job-line or its order has no bay.
func (r *serviceOrderRepo) BayLabelForDetail(tx *gorm.DB, detailID uint) (string, error) {
	var labels []string
	err := tx.Table("service_order_details AS sod").
		Joins("JOIN service_orders so ON so.id = sod.service_order_id AND so.deleted_at IS NULL").
		Joins("JOIN bays b ON b.id = so.bay_id AND b.deleted_at IS NULL").
		Where("sod.id = ? AND sod.deleted_at IS NULL", detailID).
		Limit(1).
		Pluck("b.label", &labels).Error
	if err != nil || len(labels) == 0 {
		return "", err
	}
	return labels[0], nil
}

// FindActiveForPullout lists staffed job-lines on pending or in-progress
// orders. Lines that already have a pullout are still listed.
func (r *serviceOrderRepo) FindActiveForPullout() ([]model.ActiveServiceOrder, error) {
	var orders []model.ActiveServiceOrder
	err := r.db.Table("service_order_details AS sod").
		Select(`
			sod.id AS service_order_detail_id,
			so.id AS service_order_id,
			so.customer_name,
			so.plate_number,
			COALESCE(sv.name, '') AS service_name,
			COALESCE(b.label, '') AS bay_label,
			sod.employee_id,
			e.full_name AS employee_name,
			so.status
		`).
		Joins("JOIN service_orders so ON so.id = sod.service_order_id AND so.deleted_at IS NULL").
		Joins("JOIN employees e ON e.id = sod.employee_id AND e.deleted_at IS NULL").
		Joins("LEFT JOIN services sv ON sv.id = sod.service_id").
		Joins("LEFT JOIN bays b ON b.id = so.bay_id").
		Where("sod.deleted_at IS NULL AND so.status IN ?", model.ActiveOrderStatuses).
		Order("so.created_at ASC, sod.id ASC").
		Scan(&orders).Error
	return orders, err
}
