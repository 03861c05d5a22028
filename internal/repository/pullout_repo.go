package repository

import (
	"time"

	"go-carwash-pullout/internal/model"

	"gorm.io/gorm"
)

type PulloutRepository interface {
	CreateService(tx *gorm.DB, svc *model.PulloutService) error
	CreateRequest(tx *gorm.DB, req *model.PulloutRequest) error
	CreateDetail(tx *gorm.DB, detail *model.PulloutRequestDetail) error

	FindByID(id uint) (*model.PulloutRequest, error)
	FindAll() ([]model.PulloutRequest, error)
	FindReturnable() ([]model.ReturnableLine, error)

	Exists(tx *gorm.DB, id uint) (bool, error)
	FindDetails(tx *gorm.DB, requestID uint) ([]model.PulloutRequestDetail, error)
	FindDetailForReturn(tx *gorm.DB, detailID uint) (*model.PulloutRequestDetail, error)

	// Decide moves a pending request to status. It reports false when the
	// request was not pending (or does not exist), leaving the row untouched.
	Decide(tx *gorm.DB, id uint, status model.PulloutStatus, decidedBy string, at time.Time) (bool, error)
	// MarkReturned flips is_returned once. It reports false when the line was
	// already returned.
	MarkReturned(tx *gorm.DB, detailID uint, returnedBy string, at time.Time) (bool, error)
	SoftDelete(tx *gorm.DB, id uint, deletedBy string) error
}

type pulloutRepo struct {
	db *gorm.DB
}

func NewPulloutRepo(db *gorm.DB) PulloutRepository {
	return &pulloutRepo{db}
}

func (r *pulloutRepo) CreateService(tx *gorm.DB, svc *model.PulloutService) error {
	return tx.Create(svc).Error
}

// CreateRequest inserts the header only; details are written one by one.
func (r *pulloutRepo) CreateRequest(tx *gorm.DB, req *model.PulloutRequest) error {
	return tx.Omit("Details", "Employee", "PulloutService").Create(req).Error
}

func (r *pulloutRepo) CreateDetail(tx *gorm.DB, detail *model.PulloutRequestDetail) error {
	return tx.Omit("Supply", "PulloutRequest").Create(detail).Error
}

func withRequestGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Employee").
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Details.Supply").
		Preload("PulloutService.ServiceOrderDetail.Service")
}

func (r *pulloutRepo) FindByID(id uint) (*model.PulloutRequest, error) {
	var req model.PulloutRequest
	if err := withRequestGraph(r.db).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *pulloutRepo) FindAll() ([]model.PulloutRequest, error) {
	var reqs []model.PulloutRequest
	err := withRequestGraph(r.db).Order("created_at DESC, id DESC").Find(&reqs).Error
	return reqs, err
}

// FindReturnable lists every line of an approved request whose supply is
// returnable, returned or not. Unreturned lines sort first.
func (r *pulloutRepo) FindReturnable() ([]model.ReturnableLine, error) {
	var lines []model.ReturnableLine
	err := r.db.Table("pullout_request_details AS d").
		Select(`
			d.id AS detail_id,
			d.pullout_request_id,
			d.supply_id,
			s.name AS supply_name,
			s.unit,
			d.quantity,
			COALESCE(e.full_name, '') AS employee_name,
			COALESCE(sv.name, '') AS service_name,
			COALESCE(ps.bay_label, '') AS bay_label,
			r.decided_at AS approved_at,
			d.is_returned,
			COALESCE(d.returned_by, '') AS returned_by,
			d.returned_at
		`).
		Joins("JOIN pullout_requests r ON r.id = d.pullout_request_id AND r.deleted_at IS NULL").
		Joins("JOIN supplies s ON s.id = d.supply_id").
		Joins("LEFT JOIN employees e ON e.id = r.employee_id").
		Joins("LEFT JOIN pullout_services ps ON ps.id = d.pullout_service_id").
		Joins("LEFT JOIN service_order_details sod ON sod.id = r.service_order_detail_id").
		Joins("LEFT JOIN services sv ON sv.id = sod.service_id").
		Where("d.deleted_at IS NULL AND r.status = ? AND s.type = ?", model.PulloutApproved, model.SupplyReturnable).
		Order("d.is_returned ASC, r.decided_at DESC, d.id ASC").
		Scan(&lines).Error
	return lines, err
}

func (r *pulloutRepo) Exists(tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := tx.Model(&model.PulloutRequest{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *pulloutRepo) FindDetails(tx *gorm.DB, requestID uint) ([]model.PulloutRequestDetail, error) {
	var details []model.PulloutRequestDetail
	err := tx.Preload("Supply").Where("pullout_request_id = ?", requestID).Order("id ASC").Find(&details).Error
	return details, err
}

func (r *pulloutRepo) FindDetailForReturn(tx *gorm.DB, detailID uint) (*model.PulloutRequestDetail, error) {
	var detail model.PulloutRequestDetail
	if err := tx.Preload("Supply").Preload("PulloutRequest").First(&detail, detailID).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *pulloutRepo) Decide(tx *gorm.DB, id uint, status model.PulloutStatus, decidedBy string, at time.Time) (bool, error) {
	res := tx.Model(&model.PulloutRequest{}).
		Where("id = ? AND status = ?", id, model.PulloutPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": at,
			"updated_by": decidedBy,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *pulloutRepo) MarkReturned(tx *gorm.DB, detailID uint, returnedBy string, at time.Time) (bool, error) {
	res := tx.Model(&model.PulloutRequestDetail{}).
		Where("id = ? AND is_returned = ?", detailID, false).
		Updates(map[string]interface{}{
			"is_returned": true,
			"returned_by": returnedBy,
			"returned_at": at,
			"updated_by":  returnedBy,
		})
	return res.RowsAffected > 0, res.Error
}

// SoftDelete removes the header, its lines and its service link. Stock is
// not touched.
func (r *pulloutRepo) SoftDelete(tx *gorm.DB, id uint, deletedBy string) error {
	var req model.PulloutRequest
	if err := tx.First(&req, id).Error; err != nil {
		return err
	}

	if err := tx.Model(&model.PulloutRequestDetail{}).
		Where("pullout_request_id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	if err := tx.Where("pullout_request_id = ?", id).Delete(&model.PulloutRequestDetail{}).Error; err != nil {
		return err
	}

	if err := tx.Model(&model.PulloutService{}).Where("id = ?", req.PulloutServiceID).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	if err := tx.Delete(&model.PulloutService{}, req.PulloutServiceID).Error; err != nil {
		return err
	}

	if err := tx.Model(&req).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(&req).Error
}
