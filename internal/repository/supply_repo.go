package repository

import (
	"errors"

	"go-carwash-pullout/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
)

// MovementRef describes why a ledger entry was written and by whom.
type MovementRef struct {
	Reason      model.MovementReason
	ReferenceID *uint
	PerformedBy string
	Note        string
}

type SupplyRepository interface {
	Create(supply *model.Supply) error
	FindAll() ([]model.Supply, error)
	FindByID(id uint) (*model.Supply, error)
	FindByIDs(ids []uint) (map[uint]model.Supply, error)
	FindByName(name string) (*model.Supply, error)
	FindLowStock() ([]model.Supply, error)
	UpdateDetails(supply *model.Supply) error

	// Ledger operations. They run on the caller's transaction and are the
	// only code paths that change supplies.stock.
	Deduct(tx *gorm.DB, supplyID uint, qty decimal.Decimal, ref MovementRef) (*model.StockMovement, error)
	Restore(tx *gorm.DB, supplyID uint, qty decimal.Decimal, ref MovementRef) (*model.StockMovement, error)
	Adjust(tx *gorm.DB, supplyID uint, delta decimal.Decimal, ref MovementRef) (*model.StockMovement, error)
}

type supplyRepo struct {
	db *gorm.DB
}

func NewSupplyRepo(db *gorm.DB) SupplyRepository {
	return &supplyRepo{db}
}

func (r *supplyRepo) Create(supply *model.Supply) error {
	return r.db.Create(supply).Error
}

func (r *supplyRepo) FindAll() ([]model.Supply, error) {
	var supplies []model.Supply
	err := r.db.Order("name ASC").Find(&supplies).Error
	return supplies, err
}

func (r *supplyRepo) FindByID(id uint) (*model.Supply, error) {
	var supply model.Supply
	if err := r.db.First(&supply, id).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *supplyRepo) FindByIDs(ids []uint) (map[uint]model.Supply, error) {
	found := make(map[uint]model.Supply, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var supplies []model.Supply
	if err := r.db.Where("id IN ?", ids).Find(&supplies).Error; err != nil {
		return nil, err
	}
	for _, s := range supplies {
		found[s.ID] = s
	}
	return found, nil
}

func (r *supplyRepo) FindByName(name string) (*model.Supply, error) {
	var supply model.Supply
	if err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&supply).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *supplyRepo) FindLowStock() ([]model.Supply, error) {
	var supplies []model.Supply
	err := r.db.Where("stock <= reorder_level").Order("name ASC").Find(&supplies).Error
	return supplies, err
}

// UpdateDetails saves everything except stock.
func (r *supplyRepo) UpdateDetails(supply *model.Supply) error {
	res := r.db.Model(&model.Supply{}).
		Where("id = ?", supply.ID).
		Updates(map[string]interface{}{
			"name":          supply.Name,
			"unit":          supply.Unit,
			"type":          supply.Type,
			"reorder_level": supply.ReorderLevel,
			"updated_by":    supply.UpdatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *supplyRepo) Deduct(tx *gorm.DB, supplyID uint, qty decimal.Decimal, ref MovementRef) (*model.StockMovement, error) {
	if !qty.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	return r.apply(tx, supplyID, qty.Neg(), ref)
}

func (r *supplyRepo) Restore(tx *gorm.DB, supplyID uint, qty decimal.Decimal, ref MovementRef) (*model.StockMovement, error) {
	if !qty.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	return r.apply(tx, supplyID, qty, ref)
}

// Adjust applies a signed manual correction. The result may not go below zero.
func (r *supplyRepo) Adjust(tx *gorm.DB, supplyID uint, delta decimal.Decimal, ref MovementRef) (*model.StockMovement, error) {
	if delta.IsZero() {
		return nil, ErrInvalidQuantity
	}
	return r.apply(tx, supplyID, delta, ref)
}

// apply changes stock with a single relative UPDATE. Decrements carry a
// "stock >= qty" guard so two concurrent deductions can never oversell.
func (r *supplyRepo) apply(tx *gorm.DB, supplyID uint, delta decimal.Decimal, ref MovementRef) (*model.StockMovement, error) {
	query := tx.Model(&model.Supply{}).Where("id = ?", supplyID)
	if delta.IsNegative() {
		query = query.Where("stock >= ?", delta.Abs())
	}

	res := query.Updates(map[string]interface{}{
		"stock":      gorm.Expr("stock + ?", delta),
		"updated_by": ref.PerformedBy,
	})
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&model.Supply{}).Where("id = ?", supplyID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, ErrInsufficientStock
	}

	var after model.Supply
	if err := tx.Select("id", "stock").First(&after, supplyID).Error; err != nil {
		return nil, err
	}

	movement := &model.StockMovement{
		SupplyID:     supplyID,
		Delta:        delta,
		BalanceAfter: after.Stock,
		Reason:       ref.Reason,
		ReferenceID:  ref.ReferenceID,
		PerformedBy:  ref.PerformedBy,
		Note:         ref.Note,
	}
	movement.CreatedBy = ref.PerformedBy
	movement.UpdatedBy = ref.PerformedBy

	if err := tx.Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}
