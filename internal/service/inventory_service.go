package service

import (
	"errors"
	"fmt"
	"strings"

	"go-carwash-pullout/internal/metrics"
	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/internal/repository"
	"go-carwash-pullout/pkg/validator"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSupplyNotFound = errors.New("supply not found")
	ErrSupplyExists   = errors.New("a supply with this name already exists")
)

const stockEvent = "stock_update"

// AdjustStockInput is a manual correction: a delivery, a count, a breakage.
type AdjustStockInput struct {
	Delta decimal.Decimal `json:"delta" validate:"decimal_nonzero"`
	Note  string          `json:"note" validate:"required"`
}

type InventoryService interface {
	CreateSupply(req *model.Supply, actor Actor) error
	UpdateSupply(id uint, req *model.Supply, actor Actor) (*model.Supply, error)
	AdjustStock(id uint, input *AdjustStockInput, actor Actor) (*model.StockMovement, error)
	GetAllSupplies() ([]model.Supply, error)
	GetLowStock() ([]model.Supply, error)
	GetMovements(supplyID uint) ([]model.StockMovement, error)
}

type inventoryService struct {
	supplyRepo   repository.SupplyRepository
	movementRepo repository.MovementRepository
	db           *gorm.DB
	notifier     Notifier
	metrics      *metrics.Collector
}

func NewInventoryService(sRepo repository.SupplyRepository, mRepo repository.MovementRepository, db *gorm.DB, notifier Notifier, m *metrics.Collector) InventoryService {
	return &inventoryService{
		supplyRepo:   sRepo,
		movementRepo: mRepo,
		db:           db,
		notifier:     notifier,
		metrics:      m,
	}
}

func (s *inventoryService) CreateSupply(req *model.Supply, actor Actor) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := newValidationError(validator.ValidateStruct(req)); err != nil {
		return err
	}

	existing, err := s.supplyRepo.FindByName(req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		return ErrSupplyExists
	}

	req.ID = 0
	req.CreatedBy = actor.Label()
	req.UpdatedBy = actor.Label()
	if err := s.supplyRepo.Create(req); err != nil {
		return err
	}

	s.publish("supply_created", req, actor, fmt.Sprintf("%s added supply '%s'", actor.Label(), req.Name))
	return nil
}

// UpdateSupply edits descriptive fields. Stock in the body is ignored; it
// only moves through the ledger.
func (s *inventoryService) UpdateSupply(id uint, req *model.Supply, actor Actor) (*model.Supply, error) {
	existing, err := s.supplyRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSupplyNotFound
	}
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Stock = existing.Stock
	if err := newValidationError(validator.ValidateStruct(req)); err != nil {
		return nil, err
	}

	if !strings.EqualFold(existing.Name, req.Name) {
		dup, err := s.supplyRepo.FindByName(req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if dup != nil && dup.ID != id {
			return nil, ErrSupplyExists
		}
	}

	existing.Name = req.Name
	existing.Unit = req.Unit
	existing.Type = req.Type
	existing.ReorderLevel = req.ReorderLevel
	existing.UpdatedBy = actor.Label()

	if err := s.supplyRepo.UpdateDetails(existing); err != nil {
		return nil, err
	}

	s.publish("supply_updated", existing, actor, fmt.Sprintf("%s updated supply '%s'", actor.Label(), existing.Name))
	return existing, nil
}

func (s *inventoryService) AdjustStock(id uint, input *AdjustStockInput, actor Actor) (*model.StockMovement, error) {
	if err := newValidationError(validator.ValidateStruct(input)); err != nil {
		return nil, err
	}

	var movement *model.StockMovement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		movement, err = s.supplyRepo.Adjust(tx, id, input.Delta, repository.MovementRef{
			Reason:      model.MovementAdjustment,
			PerformedBy: actor.Label(),
			Note:        strings.TrimSpace(input.Note),
		})
		return err
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrSupplyNotFound
	case errors.Is(err, repository.ErrInsufficientStock):
		return nil, fmt.Errorf("%w: adjustment would make stock negative", ErrInsufficientStock)
	case err != nil:
		return nil, err
	}

	s.metrics.StockMoved(string(movement.Reason), movement.Delta)
	if s.notifier != nil {
		s.notifier.Publish(stockEvent, map[string]interface{}{
			"action":    "stock_adjusted",
			"supply_id": id,
			"delta":     movement.Delta,
			"new_stock": movement.BalanceAfter,
			"user":      actor.payload(),
			"message":   fmt.Sprintf("%s adjusted stock by %s", actor.Label(), movement.Delta.String()),
		})
	}
	return movement, nil
}

func (s *inventoryService) GetAllSupplies() ([]model.Supply, error) {
	return s.supplyRepo.FindAll()
}

func (s *inventoryService) GetLowStock() ([]model.Supply, error) {
	return s.supplyRepo.FindLowStock()
}

func (s *inventoryService) GetMovements(supplyID uint) ([]model.StockMovement, error) {
	if _, err := s.supplyRepo.FindByID(supplyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplyNotFound
		}
		return nil, err
	}
	return s.movementRepo.FindBySupply(supplyID)
}

func (s *inventoryService) publish(action string, supply *model.Supply, actor Actor, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(stockEvent, map[string]interface{}{
		"action": action,
		"supply": map[string]interface{}{
			"id":    supply.ID,
			"name":  supply.Name,
			"type":  supply.Type,
			"stock": supply.Stock,
		},
		"user":    actor.payload(),
		"message": message,
	})
}
