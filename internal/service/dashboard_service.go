package service

import (
	"time"

	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/internal/repository"
)

type DashboardService interface {
	GetStockMovement(days int) ([]model.StockMovementData, error)
	GetDashboardStats() (*model.DashboardStats, error)
}

type dashboardService struct {
	movementRepo repository.MovementRepository
	now          func() time.Time
}

func NewDashboardService(mRepo repository.MovementRepository) DashboardService {
	return &dashboardService{movementRepo: mRepo, now: time.Now}
}

func (s *dashboardService) GetStockMovement(days int) ([]model.StockMovementData, error) {
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.movementRepo.GetStockMovement(startDate, endDate)
}

func (s *dashboardService) GetDashboardStats() (*model.DashboardStats, error) {
	return s.movementRepo.GetDashboardStats()
}
