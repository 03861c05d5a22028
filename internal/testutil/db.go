// Package testutil opens throwaway sqlite databases migrated with the
// production model list, plus fixtures for the carwash collaborator tables.
package testutil

import (
	"testing"

	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns an in-memory database. It holds a single connection, so
// code under a transaction must use the tx handle or it will block.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: database.NewLogger("silent"),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func CreateSupply(t testing.TB, db *gorm.DB, id uint, name string, typ model.SupplyType, stock string) model.Supply {
	t.Helper()
	s := model.Supply{
		Name:         name,
		Unit:         "pc",
		Stock:        decimal.RequireFromString(stock),
		Type:         typ,
		ReorderLevel: decimal.NewFromInt(2),
	}
	s.ID = id
	require.NoError(t, db.Create(&s).Error)
	return s
}

func CreateEmployee(t testing.TB, db *gorm.DB, id uint, name string) model.Employee {
	t.Helper()
	e := model.Employee{FullName: name, Position: "Washer", IsActive: true}
	e.ID = id
	require.NoError(t, db.Create(&e).Error)
	return e
}

// JobLine describes a service order with a single job-line.
type JobLine struct {
	DetailID    uint
	OrderStatus model.ServiceOrderStatus
	BayLabel    string // empty means the order has no bay
	EmployeeID  *uint
	ServiceName string
}

// CreateJobLine inserts the order, its optional bay, the service and the
// job-line, and returns the job-line.
func CreateJobLine(t testing.TB, db *gorm.DB, jl JobLine) model.ServiceOrderDetail {
	t.Helper()

	if jl.OrderStatus == "" {
		jl.OrderStatus = model.OrderInProgress
	}
	if jl.ServiceName == "" {
		jl.ServiceName = "Full Wash"
	}

	order := model.ServiceOrder{CustomerName: "Juan Dela Cruz", PlateNumber: "ABC 1234", Status: jl.OrderStatus}
	if jl.BayLabel != "" {
		bay := model.Bay{Label: jl.BayLabel}
		require.NoError(t, db.Where(model.Bay{Label: jl.BayLabel}).FirstOrCreate(&bay).Error)
		order.BayID = &bay.ID
	}
	require.NoError(t, db.Create(&order).Error)

	service := model.Service{Name: jl.ServiceName, Price: decimal.NewFromInt(250)}
	require.NoError(t, db.Create(&service).Error)

	detail := model.ServiceOrderDetail{
		ServiceOrderID: order.ID,
		ServiceID:      service.ID,
		EmployeeID:     jl.EmployeeID,
		Status:         jl.OrderStatus,
	}
	detail.ID = jl.DetailID
	require.NoError(t, db.Create(&detail).Error)
	return detail
}

// StockOf re-reads a supply's stock.
func StockOf(t testing.TB, db *gorm.DB, supplyID uint) decimal.Decimal {
	t.Helper()
	var s model.Supply
	require.NoError(t, db.Select("id", "stock").First(&s, supplyID).Error)
	return s.Stock
}

func Count(t testing.TB, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}
