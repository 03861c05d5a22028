package main

import (
	"log"

	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/pkg/config"
	"go-carwash-pullout/pkg/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeds a small carwash so the pullout screens have something to show.
// Safe to run more than once: rows are matched by their natural keys.
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.ConnectDB(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		bays, err := seedBays(tx, "Bay 1", "Bay 2", "Bay 3")
		if err != nil {
			return err
		}
		services, err := seedServices(tx)
		if err != nil {
			return err
		}
		employees, err := seedEmployees(tx)
		if err != nil {
			return err
		}
		if err := seedSupplies(tx); err != nil {
			return err
		}
		return seedOrders(tx, bays, services, employees)
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Demo data ready")
}

func seedBays(tx *gorm.DB, labels ...string) ([]model.Bay, error) {
	bays := make([]model.Bay, 0, len(labels))
	for _, label := range labels {
		bay := model.Bay{Label: label}
		if err := tx.Where(model.Bay{Label: label}).FirstOrCreate(&bay).Error; err != nil {
			return nil, err
		}
		bays = append(bays, bay)
	}
	return bays, nil
}

func seedServices(tx *gorm.DB) ([]model.Service, error) {
	catalog := []struct {
		name  string
		price int64
	}{
		{"Basic Wash", 180},
		{"Wash & Wax", 350},
		{"Interior Detailing", 900},
		{"Engine Wash", 450},
	}

	services := make([]model.Service, 0, len(catalog))
	for _, c := range catalog {
		svc := model.Service{Name: c.name}
		if err := tx.Where(model.Service{Name: c.name}).
			Attrs(model.Service{Price: decimal.NewFromInt(c.price)}).
			FirstOrCreate(&svc).Error; err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, nil
}

func seedEmployees(tx *gorm.DB) ([]model.Employee, error) {
	names := []string{"Pedro Reyes", "Ana Villanueva", "Jomar Bautista"}

	employees := make([]model.Employee, 0, len(names))
	for _, name := range names {
		e := model.Employee{FullName: name}
		if err := tx.Where(model.Employee{FullName: name}).
			Attrs(model.Employee{Position: "Washer", IsActive: true}).
			FirstOrCreate(&e).Error; err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, nil
}

func seedSupplies(tx *gorm.DB) error {
	supplies := []model.Supply{
		{Name: "Car Shampoo", Unit: "L", Type: model.SupplyConsumable, Stock: decimal.NewFromInt(40), ReorderLevel: decimal.NewFromInt(10)},
		{Name: "Microfiber Towel", Unit: "pc", Type: model.SupplyConsumable, Stock: decimal.NewFromInt(60), ReorderLevel: decimal.NewFromInt(15)},
		{Name: "Tire Black", Unit: "L", Type: model.SupplyConsumable, Stock: decimal.RequireFromString("12.5"), ReorderLevel: decimal.NewFromInt(5)},
		{Name: "Pressure Washer", Unit: "unit", Type: model.SupplyReturnable, Stock: decimal.NewFromInt(3), ReorderLevel: decimal.NewFromInt(1)},
		{Name: "Wet/Dry Vacuum", Unit: "unit", Type: model.SupplyReturnable, Stock: decimal.NewFromInt(2), ReorderLevel: decimal.NewFromInt(1)},
		{Name: "Foam Cannon", Unit: "unit", Type: model.SupplyReturnable, Stock: decimal.NewFromInt(4), ReorderLevel: decimal.NewFromInt(1)},
	}

	for i := range supplies {
		s := supplies[i]
		s.CreatedBy = "seed"
		if err := tx.Where(model.Supply{Name: s.Name}).Attrs(s).FirstOrCreate(&supplies[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedOrders adds one open order per bay, each with a staffed job-line.
// Skipped when any order already exists.
func seedOrders(tx *gorm.DB, bays []model.Bay, services []model.Service, employees []model.Employee) error {
	var count int64
	if err := tx.Model(&model.ServiceOrder{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	customers := []struct{ name, plate string }{
		{"Juan Dela Cruz", "NBC 1234"},
		{"Maria Lopez", "ZTR 5521"},
		{"Carlo Mendoza", "KLM 8890"},
	}

	for i, c := range customers {
		bay := bays[i%len(bays)]
		employee := employees[i%len(employees)]
		order := model.ServiceOrder{
			CustomerName: c.name,
			PlateNumber:  c.plate,
			BayID:        &bay.ID,
			Status:       model.OrderInProgress,
			Details: []model.ServiceOrderDetail{
				{ServiceID: services[i%len(services)].ID, EmployeeID: &employee.ID, Status: model.OrderInProgress},
			},
		}
		order.CreatedBy = "seed"
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
	}

	// A walk-in with no bay yet, shown as "Unassigned".
	walkIn := model.ServiceOrder{
		CustomerName: "Walk-in",
		PlateNumber:  "WLK 0001",
		Status:       model.OrderPending,
		Details: []model.ServiceOrderDetail{
			{ServiceID: services[0].ID, EmployeeID: &employees[0].ID, Status: model.OrderPending},
		},
	}
	walkIn.CreatedBy = "seed"
	return tx.Create(&walkIn).Error
}
