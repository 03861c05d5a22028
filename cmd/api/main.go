package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-carwash-pullout/internal/handler"
	"go-carwash-pullout/internal/metrics"
	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/internal/repository"
	"go-carwash-pullout/internal/service"
	"go-carwash-pullout/internal/ws"
	"go-carwash-pullout/pkg/config"
	"go-carwash-pullout/pkg/database"
	"go-carwash-pullout/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func main() {
	// 1. Load config (.env, config.yaml, env)
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// 3. Seed the first manager account
	seedManager(db, cfg.Seed)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	collector := metrics.NewCollector()
	tokens := jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)

	// 5. Dependency Injection (Wiring Layers)
	supplyRepo := repository.NewSupplyRepo(db)
	pulloutRepo := repository.NewPulloutRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	employeeRepo := repository.NewEmployeeRepo(db)
	orderRepo := repository.NewServiceOrderRepo(db)
	userRepo := repository.NewUserRepo(db)

	invService := service.NewInventoryService(supplyRepo, movementRepo, db, wsHub, collector)
	pulloutService := service.NewPulloutService(db, pulloutRepo, supplyRepo, employeeRepo, orderRepo, wsHub, collector)
	dashService := service.NewDashboardService(movementRepo)
	authService := service.NewAuthService(userRepo, tokens, wsHub)

	router := &handler.Router{
		Auth:      handler.NewAuthHandler(authService),
		Pullout:   handler.NewPulloutHandler(pulloutService, invService),
		Supply:    handler.NewSupplyHandler(invService),
		Dashboard: handler.NewDashboardHandler(dashService),
		UserRepo:  userRepo,
		Tokens:    tokens,
		Hub:       wsHub,
		Metrics:   collector,
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.Server.AppName,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	router.Register(app)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedManager creates the configured manager account if it does not exist yet.
func seedManager(db *gorm.DB, seed config.SeedConfig) {
	userRepo := repository.NewUserRepo(db)

	_, err := userRepo.FindByEmail(seed.AdminEmail)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Warning: Failed to look up manager account: %v", err)
		return
	}

	manager := &model.User{
		Email:    seed.AdminEmail,
		FullName: "Shop Manager",
		Role:     model.RoleManager,
		IsActive: true,
	}
	manager.CreatedBy = "system"
	manager.UpdatedBy = "system"

	if err := manager.SetPassword(seed.AdminPassword); err != nil {
		log.Printf("Warning: Failed to hash manager password: %v", err)
		return
	}

	if err := userRepo.Create(manager); err != nil {
		log.Printf("Warning: Failed to create manager account: %v", err)
		return
	}
	log.Printf("✅ Manager account created: %s", seed.AdminEmail)
}
