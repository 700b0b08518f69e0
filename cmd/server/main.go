package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/budgetwise/backend/internal/config"
	"github.com/budgetwise/backend/internal/database"
	"github.com/budgetwise/backend/internal/handlers"
	"github.com/budgetwise/backend/internal/middleware"
	"github.com/budgetwise/backend/pkg/logger"
	"github.com/budgetwise/backend/pkg/utils"
)

func main() {
	logger.Init()
	cfg := config.Load()

	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		logger.Error("database_connect_failed", err, nil)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName: "budgetwise",
	})

	app.Use(recover.New())
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.Success(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	auth := middleware.NewAuthMiddleware(db)

	authHandler := handlers.NewAuthHandler(db)
	userHandler := handlers.NewUserHandler(db)
	groupHandler := handlers.NewGroupHandler(db)
	expenseHandler := handlers.NewExpenseHandler(db)
	balanceHandler := handlers.NewBalanceHandler(db)
	trackingHandler := handlers.NewTrackingHandler(db)
	settlementHandler := handlers.NewSettlementHandler(db)

	api := app.Group("/api")

	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	user := api.Group("/user", auth.RequireAuth)
	user.Get("/me", userHandler.Me)
	user.Put("/me", userHandler.UpdateMe)

	groups := api.Group("/groups", auth.RequireAuth)
	groups.Post("/", groupHandler.Create)
	groups.Get("/my", groupHandler.My)
	groups.Post("/join", groupHandler.Join)
	groups.Get("/:id", groupHandler.Get)
	groups.Get("/:id/members", groupHandler.Members)

	expenses := api.Group("/expenses", auth.RequireAuth)
	expenses.Post("/", expenseHandler.Create)
	expenses.Get("/group/:groupId", expenseHandler.ListForGroup)

	api.Get("/balances", auth.RequireAuth, balanceHandler.List)
	api.Get("/tracking", auth.RequireAuth, trackingHandler.Summary)
	api.Post("/settlements", auth.RequireAuth, settlementHandler.Create)

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("server_starting", map[string]interface{}{
			"addr": addr,
		})
		if err := app.Listen(addr); err != nil {
			logger.Error("server_listen_failed", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("server_shutting_down", nil)
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("server_shutdown_failed", err, nil)
	}
	logger.Info("server_stopped", nil)
}
