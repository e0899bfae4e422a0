package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/config"
	"go-pos-ws/internal/events"
	"go-pos-ws/internal/handler"
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Database
	db, err := database.Connect(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	// Auto Migrate (production setups should run migrations separately)
	if err := db.AutoMigrate(&model.Shop{}, &model.Privilege{}, &model.User{}, &model.Product{}, &model.Transaction{}, &model.Notification{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Seed permissions, the first shop and its owner
	seedShopAndOwner(ctx, db, cfg)

	// 4. Change feed: Redis when configured so several instances share it
	var bus events.Bus = events.NewLocalBus()
	if cfg.RedisURL != "" {
		redisBus, err := events.NewRedisBus(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		bus = redisBus
		log.Println("Using Redis event bus")
	}
	defer bus.Close()

	wsHub := ws.NewHub(bus)
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	shopRepo := repository.NewShopRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	salesStore := repository.NewSalesStore(db)

	carts := cart.NewRegistry()
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	notifService := service.NewNotificationService(notificationRepo, bus)
	committer := service.NewCommitter(salesStore, cfg.CommitMode, cfg.LowStockThreshold, notifService, bus)
	checkoutService := service.NewCheckoutService(carts, productRepo, shopRepo, committer, cfg.CurrencySymbol)
	invService := service.NewInventoryService(productRepo, bus)
	txService := service.NewTransactionService(txRepo, shopRepo, cfg.CurrencySymbol)
	dashService := service.NewDashboardService(txRepo, productRepo, cfg.LowStockThreshold)
	authService := service.NewAuthService(userRepo, tokens, bus, carts, cfg.IdleTimeout)
	userService := service.NewUserService(userRepo, privilegeRepo, bus)
	shopService := service.NewShopService(shopRepo, bus)

	authHandler := handler.NewAuthHandler(authService)
	invHandler := handler.NewInventoryHandler(invService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	txHandler := handler.NewTransactionHandler(txService)
	dashHandler := handler.NewDashboardHandler(dashService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(privilegeRepo)
	notifHandler := handler.NewNotificationHandler(notifService)
	shopHandler := handler.NewShopHandler(shopService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Billing v1.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(authService)
	can := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)
	auth.Post("/logout", requireAuth, authHandler.Logout)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/shop", shopHandler.GetShop)
	protected.Put("/shop", can(model.PermShopUpdate), shopHandler.UpdateShop)

	protected.Get("/dashboard/stats", can(model.PermDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/sales", can(model.PermDashboardView), dashHandler.GetSales)
	protected.Get("/dashboard/top-products", can(model.PermDashboardView), dashHandler.GetTopProducts)

	protected.Get("/products", can(model.PermProductView), invHandler.GetProducts)
	protected.Get("/products/lookup", can(model.PermProductView), invHandler.Lookup)
	protected.Get("/products/:id", can(model.PermProductView), invHandler.GetProduct)
	protected.Post("/products", can(model.PermProductCreate), invHandler.CreateProduct)
	protected.Put("/products/:id", can(model.PermProductUpdate), invHandler.UpdateProduct)
	protected.Post("/products/:id/restock", can(model.PermProductRestock), invHandler.Restock)

	billing := protected.Group("", can(model.PermBillingCheckout))
	billing.Get("/cart", checkoutHandler.GetCart)
	billing.Delete("/cart", checkoutHandler.ClearCart)
	billing.Post("/cart/items", checkoutHandler.AddItem)
	billing.Put("/cart/items/:index", checkoutHandler.UpdateLine)
	billing.Delete("/cart/items/:index", checkoutHandler.RemoveLine)
	billing.Post("/checkout", checkoutHandler.Checkout)

	protected.Get("/transactions", can(model.PermTransactionView), txHandler.GetTransactions)
	protected.Get("/transactions/:id", can(model.PermTransactionView), txHandler.GetTransaction)
	protected.Get("/transactions/:id/receipt", can(model.PermTransactionView), txHandler.GetReceipt)

	protected.Get("/notifications", can(model.PermNotificationView), notifHandler.GetNotifications)
	protected.Get("/notifications/unread-count", can(model.PermNotificationView), notifHandler.UnreadCount)
	protected.Post("/notifications/read-all", can(model.PermNotificationView), notifHandler.MarkAllRead)
	protected.Post("/notifications/:id/read", can(model.PermNotificationView), notifHandler.MarkRead)

	protected.Get("/users", can(model.PermUserView), userHandler.GetUsers)
	protected.Get("/users/:id", can(model.PermUserView), userHandler.GetUser)
	protected.Post("/users", can(model.PermUserCreate), userHandler.CreateUser)
	protected.Put("/users/:id", can(model.PermUserUpdate), userHandler.UpdateUser)
	protected.Delete("/users/:id", can(model.PermUserDelete), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", can(model.PermUserUpdatePrivilege), userHandler.UpdateUserPrivileges)

	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", middleware.RequireAnyPrivilege(model.PermUserCreate, model.PermUserUpdatePrivilege), roleHandler.GetPrivileges)

	// WebSocket Route: /ws?token=<jwt>
	app.Use("/ws", ws.Upgrade(authService))
	app.Get("/ws", wsHub.Handler())

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stop()
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exited")
}

// seedShopAndOwner stores the permission registry and, on an empty database,
// creates the first shop with an owner account.
func seedShopAndOwner(ctx context.Context, db *gorm.DB, cfg *config.Config) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	shopRepo := repository.NewShopRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}

	shop, err := shopRepo.FindFirst(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		shop = &model.Shop{Name: cfg.SeedShopName, CurrencySymbol: cfg.CurrencySymbol}
		shop.Audit("system")
		if err := shopRepo.Create(ctx, shop); err != nil {
			log.Printf("Warning: Failed to create shop: %v", err)
			return
		}
		log.Printf("Shop created: %s", shop.Name)
	} else if err != nil {
		log.Printf("Warning: Failed to load shop: %v", err)
		return
	}

	if n, err := userRepo.CountByShop(ctx, shop.ID); err != nil || n > 0 {
		return
	}
	grants, err := privilegeRepo.FindByCodes(ctx, model.RoleOwner.DefaultGrants())
	if err != nil {
		log.Printf("Warning: Failed to load privileges: %v", err)
		return
	}
	owner := &model.User{
		ShopID:     shop.ID,
		Email:      cfg.SeedOwnerEmail,
		FullName:   "Shop Owner",
		Role:       model.RoleOwner,
		IsActive:   true,
		Privileges: grants,
	}
	owner.Audit("system")
	if err := owner.SetPassword(cfg.SeedOwnerPassword); err != nil {
		log.Printf("Warning: Failed to hash owner password: %v", err)
		return
	}
	if err := userRepo.Create(ctx, owner); err != nil {
		log.Printf("Warning: Failed to create owner: %v", err)
		return
	}
	log.Printf("Owner created: %s (change the password after first login)", owner.Email)
}
