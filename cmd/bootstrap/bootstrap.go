package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook-backend/config"
	"medibook-backend/db"
	deliveryHttp "medibook-backend/internal/delivery/http"
	"medibook-backend/internal/delivery/http/handler"
	"medibook-backend/internal/delivery/http/middleware"
	"medibook-backend/internal/domain/entity"
	"medibook-backend/internal/infrastructure/cache"
	"medibook-backend/internal/infrastructure/database"
	"medibook-backend/internal/repository"
	"medibook-backend/internal/service"
	"medibook-backend/internal/usecase"
	"medibook-backend/pkg/jwt"
	"medibook-backend/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	gormDB, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = gormDB

	// Apply schema migrations
	if err := db.RunMigrations(gormDB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	log := logrus.StandardLogger()

	// Ensure the admin panel account exists on a fresh database
	if err := ensureAdmin(gormDB, cfg.Admin); err != nil {
		return nil, fmt.Errorf("failed to ensure admin account: %w", err)
	}

	// Rebuild the redis slot claims from active appointments
	slotService := service.NewSlotService(gormDB, log, redisClient)
	if err := slotService.SyncFromDB(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to sync slot claims: %w", err)
	}

	// Initialize all layers
	server := initializeServer(cfg, gormDB, redisClient, slotService, log)
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// ensureAdmin creates the admin account from config when it does not exist
// yet. Credentials are never seeded through migrations so the password hash
// stays out of the schema history.
func ensureAdmin(gormDB *gorm.DB, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		logrus.Warn("Admin credentials not configured, skipping admin bootstrap")
		return nil
	}

	userRepo := repository.NewUserRepository()

	existing, err := userRepo.FindByEmail(gormDB, cfg.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &entity.User{
		RoleID:   entity.RoleIDAdmin,
		Email:    cfg.Email,
		Password: string(hashedPassword),
		FullName: "Administrator",
		IsActive: true,
	}
	if err := userRepo.Create(gormDB, admin); err != nil {
		return err
	}

	logrus.WithField("email", cfg.Email).Info("Admin account created")
	return nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(
	cfg *config.Config,
	gormDB *gorm.DB,
	redisClient *redis.Client,
	slotService *service.SlotService,
	log *logrus.Logger,
) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	paymentRepo := repository.NewPaymentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(gormDB, log, auditLogRepo)
	paymentGateway := service.NewRazorpayGateway(cfg.Razorpay)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(gormDB, log, userRepo, patientProfileRepo, jwtService, redisClient)
	patientProfileUsecase := usecase.NewPatientProfileUsecase(gormDB, log, userRepo, patientProfileRepo, auditService)
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(gormDB, log, userRepo, doctorProfileRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(gormDB, log, appointmentRepo, doctorProfileRepo, patientProfileRepo, slotService, auditService)
	paymentUsecase := usecase.NewPaymentUsecase(gormDB, log, paymentRepo, appointmentRepo, paymentGateway, auditService)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, jwtService, customValidator)
	patientHandler := handler.NewPatientHandler(patientProfileUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorProfileUsecase, customValidator)
	adminHandler := handler.NewAdminHandler(doctorProfileUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	paymentHandler := handler.NewPaymentHandler(paymentUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		patientHandler,
		doctorHandler,
		adminHandler,
		appointmentHandler,
		paymentHandler,
		authMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
