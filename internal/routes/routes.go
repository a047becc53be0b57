package routes

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/repositories"
	"inventory-system/internal/services"
	"inventory-system/pkg/config"
	"inventory-system/pkg/filestorage"
	"inventory-system/pkg/middleware"
	"inventory-system/pkg/service"
	"inventory-system/pkg/utils"
)

type Loggers struct {
	Main      *zap.Logger
	Auth      *zap.Logger
	Equipment *zap.Logger
	License   *zap.Logger
	User      *zap.Logger
}

// Services - всё, что нужно роутерам. Собирается один раз в NewServices.
type Services struct {
	Auth          services.AuthServiceInterface
	TwoFA         services.TwoFAServiceInterface
	SSO           services.SSOServiceInterface
	User          services.UserServiceInterface
	Equipment     services.EquipmentServiceInterface
	Consolidation services.ConsolidationServiceInterface
	License       services.LicenseServiceInterface
	Approval      services.ApprovalServiceInterface
	Settings      services.SettingsServiceInterface
	Audit         services.AuditServiceInterface
	Dashboard     services.DashboardServiceInterface
	Database      services.DatabaseServiceInterface
}

func NewServices(
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	publisher services.EventPublisher,
	fileStorage filestorage.FileStorageInterface,
	loggers *Loggers,
	cfg *config.Config,
) Services {
	// --- 1. РЕПОЗИТОРИИ ---
	txManager := repositories.NewTxManager(dbConn)
	userRepo := repositories.NewUserRepository(dbConn, loggers.User)
	auditRepo := repositories.NewAuditLogRepository(dbConn, loggers.Main)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn, loggers.Equipment)
	historyRepo := repositories.NewEquipmentHistoryRepository(dbConn, loggers.Equipment)
	licenseRepo := repositories.NewLicenseRepository(dbConn, loggers.License)
	settingsRepo := repositories.NewSettingsRepository(dbConn, loggers.Main)

	// --- 2. СЕРВИСЫ ---
	base := services.NewBaseService(userRepo, auditRepo, cacheRepo, loggers.Main)
	settingsService := services.NewSettingsService(base, settingsRepo, txManager, loggers.Main)
	termService := services.NewTermService(settingsService)

	return Services{
		Auth:          services.NewAuthService(base, userRepo, cacheRepo, settingsService, jwtSvc, loggers.Auth, &cfg.Auth),
		TwoFA:         services.NewTwoFAService(base, userRepo, txManager, cfg.Auth.TOTPIssuer, loggers.Auth),
		SSO:           services.NewSSOService(settingsService, loggers.Auth),
		User:          services.NewUserService(base, txManager, userRepo, fileStorage, cfg.Auth.BcryptCost, loggers.User),
		Equipment:     services.NewEquipmentService(base, equipmentRepo, historyRepo, txManager, termService, publisher, loggers.Equipment),
		Consolidation: services.NewConsolidationService(base, equipmentRepo, historyRepo, settingsRepo, settingsService, txManager, fileStorage, loggers.Equipment),
		License:       services.NewLicenseService(base, licenseRepo, settingsRepo, settingsService, txManager, loggers.License),
		Approval:      services.NewApprovalService(base, equipmentRepo, licenseRepo, txManager, loggers.Main),
		Settings:      settingsService,
		Audit:         services.NewAuditService(base, auditRepo),
		Dashboard:     services.NewDashboardService(base, equipmentRepo, licenseRepo, loggers.Main),
		Database:      services.NewDatabaseService(base, equipmentRepo, historyRepo, licenseRepo, auditRepo, settingsRepo, userRepo, settingsService, txManager, loggers.Main),
	}
}

// InitRouter собирает сервисы и регистрирует маршруты. Сервисы возвращаются,
// чтобы main мог подписать на них слушателей событий.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	publisher services.EventPublisher,
	loggers *Loggers,
	cfg *config.Config,
) (Services, error) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Storage.UploadsDir)
	if err != nil {
		return Services{}, err
	}

	svc := NewServices(dbConn, redisClient, jwtSvc, publisher, fileStorage, loggers, cfg)
	RegisterRoutes(e, svc, jwtSvc, loggers)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
	return svc, nil
}

func RegisterRoutes(e *echo.Echo, svc Services, jwtSvc service.JWTService, loggers *Loggers) {
	api := e.Group("/api")
	api.GET("", func(c echo.Context) error {
		return utils.SuccessResponse(c, nil, "Inventário Pro API", http.StatusOK)
	})

	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, svc, loggers.Auth)
	runUserRouter(secureGroup, svc, loggers.User)
	runEquipmentRouter(secureGroup, svc, loggers.Equipment)
	runLicenseRouter(secureGroup, svc, loggers.License)
	runApprovalRouter(secureGroup, svc, loggers.Main)
	runSettingsRouter(secureGroup, svc, loggers.Main)
}
