package routes

import (
	"inventory-system/internal/controllers"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// runSettingsRouter - настройки, аудит, дашборд и очистка базы.
func runSettingsRouter(secureGroup *echo.Group, svc Services, logger *zap.Logger) {
	settingsCtrl := controllers.NewSettingsController(svc.Settings, svc.Audit, svc.Database, logger)
	dashboardCtrl := controllers.NewDashboardController(svc.Dashboard, logger)

	secureGroup.GET("/settings", settingsCtrl.GetSettings)
	secureGroup.POST("/settings", settingsCtrl.SaveSettings)
	secureGroup.GET("/settings/termo-templates", settingsCtrl.TermTemplates)
	secureGroup.GET("/audit-log", settingsCtrl.AuditLog)
	secureGroup.POST("/database/clear", settingsCtrl.ClearDatabase)
	secureGroup.GET("/dashboard", dashboardCtrl.GetDashboardStats)
}
