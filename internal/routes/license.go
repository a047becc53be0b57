package routes

import (
	"inventory-system/internal/controllers"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runLicenseRouter(secureGroup *echo.Group, svc Services, logger *zap.Logger) {
	licenseCtrl := controllers.NewLicenseController(svc.License, logger)

	licenses := secureGroup.Group("/licenses")
	{
		licenses.GET("", licenseCtrl.GetLicenses)
		licenses.POST("", licenseCtrl.CreateLicense)
		licenses.PUT("/:id", licenseCtrl.UpdateLicense)
		licenses.DELETE("/:id", licenseCtrl.DeleteLicense)
		licenses.POST("/import", licenseCtrl.Import)
		licenses.GET("/totals", licenseCtrl.GetTotals)
		licenses.POST("/totals", licenseCtrl.SaveTotals)
		licenses.POST("/products", licenseCtrl.SaveProducts)
		licenses.POST("/rename-product", licenseCtrl.RenameProduct)
		licenses.GET("/seats", licenseCtrl.Seats)
		licenses.GET("/export", licenseCtrl.Export)
	}
}
