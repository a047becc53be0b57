package routes

import (
	"inventory-system/internal/controllers"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runEquipmentRouter(secureGroup *echo.Group, svc Services, logger *zap.Logger) {
	equipmentCtrl := controllers.NewEquipmentController(svc.Equipment, svc.Consolidation, logger)

	secureGroup.GET("/equipment", equipmentCtrl.GetEquipments)
	secureGroup.POST("/equipment", equipmentCtrl.CreateEquipment)
	secureGroup.GET("/equipment/export", equipmentCtrl.Export)
	secureGroup.POST("/equipment/consolidation/preview", equipmentCtrl.ConsolidationPreview)
	secureGroup.POST("/equipment/consolidation/save", equipmentCtrl.ConsolidationSave)
	secureGroup.POST("/equipment/periodic-update/preview", equipmentCtrl.PeriodicPreview)
	secureGroup.POST("/equipment/periodic-update", equipmentCtrl.PeriodicUpdate)
	secureGroup.GET("/equipment/:id", equipmentCtrl.FindEquipment)
	secureGroup.PUT("/equipment/:id", equipmentCtrl.UpdateEquipment)
	secureGroup.DELETE("/equipment/:id", equipmentCtrl.DeleteEquipment)
	secureGroup.GET("/equipment/:id/history", equipmentCtrl.History)
	secureGroup.POST("/equipment/:id/deliver", equipmentCtrl.Deliver)
	secureGroup.POST("/equipment/:id/return", equipmentCtrl.Return)
}
