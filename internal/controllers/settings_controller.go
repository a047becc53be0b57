package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/services"
	"inventory-system/pkg/utils"
)

// SettingsController - настройки, журнал аудита и очистка базы: всё администраторское.
type SettingsController struct {
	settingsService services.SettingsServiceInterface
	auditService    services.AuditServiceInterface
	databaseService services.DatabaseServiceInterface
	logger          *zap.Logger
}

func NewSettingsController(
	settingsService services.SettingsServiceInterface,
	auditService services.AuditServiceInterface,
	databaseService services.DatabaseServiceInterface,
	logger *zap.Logger,
) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
		auditService:    auditService,
		databaseService: databaseService,
		logger:          logger,
	}
}

func (ctrl *SettingsController) GetSettings(c echo.Context) error {
	res, err := ctrl.settingsService.Get(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *SettingsController) SaveSettings(c echo.Context) error {
	var payload entities.AppSettings
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.settingsService.Save(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Configurações salvas com sucesso", http.StatusOK)
}

func (ctrl *SettingsController) TermTemplates(c echo.Context) error {
	res, err := ctrl.settingsService.TermTemplates(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *SettingsController) AuditLog(c echo.Context) error {
	res, err := ctrl.auditService.GetAuditLog(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *SettingsController) ClearDatabase(c echo.Context) error {
	var payload dto.ConfirmDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.databaseService.Clear(c.Request().Context(), payload.Confirm); err != nil {
		ctrl.logger.Error("Очистка базы не выполнена", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Banco de dados limpo com sucesso", http.StatusOK)
}
