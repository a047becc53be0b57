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

type ApprovalController struct {
	approvalService services.ApprovalServiceInterface
	logger          *zap.Logger
}

func NewApprovalController(approvalService services.ApprovalServiceInterface, logger *zap.Logger) *ApprovalController {
	return &ApprovalController{approvalService: approvalService, logger: logger}
}

func (ctrl *ApprovalController) ListPending(c echo.Context) error {
	res, err := ctrl.approvalService.ListPending(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *ApprovalController) Approve(c echo.Context) error {
	var payload dto.ApproveDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.approvalService.Approve(c.Request().Context(), entities.ItemType(payload.Type), payload.ID); err != nil {
		ctrl.logger.Warn("Одобрение не выполнено", zap.String("type", payload.Type), zap.Uint64("id", payload.ID), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Item aprovado com sucesso", http.StatusOK)
}

func (ctrl *ApprovalController) Reject(c echo.Context) error {
	var payload dto.RejectDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.approvalService.Reject(c.Request().Context(), entities.ItemType(payload.Type), payload.ID, payload.Reason); err != nil {
		ctrl.logger.Warn("Отклонение не выполнено", zap.String("type", payload.Type), zap.Uint64("id", payload.ID), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Item rejeitado com sucesso", http.StatusOK)
}
