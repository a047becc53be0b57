package controllers

import (
	"net/http"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	"inventory-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const inventorySourceContext = "inventory_source"

type EquipmentController struct {
	equipmentService     services.EquipmentServiceInterface
	consolidationService services.ConsolidationServiceInterface
	logger               *zap.Logger
}

func NewEquipmentController(
	equipmentService services.EquipmentServiceInterface,
	consolidationService services.ConsolidationServiceInterface,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		equipmentService:     equipmentService,
		consolidationService: consolidationService,
		logger:               logger,
	}
}

func (ctrl *EquipmentController) GetEquipments(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.QueryParams())
	res, total, err := ctrl.equipmentService.GetEquipment(c.Request().Context(), filter)
	if err != nil {
		ctrl.logger.Error("Ошибка получения списка оборудования", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK, total)
}

func (ctrl *EquipmentController) FindEquipment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.equipmentService.FindEquipment(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *EquipmentController) History(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.equipmentService.History(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *EquipmentController) CreateEquipment(c echo.Context) error {
	var payload dto.CreateEquipmentDTO
	if err := bindAndValidate(c, &payload); err != nil {
		ctrl.logger.Warn("CreateEquipment: неверные данные", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.equipmentService.CreateEquipment(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Error("Ошибка создания оборудования", zap.String("serial", payload.Serial), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Equipamento criado com sucesso", http.StatusCreated)
}

func (ctrl *EquipmentController) UpdateEquipment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.UpdateEquipmentDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.equipmentService.UpdateEquipment(c.Request().Context(), id, payload)
	if err != nil {
		ctrl.logger.Error("Ошибка обновления оборудования", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Equipamento atualizado com sucesso", http.StatusOK)
}

func (ctrl *EquipmentController) DeleteEquipment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.equipmentService.DeleteEquipment(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, struct{}{}, "Equipamento excluído com sucesso", http.StatusOK)
}

func (ctrl *EquipmentController) Deliver(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.DeliverEquipmentDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.equipmentService.Deliver(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Equipamento entregue", http.StatusOK)
}

func (ctrl *EquipmentController) Return(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.equipmentService.Return(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Equipamento devolvido", http.StatusOK)
}

func (ctrl *EquipmentController) Export(c echo.Context) error {
	data, err := ctrl.equipmentService.Export(c.Request().Context())
	if err != nil {
		ctrl.logger.Error("Ошибка выгрузки оборудования в XLSX", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return sendWorkbook(c, data, "inventario")
}

func (ctrl *EquipmentController) ConsolidationPreview(c echo.Context) error {
	base, err := readUpload(c, "base", inventorySourceContext)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	absolute, err := readUpload(c, "absolute", inventorySourceContext)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.consolidationService.Preview(c.Request().Context(), base, absolute)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Consolidação pronta para revisão", http.StatusOK)
}

func (ctrl *EquipmentController) ConsolidationSave(c echo.Context) error {
	var payload dto.ConsolidationSaveDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	count, err := ctrl.consolidationService.Replace(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Error("Ошибка замены инвентаря", zap.Int("items", len(payload.Equipment)), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, map[string]int{"count": count}, "Inventário substituído com sucesso", http.StatusOK)
}

func (ctrl *EquipmentController) PeriodicPreview(c echo.Context) error {
	source, err := readUpload(c, "file", inventorySourceContext)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.consolidationService.PeriodicPreview(c.Request().Context(), source)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *EquipmentController) PeriodicUpdate(c echo.Context) error {
	var payload dto.PeriodicUpdateDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.consolidationService.PeriodicApply(c.Request().Context(), payload.Records)
	if err != nil {
		ctrl.logger.Error("Ошибка периодического обновления", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, res.Message, http.StatusOK)
}
