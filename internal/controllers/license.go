package controllers

import (
	"net/http"
	"strconv"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type LicenseController struct {
	licenseService services.LicenseServiceInterface
	logger         *zap.Logger
}

func NewLicenseController(licenseService services.LicenseServiceInterface, logger *zap.Logger) *LicenseController {
	return &LicenseController{licenseService: licenseService, logger: logger}
}

func (ctrl *LicenseController) GetLicenses(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.QueryParams())
	res, total, err := ctrl.licenseService.GetLicenses(c.Request().Context(), filter)
	if err != nil {
		ctrl.logger.Error("Ошибка получения списка лицензий", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK, total)
}

func (ctrl *LicenseController) CreateLicense(c echo.Context) error {
	var payload dto.LicenseDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.licenseService.CreateLicense(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Licença criada com sucesso", http.StatusCreated)
}

func (ctrl *LicenseController) UpdateLicense(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.LicenseDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.licenseService.UpdateLicense(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Licença atualizada com sucesso", http.StatusOK)
}

func (ctrl *LicenseController) DeleteLicense(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.licenseService.DeleteLicense(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, struct{}{}, "Licença excluída com sucesso", http.StatusOK)
}

// Import: multipart с полем file, product и confirm.
func (ctrl *LicenseController) Import(c echo.Context) error {
	product := c.FormValue("product")
	if product == "" {
		return utils.ErrorResponse(c, apperrors.NewInvalidInputError("Produto de destino não informado"), ctrl.logger)
	}
	confirm, _ := strconv.ParseBool(c.FormValue("confirm"))

	source, err := readUpload(c, "file", "license_source")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.licenseService.Import(c.Request().Context(), product, string(source.Data), confirm)
	if err != nil {
		ctrl.logger.Warn("Импорт лицензий отклонён", zap.String("product", product), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Licenças importadas com sucesso", http.StatusOK)
}

func (ctrl *LicenseController) GetTotals(c echo.Context) error {
	res, err := ctrl.licenseService.Totals(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *LicenseController) SaveTotals(c echo.Context) error {
	var payload dto.SaveTotalsDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.licenseService.SaveTotals(c.Request().Context(), payload.Totals)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Totais salvos com sucesso", http.StatusOK)
}

func (ctrl *LicenseController) SaveProducts(c echo.Context) error {
	var payload dto.SaveProductsDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.licenseService.SaveProducts(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Produtos salvos com sucesso", http.StatusOK)
}

func (ctrl *LicenseController) RenameProduct(c echo.Context) error {
	var payload dto.RenameProductDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.licenseService.RenameProduct(c.Request().Context(), payload.OldName, payload.NewName)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Produto renomeado com sucesso", http.StatusOK)
}

func (ctrl *LicenseController) Seats(c echo.Context) error {
	res, err := ctrl.licenseService.Seats(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *LicenseController) Export(c echo.Context) error {
	data, err := ctrl.licenseService.Export(c.Request().Context())
	if err != nil {
		ctrl.logger.Error("Ошибка выгрузки лицензий в XLSX", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return sendWorkbook(c, data, "licencas")
}
