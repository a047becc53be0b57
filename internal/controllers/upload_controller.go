// controllers/upload_controller.go

package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"inventory-system/internal/services"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"

	"github.com/labstack/echo/v4"
)

// readUpload достаёт файл из multipart-поля и проверяет его правилами контекста загрузки.
func readUpload(c echo.Context, field, uploadContext string) (services.SourceFile, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return services.SourceFile{}, apperrors.NewHttpError(
			http.StatusBadRequest,
			fmt.Sprintf("Arquivo '%s' não foi enviado", field),
			apperrors.ErrBadRequest,
			nil,
		)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return services.SourceFile{}, apperrors.NewHttpError(
			http.StatusInternalServerError,
			"Erro ao processar o arquivo",
			err,
			nil,
		)
	}
	defer src.Close()

	if err := utils.ValidateFile(fileHeader, src, uploadContext); err != nil {
		return services.SourceFile{}, apperrors.NewHttpError(
			http.StatusBadRequest,
			err.Error(),
			apperrors.ErrBadRequest,
			map[string]interface{}{"field": field},
		)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return services.SourceFile{}, apperrors.NewHttpError(http.StatusInternalServerError, "Erro ao ler o arquivo", err, nil)
	}
	return services.SourceFile{Name: fileHeader.Filename, Data: data}, nil
}

func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "ID inválido", apperrors.ErrBadRequest, nil)
	}
	return id, nil
}

func bindAndValidate(c echo.Context, payload interface{}) error {
	if err := c.Bind(payload); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Formato de dados inválido", apperrors.ErrBadRequest, nil)
	}
	return c.Validate(payload)
}

func sendWorkbook(c echo.Context, data []byte, prefix string) error {
	fileName := fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("2006-01-02"))
	c.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	return c.Blob(http.StatusOK, services.XLSXContentType, data)
}
