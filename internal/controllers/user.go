package controllers

import (
	"bytes"
	"net/http"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	"inventory-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type UserController struct {
	userService  services.UserServiceInterface
	twoFAService services.TwoFAServiceInterface
	logger       *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, twoFAService services.TwoFAServiceInterface, logger *zap.Logger) *UserController {
	if logger == nil {
		logger = zap.New(zapcore.NewNopCore()) // безопасный пустой логгер
	}
	return &UserController{
		userService:  userService,
		twoFAService: twoFAService,
		logger:       logger,
	}
}

func (ctrl *UserController) GetUsers(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.QueryParams())
	res, total, err := ctrl.userService.GetUsers(c.Request().Context(), filter)
	if err != nil {
		ctrl.logger.Error("Ошибка при получении списка пользователей", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK, total)
}

func (ctrl *UserController) FindUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.userService.FindUser(c.Request().Context(), id)
	if err != nil {
		ctrl.logger.Error("Ошибка при поиске пользователя по ID", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Successfully", http.StatusOK)
}

func (ctrl *UserController) CreateUser(c echo.Context) error {
	var payload dto.CreateUserDTO
	if err := bindAndValidate(c, &payload); err != nil {
		ctrl.logger.Warn("Ошибка при валидации данных для создания пользователя", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.userService.CreateUser(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Error("Ошибка при создании пользователя в сервисе", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Usuário criado com sucesso", http.StatusCreated)
}

func (ctrl *UserController) UpdateUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.UpdateUserDTO
	if err := bindAndValidate(c, &payload); err != nil {
		ctrl.logger.Warn("Ошибка при валидации данных для обновления пользователя", zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.userService.UpdateUser(c.Request().Context(), id, payload)
	if err != nil {
		ctrl.logger.Error("Ошибка при обновлении пользователя в сервисе", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Usuário atualizado com sucesso", http.StatusOK)
}

func (ctrl *UserController) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.userService.DeleteUser(c.Request().Context(), id); err != nil {
		ctrl.logger.Error("Ошибка при удалении пользователя в сервисе", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, struct{}{}, "Usuário excluído com sucesso", http.StatusOK)
}

func (ctrl *UserController) UpdateProfile(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.UpdateProfileDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.userService.UpdateProfile(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Perfil atualizado com sucesso", http.StatusOK)
}

func (ctrl *UserController) UploadAvatar(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	file, err := readUpload(c, "avatar", "profile_photo")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	res, err := ctrl.userService.UploadAvatar(c.Request().Context(), id, bytes.NewReader(file.Data), file.Name)
	if err != nil {
		ctrl.logger.Error("Ошибка загрузки аватара", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Foto atualizada", http.StatusOK)
}

func (ctrl *UserController) Disable2FA(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.twoFAService.DisableForUser(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "2FA desabilitado para o usuário", http.StatusOK)
}
