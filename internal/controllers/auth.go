package controllers

import (
	"net/http"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	"inventory-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthController struct {
	authService  services.AuthServiceInterface
	twoFAService services.TwoFAServiceInterface
	ssoService   services.SSOServiceInterface
	logger       *zap.Logger
}

func NewAuthController(
	authService services.AuthServiceInterface,
	twoFAService services.TwoFAServiceInterface,
	ssoService services.SSOServiceInterface,
	logger *zap.Logger,
) *AuthController {
	return &AuthController{
		authService:  authService,
		twoFAService: twoFAService,
		ssoService:   ssoService,
		logger:       logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := bindAndValidate(c, &payload); err != nil {
		ctrl.logger.Warn("Login: неверные данные запроса", zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Warn("Login: ошибка авторизации", zap.String("username", payload.Username), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	message := "Login realizado com sucesso"
	if res.Requires2FA {
		message = "Informe o código de verificação"
	}
	return utils.SuccessResponse(c, res, message, http.StatusOK)
}

func (ctrl *AuthController) Verify2FA(c echo.Context) error {
	var payload dto.Verify2FADTO
	if err := bindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Verify2FA(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Login realizado com sucesso", http.StatusOK)
}

func (ctrl *AuthController) RefreshToken(c echo.Context) error {
	var payload dto.RefreshTokenDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.RefreshTokens(c.Request().Context(), payload.RefreshToken)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Tokens atualizados", http.StatusOK)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	if err := ctrl.authService.Logout(c.Request().Context()); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Sessão encerrada", http.StatusOK)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(c.Request().Context())
	if err != nil {
		ctrl.logger.Error("Не удалось получить userID из контекста в защищенном маршруте")
		return ctrl.errorResponse(c, err)
	}
	user, err := ctrl.authService.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		ctrl.logger.Error("Ошибка получения пользователя по ID", zap.Uint64("userID", userID), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, user, "Successfully", http.StatusOK)
}

func (ctrl *AuthController) Generate2FA(c echo.Context) error {
	res, err := ctrl.twoFAService.Generate(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Segredo 2FA gerado", http.StatusOK)
}

func (ctrl *AuthController) Enable2FA(c echo.Context) error {
	var payload dto.TwoFATokenDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.twoFAService.Enable(c.Request().Context(), payload.Token); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "2FA habilitado com sucesso", http.StatusOK)
}

func (ctrl *AuthController) Disable2FA(c echo.Context) error {
	if err := ctrl.twoFAService.Disable(c.Request().Context()); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "2FA desabilitado com sucesso", http.StatusOK)
}

// SSOLogin перенаправляет браузер на IdP. Внешний адрес берётся из запроса.
func (ctrl *AuthController) SSOLogin(c echo.Context) error {
	baseURL := c.Scheme() + "://" + c.Request().Host
	target, err := ctrl.ssoService.LoginURL(c.Request().Context(), baseURL)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return c.Redirect(http.StatusFound, target)
}

func (ctrl *AuthController) SSOCallback(c echo.Context) error {
	if err := ctrl.ssoService.Callback(c.Request().Context(), c.FormValue("SAMLResponse")); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Successfully", http.StatusOK)
}
