package routes

import (
	"inventory-system/internal/controllers"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runAuthRouter(api *echo.Group, secureGroup *echo.Group, svc Services, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(svc.Auth, svc.TwoFA, svc.SSO, logger)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/verify-2fa", authCtrl.Verify2FA)
		authGroup.POST("/refresh", authCtrl.RefreshToken)
		authGroup.GET("/sso/login", authCtrl.SSOLogin)
		authGroup.POST("/sso/callback", authCtrl.SSOCallback)
	}

	secureAuth := secureGroup.Group("/auth")
	{
		secureAuth.GET("/me", authCtrl.Me)
		secureAuth.POST("/logout", authCtrl.Logout)
		secureAuth.POST("/2fa/generate", authCtrl.Generate2FA)
		secureAuth.POST("/2fa/enable", authCtrl.Enable2FA)
		secureAuth.POST("/2fa/disable", authCtrl.Disable2FA)
	}
}
