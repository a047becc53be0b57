package routes

import (
	"inventory-system/internal/controllers"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runUserRouter(secureGroup *echo.Group, svc Services, logger *zap.Logger) {
	userCtrl := controllers.NewUserController(svc.User, svc.TwoFA, logger)

	secureGroup.GET("/users", userCtrl.GetUsers)
	secureGroup.POST("/users", userCtrl.CreateUser)
	secureGroup.GET("/users/:id", userCtrl.FindUser)
	secureGroup.PUT("/users/:id", userCtrl.UpdateUser)
	secureGroup.DELETE("/users/:id", userCtrl.DeleteUser)
	secureGroup.PUT("/users/:id/profile", userCtrl.UpdateProfile)
	secureGroup.POST("/users/:id/avatar", userCtrl.UploadAvatar)
	secureGroup.POST("/users/:id/disable-2fa", userCtrl.Disable2FA)
}
