package routes

import (
	"inventory-system/internal/controllers"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runApprovalRouter(secureGroup *echo.Group, svc Services, logger *zap.Logger) {
	approvalCtrl := controllers.NewApprovalController(svc.Approval, logger)

	secureGroup.GET("/approvals/pending", approvalCtrl.ListPending)
	secureGroup.POST("/approvals/approve", approvalCtrl.Approve)
	secureGroup.POST("/approvals/reject", approvalCtrl.Reject)
}
