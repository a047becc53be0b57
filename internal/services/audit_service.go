package services

import (
	"context"

	"inventory-system/internal/authz"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
)

type AuditServiceInterface interface {
	GetAuditLog(ctx context.Context) ([]entities.AuditLog, error)
}

type AuditService struct {
	*BaseService
	auditRepo repositories.AuditLogRepositoryInterface
}

func NewAuditService(base *BaseService, auditRepo repositories.AuditLogRepositoryInterface) AuditServiceInterface {
	return &AuditService{BaseService: base, auditRepo: auditRepo}
}

// GetAuditLog - последние записи журнала, новые первыми.
func (s *AuditService) GetAuditLog(ctx context.Context) ([]entities.AuditLog, error) {
	if _, err := s.Authorize(ctx, authz.AuditView, nil); err != nil {
		return nil, err
	}
	return s.auditRepo.ListLatest(ctx, repositories.AuditListLimit)
}
