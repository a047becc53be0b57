package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/consolidation"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/internal/workflow"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/filestorage"
)

const importArchivePrefix = "imports/equipment"

// SourceFile - загруженный файл-источник: имя нужно, чтобы отличить XLSX от CSV.
type SourceFile struct {
	Name string
	Data []byte
}

type ConsolidationServiceInterface interface {
	Preview(ctx context.Context, base, absolute SourceFile) (*dto.ConsolidationPreviewDTO, error)
	Replace(ctx context.Context, payload dto.ConsolidationSaveDTO) (int, error)
	PeriodicPreview(ctx context.Context, source SourceFile) (*dto.PeriodicPreviewDTO, error)
	PeriodicApply(ctx context.Context, records []map[string]string) (*dto.PeriodicUpdateResultDTO, error)
}

type ConsolidationService struct {
	*BaseService
	equipmentRepo repositories.EquipmentRepositoryInterface
	historyRepo   repositories.EquipmentHistoryRepositoryInterface
	settingsRepo  repositories.SettingsRepositoryInterface
	settings      SettingsServiceInterface
	txManager     repositories.TxManagerInterface
	fileStorage   filestorage.FileStorageInterface
	logger        *zap.Logger
}

func NewConsolidationService(
	base *BaseService,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	historyRepo repositories.EquipmentHistoryRepositoryInterface,
	settingsRepo repositories.SettingsRepositoryInterface,
	settings SettingsServiceInterface,
	txManager repositories.TxManagerInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) ConsolidationServiceInterface {
	return &ConsolidationService{
		BaseService:   base,
		equipmentRepo: equipmentRepo,
		historyRepo:   historyRepo,
		settingsRepo:  settingsRepo,
		settings:      settings,
		txManager:     txManager,
		fileStorage:   fileStorage,
		logger:        logger,
	}
}

// Preview сводит базовую таблицу и выгрузку Absolute. В базу ничего не пишется.
func (s *ConsolidationService) Preview(ctx context.Context, base, absolute SourceFile) (*dto.ConsolidationPreviewDTO, error) {
	if _, err := s.Authorize(ctx, authz.EquipmentImport, nil); err != nil {
		return nil, err
	}

	result, err := consolidation.ReconcileFiles(base.Name, base.Data, absolute.Name, absolute.Data)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("%s", err.Error())
	}
	s.archive(base, absolute)

	list := make([]entities.Equipment, 0, len(result.Equipment))
	for _, rec := range result.Equipment {
		list = append(list, *rec.ToEquipment())
	}
	return &dto.ConsolidationPreviewDTO{
		Equipment:       list,
		BaseSkipped:     result.BaseSkipped,
		AbsoluteSkipped: result.AbsoluteSkipped,
	}, nil
}

// Replace заменяет весь инвентарь списком из предпросмотра. Требует явного подтверждения.
func (s *ConsolidationService) Replace(ctx context.Context, payload dto.ConsolidationSaveDTO) (int, error) {
	actor, err := s.Authorize(ctx, authz.EquipmentImport, nil)
	if err != nil {
		return 0, err
	}
	if !payload.Confirm {
		return 0, apperrors.ErrConfirmationRequired
	}

	items := make([]entities.Equipment, 0, len(payload.Equipment))
	seen := make(map[string]int, len(payload.Equipment))
	for i, rec := range payload.Equipment {
		eq := newImportedEquipment(consolidation.Record(rec), actor)
		if eq.Serial == "" {
			return 0, apperrors.NewInvalidInputError("Item %d sem número de série", i+1)
		}
		if prev, dup := seen[consolidation.SerialKey(eq.Serial)]; dup {
			return 0, apperrors.NewInvalidInputError("Serial %s repetido nos itens %d e %d", eq.Serial, prev+1, i+1)
		}
		seen[consolidation.SerialKey(eq.Serial)] = i
		items = append(items, eq)
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.historyRepo.DeleteAll(ctx, tx); err != nil {
			return err
		}
		if err := s.equipmentRepo.DeleteAll(ctx, tx); err != nil {
			return err
		}
		for _, eq := range items {
			if _, err := s.insertWithQRCode(ctx, tx, eq); err != nil {
				return err
			}
		}

		settings, err := s.settingsRepo.Load(ctx, tx)
		if err != nil {
			return err
		}
		now := timeNow()
		settings.HasInitialConsolidationRun = true
		settings.LastAbsoluteUpdateTimestamp = &now
		if err := s.settingsRepo.Save(ctx, tx, settings); err != nil {
			return err
		}

		return s.Audit(ctx, tx, actor.Username, entities.ActionImport, entities.TargetEquipment, "ALL",
			fmt.Sprintf("Replaced entire equipment inventory with %d items via consolidation tool.", len(items)))
	})
	if err != nil {
		return 0, err
	}

	s.settings.Invalidate(ctx)
	s.logger.Info("Инвентарь заменён", zap.Int("count", len(items)), zap.String("by", actor.Username))
	return len(items), nil
}

func (s *ConsolidationService) PeriodicPreview(ctx context.Context, source SourceFile) (*dto.PeriodicPreviewDTO, error) {
	if _, err := s.Authorize(ctx, authz.EquipmentImport, nil); err != nil {
		return nil, err
	}
	parsed, err := consolidation.ParseFile(source.Name, source.Data, consolidation.AbsoluteMapping)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("%s", err.Error())
	}
	s.archive(source)

	records := make([]map[string]string, 0, len(parsed.Records))
	for _, rec := range parsed.Records {
		records = append(records, rec)
	}
	return &dto.PeriodicPreviewDTO{Records: records, Skipped: parsed.Skipped}, nil
}

// PeriodicApply сливает записи с инвентарём по точному серийному номеру:
// найденные обновляются по изменившимся полям, новые добавляются одобренными.
// Ничего не удаляет.
func (s *ConsolidationService) PeriodicApply(ctx context.Context, records []map[string]string) (*dto.PeriodicUpdateResultDTO, error) {
	actor, err := s.Authorize(ctx, authz.EquipmentImport, nil)
	if err != nil {
		return nil, err
	}

	result := &dto.PeriodicUpdateResultDTO{}
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		*result = dto.PeriodicUpdateResultDTO{}
		for _, raw := range records {
			rec := consolidation.Record(raw)
			serial := rec.Serial()
			if serial == "" {
				result.Skipped++
				continue
			}

			existing, err := s.equipmentRepo.FindBySerial(ctx, tx, serial)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}

			if existing == nil {
				eq := newImportedEquipment(rec, actor)
				id, err := s.insertWithQRCode(ctx, tx, eq)
				if err != nil {
					return err
				}
				if err := s.Audit(ctx, tx, actor.Username, entities.ActionCreate, entities.TargetEquipment, id,
					fmt.Sprintf("Created new equipment via periodic update: %s (%s)", eq.Equipamento, eq.Serial)); err != nil {
					return err
				}
				result.Created++
				continue
			}

			incoming := make(map[string]string, len(rec))
			for field, value := range rec {
				if field == "serial" {
					continue
				}
				incoming[field] = value
			}
			changes := workflow.Diff(existing, incoming)
			if len(changes) == 0 {
				result.Unchanged++
				continue
			}

			columns := make(map[string]string, len(changes))
			for _, c := range changes {
				columns[c.Field] = c.To
			}
			if err := s.equipmentRepo.UpdateFields(ctx, tx, existing.ID, columns); err != nil {
				return err
			}
			if err := s.historyRepo.Append(ctx, tx, historyRows(existing.ID, actor.DisplayName(), changes)); err != nil {
				return err
			}
			name := existing.Equipamento
			if v := columns["equipamento"]; v != "" {
				name = v
			}
			if err := s.Audit(ctx, tx, actor.Username, entities.ActionUpdate, entities.TargetEquipment, existing.ID,
				fmt.Sprintf("Periodic update for %s. Changes: %s", name, strings.Join(workflow.ChangedFields(changes), ", "))); err != nil {
				return err
			}
			result.Updated++
		}

		settings, err := s.settingsRepo.Load(ctx, tx)
		if err != nil {
			return err
		}
		now := timeNow()
		settings.LastAbsoluteUpdateTimestamp = &now
		return s.settingsRepo.Save(ctx, tx, settings)
	})
	if err != nil {
		return nil, err
	}

	s.settings.Invalidate(ctx)
	result.Success = true
	result.Message = "Inventário atualizado com sucesso."
	s.logger.Info("Периодическое обновление применено",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *ConsolidationService) insertWithQRCode(ctx context.Context, tx pgx.Tx, eq entities.Equipment) (uint64, error) {
	id, err := s.equipmentRepo.Create(ctx, tx, eq)
	if err != nil {
		return 0, err
	}
	return id, s.equipmentRepo.UpdateFields(ctx, tx, id, map[string]string{"qrCode": entities.BuildQRCode(id, eq.Serial)})
}

// archive сохраняет исходные файлы импорта. Ошибка архивации не мешает импорту.
func (s *ConsolidationService) archive(files ...SourceFile) {
	if s.fileStorage == nil {
		return
	}
	for _, f := range files {
		if len(f.Data) == 0 {
			continue
		}
		if _, err := s.fileStorage.Save(bytes.NewReader(f.Data), f.Name, importArchivePrefix); err != nil {
			s.logger.Warn("Не удалось архивировать файл импорта", zap.String("file", f.Name), zap.Error(err))
		}
	}
}

// newImportedEquipment - запись из импорта: одобрена, автор - текущий пользователь.
func newImportedEquipment(rec consolidation.Record, actor *entities.User) entities.Equipment {
	eq := *rec.ToEquipment()
	eq.ID = 0
	eq.Serial = strings.TrimSpace(eq.Serial)
	eq.QRCode = ""
	if eq.Status == "" {
		eq.Status = entities.StatusEstoque
	}
	if eq.CondicaoTermo == "" {
		eq.CondicaoTermo = entities.TermNA
	}
	eq.ApprovalStatus = entities.ApprovalApproved
	eq.CreatedByID = &actor.ID
	return eq
}
