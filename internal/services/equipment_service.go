package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	"inventory-system/internal/workflow"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
	"inventory-system/pkg/utils"
)

const duplicateSerialMessage = "Erro: O número de série já está cadastrado no sistema."

type EquipmentServiceInterface interface {
	GetEquipment(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	History(ctx context.Context, id uint64) ([]entities.EquipmentHistory, error)
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error)
	UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error)
	DeleteEquipment(ctx context.Context, id uint64) error
	Deliver(ctx context.Context, id uint64, payload dto.DeliverEquipmentDTO) (*dto.LifecycleResultDTO, error)
	Return(ctx context.Context, id uint64) (*dto.LifecycleResultDTO, error)
	Export(ctx context.Context) ([]byte, error)
}

type EquipmentService struct {
	*BaseService
	equipmentRepo repositories.EquipmentRepositoryInterface
	historyRepo   repositories.EquipmentHistoryRepositoryInterface
	txManager     repositories.TxManagerInterface
	terms         TermServiceInterface
	publisher     EventPublisher
	logger        *zap.Logger
}

func NewEquipmentService(
	base *BaseService,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	historyRepo repositories.EquipmentHistoryRepositoryInterface,
	txManager repositories.TxManagerInterface,
	terms TermServiceInterface,
	publisher EventPublisher,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		BaseService:   base,
		equipmentRepo: equipmentRepo,
		historyRepo:   historyRepo,
		txManager:     txManager,
		terms:         terms,
		publisher:     publisher,
		logger:        logger,
	}
}

func (s *EquipmentService) GetEquipment(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	actor, err := s.Authorize(ctx, authz.EquipmentView, nil)
	if err != nil {
		return nil, 0, err
	}
	return s.equipmentRepo.GetAll(ctx, filter, visibilityFor(actor))
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	eq, err := s.equipmentRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	// Чужую неодобренную запись не раскрываем.
	if !authz.Can(actor, authz.EquipmentView, eq) {
		return nil, apperrors.ErrNotFound
	}
	return eq, nil
}

func (s *EquipmentService) History(ctx context.Context, id uint64) ([]entities.EquipmentHistory, error) {
	if _, err := s.FindEquipment(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByEquipment(ctx, id)
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	actor, err := s.Authorize(ctx, authz.EquipmentCreate, nil)
	if err != nil {
		return nil, err
	}

	eq := payload.Equipment()
	eq.Serial = strings.TrimSpace(eq.Serial)
	eq.QRCode = ""
	eq.ApprovalStatus = workflow.InitialApprovalStatus(actor.Role)
	eq.CreatedByID = &actor.ID

	var created *entities.Equipment
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.ensureSerialFree(ctx, tx, eq.Serial, 0); err != nil {
			return err
		}
		id, err := s.equipmentRepo.Create(ctx, tx, eq)
		if err != nil {
			return err
		}
		if err := s.equipmentRepo.UpdateFields(ctx, tx, id, map[string]string{"qrCode": entities.BuildQRCode(id, eq.Serial)}); err != nil {
			return err
		}
		if err := s.Audit(ctx, tx, actor.Username, entities.ActionCreate, entities.TargetEquipment, id,
			fmt.Sprintf("Created new equipment: %s", eq.Equipamento)); err != nil {
			return err
		}
		created, err = s.equipmentRepo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Оборудование создано",
		zap.Uint64("id", created.ID),
		zap.String("serial", created.Serial),
		zap.String("approval_status", string(created.ApprovalStatus)),
	)
	return created, nil
}

func (s *EquipmentService) UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}

	incoming := payload.Changes()
	if serial, ok := incoming["serial"]; ok {
		serial = strings.TrimSpace(serial)
		if serial == "" {
			return nil, apperrors.NewInvalidInputError("O número de série não pode ficar vazio")
		}
		incoming["serial"] = serial
	}

	var updated *entities.Equipment
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.equipmentRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !authz.Can(actor, authz.EquipmentUpdate, current) {
			return apperrors.ErrForbidden
		}

		changes := workflow.Diff(current, incoming)
		if len(changes) == 0 {
			updated = current
			return nil
		}

		columns := make(map[string]string, len(changes)+1)
		for _, c := range changes {
			columns[c.Field] = c.To
		}
		if newSerial, ok := columns["serial"]; ok {
			if err := s.ensureSerialFree(ctx, tx, newSerial, id); err != nil {
				return err
			}
			columns["qrCode"] = entities.BuildQRCode(id, newSerial)
		}

		if err := s.equipmentRepo.UpdateFields(ctx, tx, id, columns); err != nil {
			return err
		}
		if err := s.historyRepo.Append(ctx, tx, historyRows(id, actor.DisplayName(), changes)); err != nil {
			return err
		}
		name := current.Equipamento
		if v, ok := columns["equipamento"]; ok {
			name = v
		}
		if err := s.Audit(ctx, tx, actor.Username, entities.ActionUpdate, entities.TargetEquipment, id,
			fmt.Sprintf("Updated equipment: %s. Changes: %s", name, strings.Join(workflow.ChangedFields(changes), ", "))); err != nil {
			return err
		}
		updated, err = s.equipmentRepo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EquipmentService) DeleteEquipment(ctx context.Context, id uint64) error {
	actor, err := s.Actor(ctx)
	if err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.equipmentRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !authz.Can(actor, authz.EquipmentDelete, current) {
			return apperrors.ErrForbidden
		}
		if err := s.equipmentRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.Audit(ctx, tx, actor.Username, entities.ActionDelete, entities.TargetEquipment, id,
			fmt.Sprintf("Deleted equipment: %s", current.Equipamento))
	})
}

func (s *EquipmentService) Deliver(ctx context.Context, id uint64, payload dto.DeliverEquipmentDTO) (*dto.LifecycleResultDTO, error) {
	return s.transition(ctx, id, TermEntrega, func(eq entities.Equipment, today string) (entities.Equipment, error) {
		return workflow.Deliver(eq, payload.Recipient, payload.Email, today)
	})
}

func (s *EquipmentService) Return(ctx context.Context, id uint64) (*dto.LifecycleResultDTO, error) {
	return s.transition(ctx, id, TermDevolucao, workflow.Return)
}

type transitionFunc func(eq entities.Equipment, today string) (entities.Equipment, error)

// transition - общий путь выдачи и возврата: блокировка строки, переход,
// одно обновление, история по полям, аудит, термо и событие после коммита.
func (s *EquipmentService) transition(ctx context.Context, id uint64, kind TermKind, apply transitionFunc) (*dto.LifecycleResultDTO, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}

	var before, after entities.Equipment
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.equipmentRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !authz.Can(actor, authz.EquipmentLifecycle, current) {
			return apperrors.ErrForbidden
		}

		before = *current
		after, err = apply(before, utils.Today(timeNow()))
		if err != nil {
			return err
		}

		changes := workflow.DiffEquipment(&before, &after)
		columns := make(map[string]string, len(changes))
		for _, c := range changes {
			columns[c.Field] = c.To
		}
		if err := s.equipmentRepo.UpdateFields(ctx, tx, id, columns); err != nil {
			return err
		}
		if err := s.historyRepo.Append(ctx, tx, historyRows(id, actor.DisplayName(), changes)); err != nil {
			return err
		}

		action, details := entities.ActionDeliver, fmt.Sprintf("Equipment %s delivered to %s", after.Serial, after.UsuarioAtual)
		if kind == TermDevolucao {
			action, details = entities.ActionReturn, fmt.Sprintf("Equipment %s returned by %s", after.Serial, after.UsuarioAnterior)
		}
		return s.Audit(ctx, tx, actor.Username, action, entities.TargetEquipment, id, details)
	})
	if err != nil {
		return nil, err
	}

	term, err := s.terms.Render(ctx, kind, after)
	if err != nil {
		// Переход уже зафиксирован, термо можно получить повторно из шаблонов.
		s.logger.Error("Не удалось сформировать термо", zap.Uint64("id", id), zap.Error(err))
	}

	email := after.EmailColaborador
	if kind == TermDevolucao {
		email = before.EmailColaborador
	}
	if s.publisher != nil && term != "" {
		s.publisher.Publish(ctx, events.TermIssuedEvent{
			Kind:      string(kind),
			Equipment: after,
			Term:      term,
			Email:     email,
			ActorName: actor.DisplayName(),
		})
	}

	return &dto.LifecycleResultDTO{Equipment: after, Term: term}, nil
}

func (s *EquipmentService) Export(ctx context.Context) ([]byte, error) {
	actor, err := s.Authorize(ctx, authz.EquipmentExport, nil)
	if err != nil {
		return nil, err
	}
	list, _, err := s.equipmentRepo.GetAll(ctx, types.Filter{}, visibilityFor(actor))
	if err != nil {
		return nil, err
	}
	return equipmentWorkbook(list)
}

// ensureSerialFree - серийный номер не занят другой записью (exceptID - сама редактируемая запись).
func (s *EquipmentService) ensureSerialFree(ctx context.Context, tx pgx.Tx, serial string, exceptID uint64) error {
	existing, err := s.equipmentRepo.FindBySerial(ctx, tx, serial)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == exceptID {
		return nil
	}
	return apperrors.NewHttpError(http.StatusConflict, duplicateSerialMessage, apperrors.ErrConflict, map[string]interface{}{"serial": serial})
}

func historyRows(equipmentID uint64, changedBy string, changes []workflow.FieldChange) []entities.EquipmentHistory {
	now := timeNow()
	rows := make([]entities.EquipmentHistory, 0, len(changes))
	for _, c := range changes {
		from, to := c.From, c.To
		rows = append(rows, entities.EquipmentHistory{
			EquipmentID: equipmentID,
			ChangedBy:   changedBy,
			ChangeType:  c.Field,
			FromValue:   &from,
			ToValue:     &to,
			Timestamp:   now,
		})
	}
	return rows
}
