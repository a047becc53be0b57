package workflow

import (
	"fmt"
	"strings"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

// Deliver выдаёт оборудование со склада сотруднику. Исходная запись не меняется.
func Deliver(eq entities.Equipment, recipient, email, today string) (entities.Equipment, error) {
	if eq.Status != entities.StatusEstoque {
		return eq, fmt.Errorf("entrega exige status %q, atual %q: %w", entities.StatusEstoque, eq.Status, apperrors.ErrInvalidTransition)
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return eq, apperrors.NewInvalidInputError("O nome do colaborador é obrigatório para a entrega")
	}

	next := eq
	next.UsuarioAtual = recipient
	next.EmailColaborador = strings.TrimSpace(email)
	next.Status = entities.StatusEmUso
	next.DataEntregaUsuario = today
	next.DataDevolucao = ""
	next.CondicaoTermo = entities.TermAssinadoEntrega
	return next, nil
}

// Return возвращает оборудование на склад, сохраняя прежнего пользователя.
func Return(eq entities.Equipment, today string) (entities.Equipment, error) {
	if eq.Status != entities.StatusEmUso {
		return eq, fmt.Errorf("devolução exige status %q, atual %q: %w", entities.StatusEmUso, eq.Status, apperrors.ErrInvalidTransition)
	}

	next := eq
	next.UsuarioAnterior = eq.UsuarioAtual
	next.UsuarioAtual = ""
	next.EmailColaborador = ""
	next.Status = entities.StatusEstoque
	next.DataDevolucao = today
	next.CondicaoTermo = entities.TermAssinadoDevol
	return next, nil
}
