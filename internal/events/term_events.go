package events

import "inventory-system/internal/entities"

const TermIssuedEventName = "equipment.term.issued"

// TermIssuedEvent - после выдачи или возврата оборудования сформирован термо.
type TermIssuedEvent struct {
	Kind      string
	Equipment entities.Equipment
	Term      string
	Email     string
	ActorName string
}

func (e TermIssuedEvent) Name() string {
	return TermIssuedEventName
}
