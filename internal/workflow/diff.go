package workflow

import (
	"inventory-system/internal/entities"
)

// FieldChange - изменение одного отслеживаемого поля.
type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// untracked - поля, которые не попадают в историю.
var untracked = map[string]bool{
	"id":     true,
	"qrCode": true,
}

// Diff сравнивает текущую запись с пришедшими значениями как строки.
// Учитываются только поля, присутствующие в incoming.
func Diff(current *entities.Equipment, incoming map[string]string) []FieldChange {
	var changes []FieldChange
	for _, field := range entities.EquipmentFieldNames() {
		if untracked[field] {
			continue
		}
		newValue, ok := incoming[field]
		if !ok {
			continue
		}
		oldValue, _ := current.Get(field)
		if oldValue != newValue {
			changes = append(changes, FieldChange{Field: field, From: oldValue, To: newValue})
		}
	}
	return changes
}

// DiffEquipment сравнивает две полные записи.
func DiffEquipment(before, after *entities.Equipment) []FieldChange {
	return Diff(before, after.Values())
}

// Apply записывает изменения в запись.
func Apply(eq *entities.Equipment, changes []FieldChange) {
	for _, c := range changes {
		eq.Set(c.Field, c.To)
	}
}

// ChangedFields - имена изменённых полей для журнала аудита.
func ChangedFields(changes []FieldChange) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.Field
	}
	return out
}
