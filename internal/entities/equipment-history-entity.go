package entities

import "time"

// EquipmentHistory - неизменяемая запись об изменении одного поля оборудования.
type EquipmentHistory struct {
	ID          uint64    `json:"id" db:"id"`
	EquipmentID uint64    `json:"equipment_id" db:"equipment_id"`
	ChangedBy   string    `json:"changedBy" db:"changed_by"`
	ChangeType  string    `json:"changeType" db:"change_type"`
	FromValue   *string   `json:"from_value" db:"from_value"`
	ToValue     *string   `json:"to_value" db:"to_value"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}
