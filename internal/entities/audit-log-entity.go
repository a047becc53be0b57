package entities

import "time"

type AuditLog struct {
	ID         uint64      `json:"id" db:"id"`
	Username   string      `json:"username" db:"username"`
	ActionType AuditAction `json:"action_type" db:"action_type"`
	TargetType AuditTarget `json:"target_type" db:"target_type"`
	TargetID   *string     `json:"target_id" db:"target_id"`
	Details    string      `json:"details" db:"details"`
	Timestamp  time.Time   `json:"timestamp" db:"timestamp"`
}
