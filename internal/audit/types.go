package audit

import (
	"time"
)

// AuditAction is the kind of change recorded for a contact.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog is one line of the audit file.
type AuditLog struct {
	ID        string                 `json:"id"`
	ContactID string                 `json:"contact_id"`
	Action    AuditAction            `json:"action"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Changes   map[string]Change      `json:"changes,omitempty"`
}

// Change holds the before and after value of one contact field.
type Change struct {
	OldValue interface{} `json:"old_value,omitempty"`
	NewValue interface{} `json:"new_value,omitempty"`
}
