// internal/models/audit.go
package models

import "time"

// AuditActionType classifies an audit log entry.
type AuditActionType string

const (
	AuditCreate       AuditActionType = "CREATE"
	AuditUpdate       AuditActionType = "UPDATE"
	AuditDelete       AuditActionType = "DELETE"
	AuditView         AuditActionType = "VIEW"
	AuditEmailSent    AuditActionType = "EMAIL_SENT"
	AuditStatusChange AuditActionType = "STATUS_CHANGE"
	AuditStageChange  AuditActionType = "STAGE_CHANGE"
)

// AuditEntry is one immutable record of a significant action. Entries are
// append-only; the structured Details payload carries enough context
// (fromStage/toStage, decision, score, ...) to reconstruct a human-readable
// description without parsing the action string.
type AuditEntry struct {
	ID            int64                  `json:"id"`
	PersonID      *string                `json:"personId,omitempty"`
	ApplicationID *string                `json:"applicationId,omitempty"`
	UserID        *string                `json:"userId,omitempty"`
	Action        string                 `json:"action"`
	ActionType    AuditActionType        `json:"actionType"`
	Details       map[string]interface{} `json:"details,omitempty"`
	IP            string                 `json:"ip,omitempty"`
	UserAgent     string                 `json:"userAgent,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}
