// internal/store/audit_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"hiring-pipeline/internal/models"
)

type auditStore struct {
	q querier
}

func (s *auditStore) Append(ctx context.Context, e *models.AuditEntry) error {
	var details []byte
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = b
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO audit_log (person_id, application_id, user_id, action, action_type,
			details, ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		nullStringPtr(e.PersonID), nullStringPtr(e.ApplicationID), nullStringPtr(e.UserID),
		e.Action, e.ActionType, details, nullString(e.IP), nullString(e.UserAgent), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
