package ports

import (
	"context"

	"github.com/gkats/catalog-api/internal/core/domain"
)

// AuditRecorder accepts security events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}

// AuditRepository persists security events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event domain.AuthEvent) error
}
