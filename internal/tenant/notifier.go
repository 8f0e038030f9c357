package tenant

import (
	"go.uber.org/zap"

	"repairshop/internal/permission"
)

// Notifier delivers invitation notifications. Delivery is
// fire-and-forget: a failure is logged and never rolls back the
// membership row.
type Notifier interface {
	InvitationCreated(email, tenantName string, role permission.Role) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) InvitationCreated(string, string, permission.Role) error { return nil }

// LogNotifier records notifications in the log. Stands in for a real
// mail sender in development.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) InvitationCreated(email, tenantName string, role permission.Role) error {
	n.Log.Info("invitation notification",
		zap.String("email", email),
		zap.String("tenant", tenantName),
		zap.String("role", string(role)))
	return nil
}
