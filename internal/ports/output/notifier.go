package output

import (
	"context"

	"moevius/internal/domain/entities"
)

// Notifier delivers a notification to the output identified by channelKey.
// An unresolvable key yields domain.ErrOutputUnavailable.
type Notifier interface {
	Notify(ctx context.Context, channelKey string, n entities.Notification) error
}
