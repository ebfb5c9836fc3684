package engine

import (
	"log/slog"

	"github.com/aretw0/machine/internal/logging"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/ports"
)

// Options configures the collaborators of a Deferred.
// The zero value is valid: no logging, no hooks, no journal.
type Options struct {
	Logger  *slog.Logger
	Hooks   domain.LifecycleHooks
	Journal ports.Journal
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}
