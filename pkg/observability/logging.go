package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/machine/pkg/domain"
)

// LogHooks returns lifecycle hooks writing one log record per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExecStart: func(ctx context.Context, e *domain.ExecEvent) {
			logger.InfoContext(ctx, "exec_start",
				"identity", e.Identity,
				"execution_id", e.ExecutionID,
			)
		},
		OnSettle: func(ctx context.Context, e *domain.ExecEvent) {
			if e.Err != nil {
				logger.InfoContext(ctx, "exec_settle",
					"identity", e.Identity,
					"execution_id", e.ExecutionID,
					"exit", e.Exit,
					"kind", domain.Kind(e.Err),
					"error", e.Err,
					"duration", e.Duration,
				)
				return
			}
			logger.InfoContext(ctx, "exec_settle",
				"identity", e.Identity,
				"execution_id", e.ExecutionID,
				"exit", e.Exit,
				"duration", e.Duration,
			)
		},
		OnLateExit: func(ctx context.Context, e *domain.ExecEvent) {
			logger.WarnContext(ctx, "exec_late_exit",
				"identity", e.Identity,
				"execution_id", e.ExecutionID,
				"exit", e.Exit,
			)
		},
	}
}
