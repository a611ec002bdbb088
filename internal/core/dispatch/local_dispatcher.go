package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/core"
)

const localJobTimeout = 10 * time.Minute

// LocalDispatcher runs jobs in-process. Useful for development and for
// deployments without a Lambda function configured.
type LocalDispatcher struct {
	handler func(ctx context.Context, payload []byte) error
	logger  *zap.Logger
}

var _ core.JobDispatcher = (*LocalDispatcher)(nil)

func NewLocalDispatcher(handler func(ctx context.Context, payload []byte) error, logger *zap.Logger) *LocalDispatcher {
	return &LocalDispatcher{handler: handler, logger: logger}
}

// InvokeAsync mirrors the Lambda Event invocation: the job runs on its
// own goroutine with a fresh context so it survives the request that
// triggered it.
func (d *LocalDispatcher) InvokeAsync(_ context.Context, functionName string, payload []byte) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), localJobTimeout)
		defer cancel()

		if err := d.handler(ctx, payload); err != nil {
			d.logger.Error("local job failed",
				zap.String("function", functionName),
				zap.Error(err),
			)
		}
	}()
	return nil
}
