package notify

import (
	"context"
	"errors"

	"github.com/vsinha/jvalloc/pkg/application/dto"
	"github.com/vsinha/jvalloc/pkg/application/services/orchestration"
)

// Multi fans a run out to every notifier and joins their errors
type Multi []orchestration.Notifier

var _ orchestration.Notifier = Multi(nil)

func (m Multi) Notify(ctx context.Context, run *dto.AllocationRun) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
