package reminders

import (
	"context"
	"time"

	"TRIPPLANNER_BACK-END/internal/logger"
)

// Loop runs the job every interval until ctx is done. A non-positive
// interval disables it.
func (j *Job) Loop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		logger.L().Info("reminder loop disabled")
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.L().Infof("reminder loop started (interval %s)", interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			if _, err := j.Run(ctx, t); err != nil {
				logger.L().Errorf("reminder scan failed: %v", err)
			}
		}
	}
}
