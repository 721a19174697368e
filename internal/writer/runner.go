// internal/writer/runner.go
package writer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/netclass"
	"github.com/tamzrod/netclass/internal/status"
)

// tickInterval drives seconds_in_class.
const tickInterval = time.Second

// Run publishes the status block until ctx is done or updates is closed.
// initial is the class at start; updates carries every later delivery.
// Write failures are logged and retried on the next change or tick.
func Run(ctx context.Context, initial netclass.Class, updates <-chan netclass.Class, sw StatusWriter, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	snap := status.Initial(initial)
	write := func() {
		if err := sw.WriteStatus(snap); err != nil {
			log.Warn("status write failed", zap.Error(err))
		}
	}
	write()

	for {
		select {
		case <-ctx.Done():
			return

		case c, ok := <-updates:
			if !ok {
				return
			}
			if snap.Observe(c) {
				write()
			}

		case <-ticker.C:
			snap.Tick()
			write()
		}
	}
}
