// internal/history/record.go
package history

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/netclass"
)

// Record stores a row whenever the class differs from the last stored one.
// It runs until ctx is done or updates is closed.
// The last stored class survives restarts, so a daemon that comes back in
// the same class records nothing.
func Record(ctx context.Context, db *DB, initial netclass.Class, updates <-chan netclass.Class, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	var last netclass.Class
	if t, ok, err := db.Last(ctx); err != nil {
		log.Warn("history: read last transition", zap.Error(err))
	} else if ok {
		last = t.Class
	}

	store := func(c netclass.Class) {
		if c == last {
			return
		}
		t := Transition{Class: c, Previous: last, At: time.Now().UTC()}
		if _, err := db.Insert(ctx, t); err != nil {
			log.Warn("history: store transition", zap.Error(err), zap.String("class", c.String()))
			return
		}
		log.Debug("history: transition",
			zap.String("class", c.String()),
			zap.String("previous", last.String()),
		)
		last = c
	}

	store(initial)

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-updates:
			if !ok {
				return
			}
			store(c)
		}
	}
}
