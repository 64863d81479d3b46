package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const gcDiscardRatio = 0.5

// BadgerGC periodically reclaims space in the value log. Badger never runs
// garbage collection on its own, so without this worker the on-disk store
// only ever grows.
type BadgerGC struct {
	db       *badger.DB
	log      *slog.Logger
	interval time.Duration
}

func NewBadgerGC(db *badger.DB, log *slog.Logger, interval time.Duration) *BadgerGC {
	return &BadgerGC{db: db, log: log, interval: interval}
}

func (w *BadgerGC) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// ErrNoRewrite just means there was nothing worth compacting.
			if err := w.db.RunValueLogGC(gcDiscardRatio); err != nil && err != badger.ErrNoRewrite {
				w.log.Warn("Value log GC failed", "error", err)
			}
		}
	}
}
