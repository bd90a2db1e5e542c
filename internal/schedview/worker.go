package schedview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/zulandar/shopline/internal/audit"
	"github.com/zulandar/shopline/internal/event"
	"github.com/zulandar/shopline/internal/job"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/notify"
	"github.com/zulandar/shopline/internal/workorder"
	"gorm.io/gorm"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxBackoff   = time.Minute
	batchSize           = 100
)

// Worker consumes the change-event feed: it projects the schedule
// view, writes audit ledger entries, refreshes job status caches and
// publishes outbound notifications. Consumption is at-least-once; every
// step is idempotent, so a crash or retry replays events harmlessly.
type Worker struct {
	DB           *gorm.DB
	PollInterval time.Duration
	MaxBackoff   time.Duration
	Notifier     *notify.Notifier
	Out          io.Writer

	cursor uint
}

// Run starts the consumer loop and blocks until ctx is cancelled. The
// cursor restarts from the newest event already in the audit ledger,
// so only unprocessed events are replayed after a restart.
func (w *Worker) Run(ctx context.Context) error {
	if w.DB == nil {
		return fmt.Errorf("schedview: db is required")
	}
	if w.PollInterval <= 0 {
		w.PollInterval = defaultPollInterval
	}
	if w.MaxBackoff <= 0 {
		w.MaxBackoff = defaultMaxBackoff
	}
	if w.Out == nil {
		w.Out = io.Discard
	}

	last, err := audit.LastEventID(w.DB)
	if err != nil {
		return err
	}
	w.cursor = last
	fmt.Fprintf(w.Out, "Sync worker starting at event %d (poll every %s)\n", w.cursor, w.PollInterval)

	backoff := w.PollInterval
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		n, err := w.drain(ctx)
		if err != nil {
			// Failures only delay the derived view; back off and retry
			// from the same cursor.
			log.Printf("schedview: drain: %v", err)
			backoff = min(backoff*2, w.MaxBackoff)
			continue
		}
		backoff = w.PollInterval
		if n > 0 {
			fmt.Fprintf(w.Out, "Synced %d events (cursor %d)\n", n, w.cursor)
		}
	}
}

// drain processes all pending events, advancing the cursor past each
// successfully handled event.
func (w *Worker) drain(ctx context.Context) (int, error) {
	total := 0
	for {
		select {
		case <-ctx.Done():
			return total, nil
		default:
		}

		evs, err := event.After(w.DB, w.cursor, batchSize)
		if err != nil {
			return total, err
		}
		if len(evs) == 0 {
			return total, nil
		}

		for i := range evs {
			if err := w.handle(&evs[i]); err != nil {
				return total, err
			}
			w.cursor = evs[i].ID
			total++
		}
	}
}

// handle applies a single event to every consumer concern.
func (w *Worker) handle(ev *models.ChangeEvent) error {
	now := time.Now()

	if err := Apply(w.DB, ev, now); err != nil {
		if errors.Is(err, workorder.ErrReferenceNotFound) {
			// Recoverable: the referenced resource is gone. Skip and
			// log; the next event for this work order retries the
			// projection. Never crash the consumer loop.
			log.Printf("schedview: skip event %d: %v", ev.ID, err)
		} else {
			return err
		}
	}

	if ev.JobID != "" {
		if _, err := job.Refresh(w.DB, ev.JobID); err != nil {
			log.Printf("schedview: refresh job %s: %v", ev.JobID, err)
		}
	}

	if w.Notifier != nil {
		if out, ok := notify.FromChange(ev); ok {
			w.Notifier.Publish(context.Background(), out)
		}
	}

	// The ledger write is last so the cursor restore point (the newest
	// audited event) never runs ahead of the view.
	return audit.RecordEvent(w.DB, ev)
}
