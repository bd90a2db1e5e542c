// Package notify emits core facts (work order assigned, downtime
// reported/cleared) to external delivery channels. Delivery itself is
// out of scope: sinks are best-effort and a failed post never affects
// the transition that produced the fact.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/zulandar/shopline/internal/models"
)

// Event is one outbound fact.
type Event struct {
	Kind        string // "work_order_assigned", "downtime_reported", "downtime_cleared"
	WorkOrderID string
	JobID       string
	ResourceID  string
	Text        string
}

// Sink delivers events to one external channel.
type Sink interface {
	// Post delivers a single event. Post must be safe to call
	// concurrently.
	Post(ctx context.Context, ev Event) error

	// Name identifies the sink in logs.
	Name() string
}

// Notifier fans an event out to all configured sinks.
type Notifier struct {
	Sinks []Sink
}

// Publish posts the event to every sink. Errors are logged, not
// returned: notification delivery is best-effort.
func (n *Notifier) Publish(ctx context.Context, ev Event) {
	for _, s := range n.Sinks {
		if err := s.Post(ctx, ev); err != nil {
			log.Printf("notify: %s: %v", s.Name(), err)
		}
	}
}

// FromChange maps a change event to an outbound fact. Only the kinds
// external collaborators care about produce one.
func FromChange(ev *models.ChangeEvent) (Event, bool) {
	resourceID := ""
	if ev.ResourceID != nil {
		resourceID = *ev.ResourceID
	}
	workOrderID := ""
	if ev.WorkOrderID != nil {
		workOrderID = *ev.WorkOrderID
	}

	switch ev.Kind {
	case models.EventWorkOrderCreated:
		if ev.JobID == "" || resourceID == "" {
			return Event{}, false
		}
		return Event{
			Kind:        "work_order_assigned",
			WorkOrderID: workOrderID,
			JobID:       ev.JobID,
			ResourceID:  resourceID,
			Text:        fmt.Sprintf("Work order %s assigned to %s (job %s)", workOrderID, resourceID, ev.JobID),
		}, true
	case models.EventDowntimeReported:
		return Event{
			Kind:       "downtime_reported",
			ResourceID: resourceID,
			Text:       fmt.Sprintf("Downtime reported on %s", resourceID),
		}, true
	case models.EventDowntimeCleared:
		return Event{
			Kind:       "downtime_cleared",
			ResourceID: resourceID,
			Text:       fmt.Sprintf("Downtime cleared on %s", resourceID),
		}, true
	}
	return Event{}, false
}
