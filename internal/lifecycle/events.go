package lifecycle

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// maxEvents is how many lifecycle events are kept.
const maxEvents = 30

// Event is one entry of the lifecycle history.
type Event struct {
	Name    string         `json:"name"`
	Time    int64          `json:"time"`
	Version string         `json:"version"`
	Data    map[string]any `json:"data,omitempty"`
}

// Events returns the lifecycle history, newest first.
func (l *Lifecycle) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	if _, err := l.site.GetOption(ctx, types.OptionLifecycleEvents, &events); err != nil {
		return nil, fmt.Errorf("reading lifecycle events: %w", err)
	}
	return events, nil
}

func (l *Lifecycle) storeEvent(ctx context.Context, e Event) error {
	events, err := l.Events(ctx)
	if err != nil {
		return err
	}
	if e.Time == 0 {
		e.Time = l.now().Unix()
	}
	events = append([]Event{e}, events...)
	if len(events) > maxEvents {
		events = events[:maxEvents]
	}
	if err := l.site.UpdateOption(ctx, types.OptionLifecycleEvents, events); err != nil {
		return fmt.Errorf("writing lifecycle events: %w", err)
	}
	return nil
}
