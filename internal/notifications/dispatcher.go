package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	"github.com/angelmondragon/ovenly-backend/pkg/types"
)

// Notifier delivers an event to a single user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event Event) error
}

// Publisher mirrors notifications onto an external stream.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Message is the payload mirrored to the event stream.
type Message struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"user_id"`
	Type      enums.NotificationType `json:"type"`
	OrderID   *uuid.UUID             `json:"order_id,omitempty"`
	Title     types.LocalizedText    `json:"title"`
	Message   types.LocalizedText    `json:"message"`
	CreatedAt time.Time              `json:"created_at"`
}

// Dispatcher persists notifications and optionally publishes them.
type Dispatcher struct {
	repo      Repository
	publisher Publisher
}

// NewDispatcher wires the dispatcher. publisher may be nil.
func NewDispatcher(repo Repository, publisher Publisher) (*Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &Dispatcher{repo: repo, publisher: publisher}, nil
}

// Notify stores the event for userID and mirrors it to the publisher. A
// failed store does not prevent the publish attempt; both errors are returned.
func (d *Dispatcher) Notify(ctx context.Context, userID uuid.UUID, event Event) error {
	if userID == uuid.Nil {
		return nil
	}

	row := event.Model(userID)
	var errs error
	if err := d.repo.Create(ctx, row); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("persist notification: %w", err))
	}
	if d.publisher == nil {
		return errs
	}

	key := userID.String()
	if row.OrderID != nil {
		key = row.OrderID.String()
	}
	msg := Message{
		ID:        row.ID,
		UserID:    userID,
		Type:      row.Type,
		OrderID:   row.OrderID,
		Title:     event.Title,
		Message:   event.Message,
		CreatedAt: row.CreatedAt,
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if err := d.publisher.Publish(ctx, key, msg); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("publish notification: %w", err))
	}
	return errs
}
