package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/ovenly-backend/internal/notifications"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	"github.com/angelmondragon/ovenly-backend/pkg/types"
)

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	NextCursor    string         `json:"next_cursor,omitempty"`
}

type Notification struct {
	ID        uuid.UUID              `json:"id"`
	Type      enums.NotificationType `json:"type"`
	Title     types.LocalizedText    `json:"title"`
	Message   types.LocalizedText    `json:"message"`
	OrderID   *uuid.UUID             `json:"order_id"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at"`
	CreatedAt time.Time              `json:"created_at"`
}

func NewNotificationList(result *notifications.ListResult) NotificationListResponse {
	out := NotificationListResponse{
		Notifications: make([]Notification, 0, len(result.Items)),
		NextCursor:    result.Cursor,
	}
	for _, n := range result.Items {
		out.Notifications = append(out.Notifications, NewNotification(n))
	}
	return out
}

func NewNotification(n models.Notification) Notification {
	return Notification{
		ID:        n.ID,
		Type:      n.Type,
		Title:     types.Text(n.TitleEN, n.TitleAR),
		Message:   types.Text(n.MessageEN, n.MessageAR),
		OrderID:   n.OrderID,
		IsRead:    n.ReadAt != nil,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
