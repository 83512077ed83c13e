package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	"github.com/angelmondragon/ovenly-backend/pkg/types"
)

// Event is a notification before it is addressed to a user.
type Event struct {
	Type    enums.NotificationType
	OrderID uuid.UUID
	Title   types.LocalizedText
	Message types.LocalizedText
}

// Model addresses the event to userID.
func (e Event) Model(userID uuid.UUID) *models.Notification {
	n := &models.Notification{
		UserID:    userID,
		Type:      e.Type,
		TitleEN:   e.Title.EN,
		TitleAR:   e.Title.AR,
		MessageEN: e.Message.EN,
		MessageAR: e.Message.AR,
	}
	if e.OrderID != uuid.Nil {
		id := e.OrderID
		n.OrderID = &id
	}
	return n
}

var statusLabels = map[enums.OrderStatus]types.LocalizedText{
	enums.OrderStatusPendingConfirmation: types.Text("pending confirmation", "بانتظار التأكيد"),
	enums.OrderStatusConfirmed:           types.Text("confirmed", "مؤكد"),
	enums.OrderStatusPreparing:           types.Text("being prepared", "قيد التحضير"),
	enums.OrderStatusReadyForPickup:      types.Text("ready for pickup", "جاهز للاستلام"),
	enums.OrderStatusOutForDelivery:      types.Text("out for delivery", "في الطريق إليك"),
	enums.OrderStatusDelivered:           types.Text("delivered", "تم التسليم"),
	enums.OrderStatusCancelled:           types.Text("cancelled", "ملغى"),
	enums.OrderStatusFailedDelivery:      types.Text("failed delivery", "فشل التسليم"),
}

// StatusLabel renders status for humans in both languages.
func StatusLabel(status enums.OrderStatus) types.LocalizedText {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return types.Text(string(status), string(status))
}

func shortRef(id uuid.UUID) string {
	return id.String()[:8]
}

// OrderCreated goes to the customer who placed the order.
func OrderCreated(order *models.Order) Event {
	ref := shortRef(order.ID)
	return Event{
		Type:    enums.NotificationTypeOrderCreated,
		OrderID: order.ID,
		Title:   types.Text("Order placed", "تم تقديم الطلب"),
		Message: types.Text(
			fmt.Sprintf("Your order #%s has been placed and is awaiting confirmation.", ref),
			fmt.Sprintf("تم تقديم طلبك رقم #%s وهو بانتظار التأكيد.", ref),
		),
	}
}

// OrderReceived goes to the owner of the vendor that must fulfil the order.
func OrderReceived(order *models.Order) Event {
	ref := shortRef(order.ID)
	return Event{
		Type:    enums.NotificationTypeOrderReceived,
		OrderID: order.ID,
		Title:   types.Text("New order received", "تم استلام طلب جديد"),
		Message: types.Text(
			fmt.Sprintf("Order #%s is waiting for your confirmation.", ref),
			fmt.Sprintf("الطلب رقم #%s بانتظار تأكيدك.", ref),
		),
	}
}

func OrderStatusUpdated(order *models.Order) Event {
	ref := shortRef(order.ID)
	label := StatusLabel(order.OrderStatus)
	return Event{
		Type:    enums.NotificationTypeOrderStatusUpdated,
		OrderID: order.ID,
		Title:   types.Text("Order status updated", "تم تحديث حالة الطلب"),
		Message: types.Text(
			fmt.Sprintf("Your order #%s is now %s.", ref, label.EN),
			fmt.Sprintf("طلبك رقم #%s الآن %s.", ref, label.AR),
		),
	}
}

func OrderCancelled(order *models.Order) Event {
	ref := shortRef(order.ID)
	return Event{
		Type:    enums.NotificationTypeOrderCancelled,
		OrderID: order.ID,
		Title:   types.Text("Order cancelled", "تم إلغاء الطلب"),
		Message: types.Text(
			fmt.Sprintf("Order #%s has been cancelled.", ref),
			fmt.Sprintf("تم إلغاء الطلب رقم #%s.", ref),
		),
	}
}
