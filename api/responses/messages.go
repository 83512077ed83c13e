package responses

import "github.com/angelmondragon/ovenly-backend/pkg/types"

// Success messages shared by the controllers.
var (
	MsgFetched              = types.Text("Data fetched successfully.", "تم جلب البيانات بنجاح.")
	MsgCartItemAdded        = types.Text("Item added to cart successfully.", "تمت إضافة المنتج إلى السلة بنجاح.")
	MsgCartItemUpdated      = types.Text("Cart item updated successfully.", "تم تحديث عنصر السلة بنجاح.")
	MsgCartItemRemoved      = types.Text("Item removed from cart successfully.", "تمت إزالة المنتج من السلة بنجاح.")
	MsgCartCleared          = types.Text("Cart cleared successfully.", "تم إفراغ السلة بنجاح.")
	MsgOrderCreated         = types.Text("Order created successfully.", "تم إنشاء الطلب بنجاح.")
	MsgOrderStatusUpdated   = types.Text("Order status updated successfully.", "تم تحديث حالة الطلب بنجاح.")
	MsgOrderCancelled       = types.Text("Order cancelled successfully.", "تم إلغاء الطلب بنجاح.")
	MsgNotificationRead     = types.Text("Notification marked as read.", "تم تعليم الإشعار كمقروء.")
	MsgNotificationsAllRead = types.Text("All notifications marked as read.", "تم تعليم جميع الإشعارات كمقروءة.")
	MsgHealthy              = types.Text("Service is healthy.", "الخدمة تعمل بشكل سليم.")
)
