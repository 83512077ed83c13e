package orders

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
)

// Actor is the authenticated caller acting on an order.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// Scope restricts which orders a list query may return. The zero value
// matches nothing.
type Scope struct {
	All           bool
	UserID        *uuid.UUID
	BakeryIDs     []uuid.UUID
	RestaurantIDs []uuid.UUID
}

func (s Scope) empty() bool {
	return !s.All && s.UserID == nil && len(s.BakeryIDs) == 0 && len(s.RestaurantIDs) == 0
}

// OrderList wraps one page of orders plus the next page cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
