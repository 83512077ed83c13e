package cart

import "github.com/google/uuid"

// addItemRequest leaves presence and range checks to the cart service so the
// error messages match the ones the service emits for every other caller.
type addItemRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
	Quantity  int        `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}
