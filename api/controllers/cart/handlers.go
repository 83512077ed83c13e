package cart

import (
	"net/http"

	"github.com/angelmondragon/ovenly-backend/api/controllers/dto"
	"github.com/angelmondragon/ovenly-backend/api/middleware"
	"github.com/angelmondragon/ovenly-backend/api/responses"
	"github.com/angelmondragon/ovenly-backend/api/validators"
	cartsvc "github.com/angelmondragon/ovenly-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/types"
)

// Get returns the caller's cart, creating it on first access.
func Get(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), userID)
		writeCart(w, r, logg, responses.MsgFetched, view, err)
	}
}

func AddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddItem(r.Context(), userID, cartsvc.AddItemInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
		})
		writeCart(w, r, logg, responses.MsgCartItemAdded, view, err)
	}
}

// UpdateItem sets the absolute quantity of one line.
func UpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.ParsePathUUID(r, "cartItemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateItem(r.Context(), userID, itemID, payload.Quantity)
		writeCart(w, r, logg, responses.MsgCartItemUpdated, view, err)
	}
}

func RemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.ParsePathUUID(r, "cartItemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveItem(r.Context(), userID, itemID)
		writeCart(w, r, logg, responses.MsgCartItemRemoved, view, err)
	}
}

func Clear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Clear(r.Context(), userID)
		writeCart(w, r, logg, responses.MsgCartCleared, view, err)
	}
}

func writeCart(w http.ResponseWriter, r *http.Request, logg *logger.Logger, msg types.LocalizedText, view *cartsvc.View, err error) {
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	if view == nil || view.Cart == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart view missing"))
		return
	}
	responses.WriteSuccess(w, msg, dto.NewCartResponse(view))
}
