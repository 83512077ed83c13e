package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, msg types.LocalizedText, data any) {
	WriteSuccessStatus(w, http.StatusOK, msg, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, msg types.LocalizedText, data any) {
	writeJSON(w, status, types.Envelope{Success: true, Message: msg, Data: data})
}

// WriteError renders err as a failure envelope. Codes that are not exposed
// (internal and dependency failures) answer with the generic public message.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	payload := types.Envelope{
		Success: false,
		Message: meta.PublicMessage,
	}
	if meta.Expose {
		payload.Message = typed.Localized()
		payload.Errors = typed.Fields()
		payload.Data = typed.Details()
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).LogFields())
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
