package responses

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/types"
)

type envelopeBody struct {
	Success bool                `json:"success"`
	Message types.LocalizedText `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  []types.FieldError  `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, MsgOrderCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.True(t, body.Success)
	assert.Equal(t, MsgOrderCreated, body.Message)
	assert.JSONEq(t, `{"hello":"world"}`, string(body.Data))
	assert.Empty(t, body.Errors)
}

func TestWriteErrorExposesValidationFields(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.Validation("quantity", "Valid quantity is required.", "الكمية الصالحة مطلوبة.")
	WriteError(t.Context(), logger.Nop(), w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "Valid quantity is required.", body.Message.EN)
	assert.Equal(t, "الكمية الصالحة مطلوبة.", body.Message.AR)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "quantity", body.Errors[0].Field)
	assert.Equal(t, "null", string(body.Data))
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := map[pkgerrors.Code]int{
		pkgerrors.CodeMixedVendor:      http.StatusBadRequest,
		pkgerrors.CodeEmptyCart:        http.StatusBadRequest,
		pkgerrors.CodeActionNotAllowed: http.StatusBadRequest,
		pkgerrors.CodeUnauthorized:     http.StatusUnauthorized,
		pkgerrors.CodeForbidden:        http.StatusForbidden,
		pkgerrors.CodeNotFound:         http.StatusNotFound,
		pkgerrors.CodeIdempotency:      http.StatusConflict,
		pkgerrors.CodeDependency:       http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		w := httptest.NewRecorder()
		WriteError(t.Context(), nil, w, pkgerrors.New(code, "x"))
		assert.Equal(t, status, w.Code, "code %s", code)
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	cause := fmt.Errorf("select failed: %w", errors.New("relation carts does not exist"))
	WriteError(t.Context(), logger.Nop(), w,
		pkgerrors.Wrap(pkgerrors.CodeInternal, cause, "load cart").WithDetails(map[string]string{"sql": "secret"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage, body.Message)
	assert.Equal(t, "null", string(body.Data))
	assert.NotContains(t, w.Body.String(), "relation carts")
}

func TestWriteErrorDefaultsToInternalForUntypedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(t.Context(), nil, w, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "Internal server error", body.Message.EN)
}
