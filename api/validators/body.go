package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSONBody decodes a JSON request into dest and runs its validate tags.
// An empty body decodes as an empty object.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil && err != io.EOF {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithLocalized("Invalid request body.", "نص الطلب غير صالح.").
			WithField("body", "Request body must be valid JSON.", "يجب أن يكون نص الطلب JSON صالحًا.")
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	out := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithLocalized("Validation failed.", "فشل التحقق من البيانات.")
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	for _, fieldErr := range errs {
		msg := validationMessage(fieldErr)
		out = out.WithField(fieldErr.Field(), msg.EN, msg.AR)
	}
	return out
}

func validationMessage(fe validator.FieldError) types.LocalizedText {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return types.Text(fmt.Sprintf("%s is required.", field), fmt.Sprintf("الحقل %s مطلوب.", field))
	case "min":
		return types.Text(
			fmt.Sprintf("%s must be at least %s.", field, fe.Param()),
			fmt.Sprintf("يجب ألا يقل الحقل %s عن %s.", field, fe.Param()),
		)
	case "max":
		return types.Text(
			fmt.Sprintf("%s must be at most %s.", field, fe.Param()),
			fmt.Sprintf("يجب ألا يزيد الحقل %s عن %s.", field, fe.Param()),
		)
	case "oneof":
		return types.Text(
			fmt.Sprintf("%s must be one of: %s.", field, fe.Param()),
			fmt.Sprintf("يجب أن يكون الحقل %s أحد القيم: %s.", field, fe.Param()),
		)
	}
	return types.Text(fmt.Sprintf("%s is invalid.", field), fmt.Sprintf("الحقل %s غير صالح.", field))
}
