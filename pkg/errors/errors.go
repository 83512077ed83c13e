package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/angelmondragon/ovenly-backend/pkg/types"
)

type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeMixedVendor      Code = "MIXED_VENDOR"
	CodeEmptyCart        Code = "EMPTY_CART"
	CodeActionNotAllowed Code = "ACTION_NOT_ALLOWED"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeIdempotency      Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit        Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeDependency       Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code is surfaced over HTTP. When Expose is false
// the caller-facing message is replaced with PublicMessage.
type Metadata struct {
	HTTPStatus    int
	Retryable     bool
	PublicMessage types.LocalizedText
	Expose        bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: types.Text("Validation failed", "فشل التحقق من البيانات"),
		Expose:        true,
	},
	CodeMixedVendor: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: types.Text("Cart contains items from more than one vendor", "السلة تحتوي على منتجات من أكثر من متجر"),
		Expose:        true,
	},
	CodeEmptyCart: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: types.Text("Cart is empty", "السلة فارغة"),
		Expose:        true,
	},
	CodeActionNotAllowed: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: types.Text("Action not allowed", "الإجراء غير مسموح به"),
		Expose:        true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: types.Text("Authentication required", "المصادقة مطلوبة"),
		Expose:        true,
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: types.Text("Access denied", "تم رفض الوصول"),
		Expose:        true,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: types.Text("Resource not found", "المورد غير موجود"),
		Expose:        true,
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		Retryable:     true,
		PublicMessage: types.Text("Resource was modified concurrently", "تم تعديل المورد بشكل متزامن"),
		Expose:        true,
	},
	CodeIdempotency: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: types.Text("Idempotency key reused with a different request", "تم استخدام مفتاح عدم التكرار مع طلب مختلف"),
		Expose:        true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		Retryable:     true,
		PublicMessage: types.Text("Too many requests, please try again later", "طلبات كثيرة جداً، يرجى المحاولة لاحقاً"),
		Expose:        true,
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: types.Text("Internal server error", "خطأ داخلي في الخادم"),
	},
	CodeDependency: {
		HTTPStatus:    http.StatusServiceUnavailable,
		Retryable:     true,
		PublicMessage: types.Text("Service temporarily unavailable", "الخدمة غير متاحة مؤقتاً"),
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code      Code
	message   string
	localized types.LocalizedText
	fields    []types.FieldError
	details   any
	cause     error
}

// New builds an error whose caller-facing text falls back to the code's
// public message until Localized is applied.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf builds an error with an English and Arabic message.
func Newf(code Code, en, ar string) *Error {
	return &Error{code: code, message: en, localized: types.Text(en, ar)}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Localized returns the bilingual message, defaulting to the code's public text.
func (e *Error) Localized() types.LocalizedText {
	if e == nil {
		return MetadataFor(CodeInternal).PublicMessage
	}
	if e.localized.IsZero() {
		return MetadataFor(e.code).PublicMessage
	}
	return e.localized
}

func (e *Error) WithLocalized(en, ar string) *Error {
	if e == nil {
		return nil
	}
	e.localized = types.Text(en, ar)
	return e
}

// WithField attaches a field-level bilingual message.
func (e *Error) WithField(field, en, ar string) *Error {
	if e == nil {
		return nil
	}
	e.fields = append(e.fields, types.FieldError{Field: field, Message: types.Text(en, ar)})
	return e
}

func (e *Error) Fields() []types.FieldError {
	if e == nil {
		return nil
	}
	return e.fields
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
