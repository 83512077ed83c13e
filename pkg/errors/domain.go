package errors

// Validation reports a single invalid input field.
func Validation(field, en, ar string) *Error {
	return Newf(CodeValidation, en, ar).WithField(field, en, ar)
}

func NotFound(en, ar string) *Error {
	return Newf(CodeNotFound, en, ar)
}

func Forbidden(en, ar string) *Error {
	return Newf(CodeForbidden, en, ar)
}

// Conflict reports a write that lost a race with a concurrent request.
func Conflict(en, ar string) *Error {
	return Newf(CodeConflict, en, ar)
}

func ActionNotAllowed(en, ar string) *Error {
	return Newf(CodeActionNotAllowed, en, ar)
}

func EmptyCart() *Error {
	return Newf(CodeEmptyCart, "Cannot create order from an empty cart.", "لا يمكن إنشاء طلب من سلة فارغة.")
}

func MixedVendor(en, ar string) *Error {
	return Newf(CodeMixedVendor, en, ar).WithField("cart", en, ar)
}

func Unauthorized(en, ar string) *Error {
	return Newf(CodeUnauthorized, en, ar)
}
