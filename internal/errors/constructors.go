package errors

// Convenience constructors for the gateway's error taxonomy.

// Config errors

func ConfigRequired(field string) *GatewayError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

// Request validation errors

func InvalidRequest(field, reason string) *GatewayError {
	return New(CategoryValidation, SeverityWarning, "invalid request").
		WithContext("field", field).
		WithContext("reason", reason)
}

func MissingTemplate() *GatewayError {
	return New(CategoryValidation, SeverityWarning, "no template file provided").
		WithContext("field", "template")
}

// Storage errors

func StorageUnavailable(path string, cause error) *GatewayError {
	return Wrap(cause, CategoryStorage, SeverityFatal, "storage unavailable").
		WithContext("path", path)
}

func StorageWriteFailed(cause error) *GatewayError {
	return Wrap(cause, CategoryStorage, SeverityError, "storage write failed")
}

// Render errors

func RenderFailed(cause error) *GatewayError {
	return Wrap(cause, CategoryRender, SeverityError, "render failed")
}

// Email errors. These never reach the caller; they exist so the pipeline
// can log them with the usual structure.

func EmailDeliveryFailed(cause error) *GatewayError {
	return Wrap(cause, CategoryEmail, SeverityWarning, "email delivery failed")
}

func EmailDirectiveInvalid(reason string) *GatewayError {
	return New(CategoryEmail, SeverityWarning, "invalid email directive").
		WithContext("reason", reason)
}
