package types

// Envelope is the body shape shared by every API response.
type Envelope struct {
	Success bool          `json:"success"`
	Message LocalizedText `json:"message"`
	Data    any           `json:"data"`
	Errors  []FieldError  `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string        `json:"field"`
	Message LocalizedText `json:"message"`
}
