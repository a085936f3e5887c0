package transport

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ErrorBody carries a human-readable message and optional structured details.
type ErrorBody struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ListMeta describes a collection payload.
type ListMeta struct {
	Count int `json:"count"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewList wraps an ordered collection. Board-scoped lists are never paginated.
func NewList(items interface{}, count int) Envelope {
	return NewSuccess(items, ListMeta{Count: count})
}

// NewError returns an error envelope; code is one of the domain error codes.
func NewError(code, message string, details interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  &ErrorBody{Message: message, Details: details},
	}
}
