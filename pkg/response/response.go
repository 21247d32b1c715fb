package response

// Envelope is the generic error/success body used by middleware and admin
// endpoints. Search endpoints carry their own typed responses.
type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func Success(message string, data any) Envelope {
	return Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func Error(code, message string, data any) Envelope {
	return Envelope{
		Success: false,
		Code:    code,
		Message: message,
		Data:    data,
	}
}
