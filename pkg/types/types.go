package types

// JSONMap is a free-form JSON object column.
type JSONMap map[string]any

// SuccessEnvelope wraps every successful API payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope wraps every API error payload.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// APIError is the public error body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
