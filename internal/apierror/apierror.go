// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Kind carries the machine-readable error variant; Context carries the typed
// payload of that variant (ids, quantities) so callers can decide remediation
// without string-matching on Detail.
type APIError struct {
	Kind    string                 `json:"kind,omitempty"`
	Detail  string                 `json:"detail"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewKind builds an envelope for a typed domain error variant.
func NewKind(kind, msg string, ctx map[string]interface{}) *APIError {
	return &APIError{Kind: kind, Detail: msg, Context: ctx}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}
