package models

// Error kinds reported in the envelope's error field
const (
	ErrorKindValidation        = "validation_error"
	ErrorKindNotFound          = "not_found"
	ErrorKindInvalidTransition = "invalid_transition"
	ErrorKindStorage           = "storage_error"
	ErrorKindIdentityRequired  = "identity_required"
	ErrorKindRateLimited       = "rate_limited"
	ErrorKindInternal          = "internal_error"
)

// Envelope is the body of every API response
type Envelope struct {
	Success     bool        `json:"success"`
	Data        interface{} `json:"data,omitempty"`
	Message     string      `json:"message,omitempty"`
	Error       string      `json:"error,omitempty"`
	UnreadCount *int        `json:"unread_count,omitempty"`
}
