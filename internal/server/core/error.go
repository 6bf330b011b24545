package core

// Error codes
const (
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrGameNotFound      = "GAME_NOT_FOUND"
	ErrAccountNotFound   = "ACCOUNT_NOT_FOUND"
	ErrAccountExists     = "ACCOUNT_EXISTS"
	ErrQueryFailed       = "QUERY_FAILED"
	ErrQueryNotReadOnly  = "QUERY_NOT_READ_ONLY"
	ErrStorageDisabled   = "STORAGE_DISABLED"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrUnauthorized      = "UNAUTHORIZED"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
