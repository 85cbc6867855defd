package errors

import (
	"net/http"

	"attribution/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details == "" {
		return e.message
	}

	return e.message + ": " + e.details
}

// Is matches errors carrying the same business error code, so values derived
// with WithDetails still match the predefined error.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == t.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Validation errors: surfaced immediately, nothing is committed
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"輸入資料驗證失敗",
		"",
	)

	ErrMissingRecipientContact = NewBaseError(
		http.StatusBadRequest,
		"MISSING_RECIPIENT_CONTACT",
		"收件人缺少必要的聯絡方式",
		"",
	)

	ErrInvalidCoordinates = NewBaseError(
		http.StatusBadRequest,
		"INVALID_COORDINATES",
		"座標格式錯誤",
		"",
	)

	ErrInvalidRadius = NewBaseError(
		http.StatusBadRequest,
		"INVALID_RADIUS",
		"搜尋半徑無效",
		"",
	)

	ErrInvalidTrigger = NewBaseError(
		http.StatusBadRequest,
		"INVALID_TRIGGER",
		"不支援的預約觸發事件",
		"",
	)

	// Not found errors
	ErrBookingNotFound = NewBaseError(
		http.StatusNotFound,
		"BOOKING_NOT_FOUND",
		"找不到該預約",
		"",
	)

	ErrAttributionNotFound = NewBaseError(
		http.StatusNotFound,
		"ATTRIBUTION_NOT_FOUND",
		"找不到該派案",
		"",
	)

	ErrProfessionalNotFound = NewBaseError(
		http.StatusNotFound,
		"PROFESSIONAL_NOT_FOUND",
		"找不到該專業人員",
		"",
	)

	ErrNotificationNotFound = NewBaseError(
		http.StatusNotFound,
		"NOTIFICATION_NOT_FOUND",
		"找不到該通知",
		"",
	)

	ErrEligibilityNotFound = NewBaseError(
		http.StatusNotFound,
		"ELIGIBILITY_NOT_FOUND",
		"該專業人員不在此派案的候選名單中",
		"",
	)

	// State conflicts: the request is a no-op
	ErrAttributionFinalized = NewBaseError(
		http.StatusConflict,
		"ATTRIBUTION_FINALIZED",
		"派案已結束，無法再變更狀態",
		"",
	)

	ErrInvalidTransition = NewBaseError(
		http.StatusConflict,
		"INVALID_TRANSITION",
		"派案狀態轉換無效",
		"",
	)

	ErrNotificationNotFailed = NewBaseError(
		http.StatusConflict,
		"NOTIFICATION_NOT_FAILED",
		"只有失敗的通知可以重新發送",
		"",
	)

	// Response link errors
	ErrInvalidResponseToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_RESPONSE_TOKEN",
		"無效或已過期的回覆連結",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"資料庫交易失敗",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"系統內部錯誤",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"找不到該資源",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "資料庫執行失敗"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// IsValidation reports whether err is a caller input problem that must not be retried.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrMissingRecipientContact) ||
		errors.Is(err, ErrInvalidCoordinates) ||
		errors.Is(err, ErrInvalidRadius) ||
		errors.Is(err, ErrInvalidTrigger)
}

// IsNotFound reports whether err is any of the not-found errors.
func IsNotFound(err error) bool {
	var appErr AppError
	if !errors.As(err, &appErr) {
		return false
	}

	return appErr.HTTPCode() == http.StatusNotFound
}

// IsStateConflict reports whether err is a transition attempted on a finalized attribution.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrAttributionFinalized) || errors.Is(err, ErrInvalidTransition)
}
