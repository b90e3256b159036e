package models

import (
	"errors"
	"fmt"
)

// Error codes used in outcomes, logs and API responses.
const (
	ErrCodeItemExtraction      = "ITEM_EXTRACTION_FAILED"
	ErrCodeAdapterFailure      = "ADAPTER_FAILED"
	ErrCodePersistenceConflict = "PERSISTENCE_CONFLICT"
	ErrCodePersistenceFailure  = "PERSISTENCE_FAILED"
	ErrCodeNavigation          = "NAVIGATION_FAILED"
	ErrCodeTimeout             = "PAGE_TIMEOUT"
	ErrCodeBrowserCrash        = "BROWSER_CRASH"
	ErrCodeUnsupported         = "UNSUPPORTED"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "SESSION_RUNNING"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CrawlError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type CrawlError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

// NewCrawlError creates a new CrawlError.
func NewCrawlError(code, message string, err error) *CrawlError {
	return &CrawlError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *CrawlError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// ItemError reports a single detail page that could not be extracted.
func ItemError(link string, err error) *CrawlError {
	return NewCrawlError(ErrCodeItemExtraction, link, err)
}

// AdapterError reports a listing that could not be read at all.
func AdapterError(source string, err error) *CrawlError {
	return NewCrawlError(ErrCodeAdapterFailure, source, err)
}

// CodeOf returns the code of the first CrawlError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) string {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether any CrawlError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var ce *CrawlError
		if !errors.As(err, &ce) {
			return false
		}
		if ce.Code == code {
			return true
		}
		err = ce.Err
	}
	return false
}
