package models

import (
	"errors"
	"fmt"
)

// Error codes used in error records and internal error handling.
const (
	ErrCodeTimeout      = "FETCH_TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeRenderCrash  = "RENDER_CRASH"
	ErrCodeExtraction   = "EXTRACTION_EMPTY"
	ErrCodeSink         = "SINK_FAILURE"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

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

// ErrorCode extracts the crawl error code from an error chain, falling
// back to a generic navigation code for untyped errors.
func ErrorCode(err error) string {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeNavigation
}
