package tushare

import (
	"errors"
	"fmt"
)

// CodeRateLimited is returned by Tushare when the per-minute quota of an
// interface is exhausted
const CodeRateLimited = 40203

// APIError represents a failed Tushare call
type APIError struct {
	API       string
	Code      int // upstream code; 0 for transport failures
	Msg       string
	Err       error
	Retryable bool
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("tushare %s: %v", e.API, e.Err)
	case e.Code != 0:
		return fmt.Sprintf("tushare %s: code %d: %s", e.API, e.Code, e.Msg)
	default:
		return fmt.Sprintf("tushare %s: %s", e.API, e.Msg)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is an exhausted-quota response
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeRateLimited
}

// IsRetryable reports whether err may succeed on a later attempt
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable
}
