// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
)

// retryCounts maps error codes to the number of automatic retries the
// pipeline grants. LLM failures get exactly one fallback to rule-based
// extraction instead of a retry loop, so their budget here stays at zero.
var retryCounts = map[ErrorCode]int{
	ErrCodeExtractionFailed:   1,
	ErrCodeLLMTimeout:         0,
	ErrCodeLLMResponseInvalid: 0,
	ErrCodeValidationFailed:   0,
	ErrCodeEmptyDocumentSet:   0,
	ErrCodePartialFailure:     0,
	ErrCodeCacheUnavailable:   2,
	ErrCodeAnalysisCancelled:  0,
}

// GetRetryCount returns the retry budget for an error code.
func GetRetryCount(code ErrorCode) int {
	if n, ok := retryCounts[code]; ok {
		return n
	}
	return 0
}

// AsStandard extracts a StandardError from an error chain, wrapping unknown
// errors as extraction failures so callers always see one taxonomy.
func AsStandard(documentID string, err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewExtractionFailedError(documentID, err)
}

// IsRetryable reports whether the error chain carries a retryable code.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
