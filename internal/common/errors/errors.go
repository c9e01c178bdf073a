// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeExtractionFailed   ErrorCode = "EXTRACTION_FAILED"
	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMResponseInvalid ErrorCode = "LLM_RESPONSE_INVALID"

	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeEmptyDocumentSet ErrorCode = "EMPTY_DOCUMENT_SET"

	ErrCodePartialFailure    ErrorCode = "PARTIAL_FAILURE"
	ErrCodeCacheUnavailable  ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeAnalysisCancelled ErrorCode = "ANALYSIS_CANCELLED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewExtractionFailedError creates a retryable extraction error. The hybrid
// orchestrator recovers from it locally via the fallback chain; it only
// surfaces when every tier failed.
func NewExtractionFailedError(documentID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Requirement extraction failed",
		Details:   fmt.Sprintf("documentId: %s, error: %s", documentID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM completion timeout",
		Details:   "completion call exceeded configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMResponseInvalidError creates a non-retryable parse error. The caller
// is expected to fall back to rule-based extraction, not retry the LLM.
func NewLLMResponseInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMResponseInvalid,
		Message:   "LLM returned unusable content",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyDocumentSetError creates a non-retryable error for a tender with
// no documents.
func NewEmptyDocumentSetError(tenderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyDocumentSet,
		Message:   "Tender has no documents to analyze",
		Details:   fmt.Sprintf("tenderId: %s", tenderID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPartialFailureError records one failed document in a multi-document
// tender. The analysis continues without it.
func NewPartialFailureError(documentID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePartialFailure,
		Message:   "Document excluded from consolidation",
		Details:   fmt.Sprintf("documentId: %s, error: %s", documentID, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{"documentId": documentID},
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Cache failures
// never abort an analysis.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Extraction cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisCancelledError marks a cooperatively cancelled run.
func NewAnalysisCancelledError(tenderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisCancelled,
		Message:   "Tender analysis cancelled",
		Details:   fmt.Sprintf("tenderId: %s", tenderID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
