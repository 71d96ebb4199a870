// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Policy evaluation
	ErrCodeUnknownAgeTier    ErrorCode = "UNKNOWN_AGE_TIER"
	ErrCodeInvalidSubmission ErrorCode = "INVALID_SUBMISSION"
	ErrCodePolicyLoadFailed  ErrorCode = "POLICY_LOAD_FAILED"
	ErrCodeEvaluationTimeout ErrorCode = "EVALUATION_TIMEOUT"

	// Age tier resolution
	ErrCodeAgeTierUnresolved ErrorCode = "AGE_TIER_UNRESOLVED"

	// Storage
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDecisionPersistFailed    ErrorCode = "DECISION_PERSIST_FAILED"

	// Search
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeDecisionIndexFailed           ErrorCode = "DECISION_INDEX_FAILED"

	// Notifications
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Workflow broker
	ErrCodeBrokerUnavailable ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeBrokerRejected    ErrorCode = "BROKER_REJECTED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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

// WithMetadata returns the error with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownAgeTierError is thrown when a submission names a tier the policy
// table does not define. Never retried.
func NewUnknownAgeTierError(tier string) *StandardError {
	return newError(ErrCodeUnknownAgeTier, "Unknown age tier", fmt.Sprintf("targetAgeTier: %s", tier), false).
		WithMetadata("targetAgeTier", tier)
}

func NewInvalidSubmissionError(details string) *StandardError {
	return newError(ErrCodeInvalidSubmission, "Submission failed validation", details, false)
}

func NewPolicyLoadFailedError(err error) *StandardError {
	return newError(ErrCodePolicyLoadFailed, "Policy could not be loaded", err.Error(), false)
}

func NewEvaluationTimeoutError(err error) *StandardError {
	return newError(ErrCodeEvaluationTimeout, "Policy evaluation timed out", err.Error(), true)
}

func NewAgeTierUnresolvedError(userID string) *StandardError {
	return newError(ErrCodeAgeTierUnresolved, "No age tier could be resolved for submitter",
		fmt.Sprintf("userId: %s", userID), false).
		WithMetadata("userId", userID)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewDecisionPersistFailedError(decisionID string, err error) *StandardError {
	return newError(ErrCodeDecisionPersistFailed, "Policy decision could not be stored",
		fmt.Sprintf("decisionId: %s, error: %s", decisionID, err.Error()), true)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

func NewDecisionIndexFailedError(decisionID string, err error) *StandardError {
	return newError(ErrCodeDecisionIndexFailed, "Policy decision could not be indexed",
		fmt.Sprintf("decisionId: %s, error: %s", decisionID, err.Error()), true)
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

func NewBrokerUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeBrokerUnavailable, "Workflow broker unavailable",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

func NewBrokerRejectedError(operation string, err error) *StandardError {
	return newError(ErrCodeBrokerRejected, "Workflow broker rejected the command",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), false)
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeUnknownAgeTier:                "UNKNOWN_AGE_TIER",
	ErrCodeInvalidSubmission:             "INVALID_SUBMISSION",
	ErrCodePolicyLoadFailed:              "POLICY_LOAD_FAILED",
	ErrCodeEvaluationTimeout:             "EVALUATION_TIMEOUT",
	ErrCodeAgeTierUnresolved:             "AGE_TIER_UNRESOLVED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeDecisionPersistFailed:         "DECISION_PERSIST_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeDecisionIndexFailed:           "DECISION_INDEX_FAILED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDecisionPersistFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeDecisionIndexFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeBrokerUnavailable:
		return 3

	case ErrCodeEvaluationTimeout:
		return 2

	default:
		return 0
	}
}

// AsStandardError unwraps err to a *StandardError when one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TIER"):
		return "AGE_TIER"
	case strings.Contains(codeStr, "POLICY") || strings.Contains(codeStr, "EVALUATION") || strings.Contains(codeStr, "SUBMISSION"):
		return "POLICY"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "PERSIST"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "BROKER"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
