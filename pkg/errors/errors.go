package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeStorage represents remote store errors, transient by nature
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeParsing represents record parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeDelivery represents notification delivery errors
	ErrorTypeDelivery ErrorType = "delivery"
	// ErrorTypeSubscription represents subscription command errors
	ErrorTypeSubscription ErrorType = "subscription"
	// ErrorTypeScrape represents scrape fetch errors
	ErrorTypeScrape ErrorType = "scrape"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// Sentinel errors surfaced to users by the command layer.
var (
	// ErrDuplicateSubscription is returned when a keyword is already being scanned
	ErrDuplicateSubscription = errors.New("keyword is already being scanned")
	// ErrUnknownSubscription is returned when no scan exists for a keyword
	ErrUnknownSubscription = errors.New("no active scan for keyword")
	// ErrDeliveryBlocked is returned when the recipient disabled direct messages
	ErrDeliveryBlocked = errors.New("recipient blocks direct messages")
)

// PipelineError represents a pipeline-specific error
type PipelineError struct {
	Type    ErrorType
	Subject string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Subject, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Subject, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth retrying on the next cycle
func (e *PipelineError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeStorage:
		return true
	case ErrorTypeScrape:
		return true
	case ErrorTypeDelivery:
		return false
	case ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// New creates a new PipelineError
func New(errType ErrorType, subject, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Subject: subject,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewStorage creates a new storage error
func NewStorage(subject, message string, err error) *PipelineError {
	return New(ErrorTypeStorage, subject, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(subject, message string, err error) *PipelineError {
	return New(ErrorTypeParsing, subject, message, err)
}

// NewDelivery creates a new delivery error
func NewDelivery(subject, message string, err error) *PipelineError {
	return New(ErrorTypeDelivery, subject, message, err)
}

// NewSubscription creates a new subscription error
func NewSubscription(subject, message string, err error) *PipelineError {
	return New(ErrorTypeSubscription, subject, message, err)
}

// NewScrape creates a new scrape error
func NewScrape(subject, message string, err error) *PipelineError {
	return New(ErrorTypeScrape, subject, message, err)
}

// NewValidation creates a new validation error
func NewValidation(subject, message string) *PipelineError {
	return New(ErrorTypeValidation, subject, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}
