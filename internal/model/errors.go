package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by keyed lookups that match no row.
	ErrNotFound = errors.New("not found")
)

// ConfigurationError marks missing or invalid startup configuration.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	return "CONFIG_INVALID: " + e.Message
}

// ValidationError rejects call arguments before they reach a handler.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Field + ": invalid"
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DataDecodeError marks a stored JSON sub-document that could not be used.
type DataDecodeError struct {
	Field string
	Err   error
}

func (e *DataDecodeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DataDecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MediaFetchError marks a failure while selecting, fetching or typing an image.
type MediaFetchError struct {
	Stage string
	URL   string
	Err   error
}

func (e *MediaFetchError) Error() string {
	if e == nil {
		return ""
	}
	if e.URL == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.URL, e.Err)
}

func (e *MediaFetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
