/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a tracked record is not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when registering something that is already registered
	ErrAlreadyExists = errors.New("already exists")

	// ErrConfiguration is returned when entity metadata is missing or inconsistent
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidInput is returned when a computed payload fails validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrIdentifierResolution is returned when neither a primary key nor a placeholder
	// can be produced for a referenced entity
	ErrIdentifierResolution = errors.New("identifier resolution failed")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a record already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ConfigurationError signals a setup defect, typically an entity type that was never
// registered. It is not retryable.
type ConfigurationError struct {
	Type   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error for type %q: %s", e.Type, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ValidationError represents a payload that violates a declared constraint.
type ValidationError struct {
	Entity   string
	EntityID string
	Field    string
	Rule     string
	Message  string
}

func (e *ValidationError) Error() string {
	subject := "validation failed"
	if e.Entity != "" {
		subject = fmt.Sprintf("validation failed for %s", e.Entity)
		if e.EntityID != "" {
			subject = fmt.Sprintf("%s(%s)", subject, e.EntityID)
		}
	}
	if e.Field != "" {
		subject = fmt.Sprintf("%s field %q", subject, e.Field)
	}
	if e.Rule != "" {
		return fmt.Sprintf("%s rule %q: %s", subject, e.Rule, e.Message)
	}
	return fmt.Sprintf("%s: %s", subject, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IdentifierResolutionError means a relationship needed a key or placeholder and found neither.
type IdentifierResolutionError struct {
	Entity   string
	Property string
	Reason   string
}

func (e *IdentifierResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve identifier for %s.%s: %s", e.Entity, e.Property, e.Reason)
}

func (e *IdentifierResolutionError) Is(target error) bool {
	return target == ErrIdentifierResolution
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Type: kind, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(kind, key string) error {
	return &AlreadyExistsError{Type: kind, Key: key}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(typeName, reason string) error {
	return &ConfigurationError{Type: typeName, Reason: reason}
}

// NewValidationError creates a new ValidationError
func NewValidationError(entity, entityID, field, rule, message string) error {
	return &ValidationError{Entity: entity, EntityID: entityID, Field: field, Rule: rule, Message: message}
}

// NewIdentifierResolutionError creates a new IdentifierResolutionError
func NewIdentifierResolutionError(entity, property, reason string) error {
	return &IdentifierResolutionError{Entity: entity, Property: property, Reason: reason}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsIdentifierResolution checks if an error is an identifier resolution error
func IsIdentifierResolution(err error) bool {
	return errors.Is(err, ErrIdentifierResolution)
}
