// Package errors provides standardized error handling for the trackd
// application. It defines the add-engine error taxonomy, constants, and
// helper functions for consistent error creation, wrapping, and handling.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard errors package functions re-exported for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Path and enumeration error kinds
	PathsNotExist
	NoFiles
	EmptyDirectory
	// Identifier error kinds
	DuplicateIDs
	NamespaceCollision
	InvalidID
	// Imported-component contract error kinds
	MissingComponentIDForImported
	IncorrectIDForImported
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Index error kinds
	IndexLoadFailed
	IndexSaveFailed
)

// TrackError is the base error type for all application errors
type TrackError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *TrackError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *TrackError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *TrackError) Kind() ErrorKind {
	return e.kind
}

// PathsError represents errors carrying one or more offending paths
type PathsError struct {
	TrackError
	paths []string
}

// NewPathsError creates a new paths error. The full offending list is
// carried, not just the first path.
func NewPathsError(msg string, paths []string, kind ErrorKind, err error) *PathsError {
	return &PathsError{
		TrackError: TrackError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		paths: paths,
	}
}

// Error returns the paths error message
func (e *PathsError) Error() string {
	if len(e.paths) > 0 {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, strings.Join(e.paths, ", "), e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, strings.Join(e.paths, ", "))
	}
	return e.TrackError.Error()
}

// Paths returns the paths associated with the error
func (e *PathsError) Paths() []string {
	return e.paths
}

// IDError represents errors related to component identifiers
type IDError struct {
	TrackError
	id string
	// conflicting is the other identifier involved, when two ids clash
	conflicting string
}

// NewIDError creates a new identifier error
func NewIDError(msg string, id string, kind ErrorKind, err error) *IDError {
	return &IDError{
		TrackError: TrackError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		id: id,
	}
}

// WithConflicting records the second identifier involved in the error
func (e *IDError) WithConflicting(id string) *IDError {
	e.conflicting = id
	return e
}

// Error returns the identifier error message
func (e *IDError) Error() string {
	switch {
	case e.id != "" && e.conflicting != "":
		return fmt.Sprintf("%s: %s (conflicts with %s)", e.msg, e.id, e.conflicting)
	case e.id != "":
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.id, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.id)
	}
	return e.TrackError.Error()
}

// ID returns the identifier associated with the error
func (e *IDError) ID() string {
	return e.id
}

// Conflicting returns the second identifier involved, if any
func (e *IDError) Conflicting() string {
	return e.conflicting
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	TrackError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		TrackError: TrackError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.TrackError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// NewError creates a new error with a message and an explicit kind
func NewError(msg string, kind ErrorKind, err error) *TrackError {
	return &TrackError{
		msg:  msg,
		err:  err,
		kind: kind,
	}
}

// New creates a new error with a message
func New(msg string) error {
	return &TrackError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &TrackError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &TrackError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &TrackError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first TrackError in err's chain, or Unknown.
func KindOf(err error) ErrorKind {
	type kinder interface {
		Kind() ErrorKind
	}
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return Unknown
}

// IsPathsNotExist checks if the error reports missing input paths
func IsPathsNotExist(err error) bool {
	var pathsErr *PathsError
	if errors.As(err, &pathsErr) {
		return pathsErr.Kind() == PathsNotExist
	}
	return false
}

// IsNoFiles checks if the error reports that all matches were filtered out
func IsNoFiles(err error) bool {
	var pathsErr *PathsError
	if errors.As(err, &pathsErr) {
		return pathsErr.Kind() == NoFiles
	}
	return false
}

// IsEmptyDirectory checks if the error reports an empty target directory
func IsEmptyDirectory(err error) bool {
	var pathsErr *PathsError
	if errors.As(err, &pathsErr) {
		return pathsErr.Kind() == EmptyDirectory
	}
	return false
}

// IsDuplicateIDs checks if the error reports two path groups collapsing to
// the same identifier
func IsDuplicateIDs(err error) bool {
	var idErr *IDError
	if errors.As(err, &idErr) {
		return idErr.Kind() == DuplicateIDs
	}
	return false
}

// IsNamespaceCollision checks if the error reports a derived identifier
// already reserved by a nested record
func IsNamespaceCollision(err error) bool {
	var idErr *IDError
	if errors.As(err, &idErr) {
		return idErr.Kind() == NamespaceCollision
	}
	return false
}

// IsMissingComponentIDForImported checks if the error reports an imported
// component add without an explicit identifier
func IsMissingComponentIDForImported(err error) bool {
	var idErr *IDError
	if errors.As(err, &idErr) {
		return idErr.Kind() == MissingComponentIDForImported
	}
	return false
}

// IsIncorrectIDForImported checks if the error reports an identifier
// contradicting a tracked imported identity
func IsIncorrectIDForImported(err error) bool {
	var idErr *IDError
	if errors.As(err, &idErr) {
		return idErr.Kind() == IncorrectIDForImported
	}
	return false
}

// IsInvalidID checks if the error reports an unparsable identifier
func IsInvalidID(err error) bool {
	var idErr *IDError
	if errors.As(err, &idErr) {
		return idErr.Kind() == InvalidID
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
