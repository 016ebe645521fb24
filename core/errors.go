/*
Package core contains basic definitions shared by all packages of swiftglyph,
most notably the error codes of the application.

Every error surfacing from one of the swiftglyph packages is an AppError,
carrying a code and a user message. The codes double as process exit codes
for the command line tool.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package core

import (
	"errors"
	"fmt"
)

// General error codes
const (
	NOERROR     int = 0
	EMISSING    int = 122 // resource does not exist
	EINVALID    int = 123 // validation failed
	ECONNECTION int = 124 // remote resource not connected
	EINTERNAL   int = 125 // internal error
)

// Error codes of the atlas build and the blob codec
const (
	EINVALIDCONFIG int = 126 // build configuration rejected
	EFONTLOAD      int = 127 // font cannot be opened or parsed
	EGLYPHOVERFLOW int = 128 // glyph bitmap exceeds its atlas cell
	EEXTERNALTOOL  int = 129 // external tool failed
	EBLOBFORMAT    int = 130 // malformed relocatable blob
)

func errorText(ecode int) string {
	switch ecode {
	case NOERROR:
		return "OK"
	case EMISSING:
		return "not found"
	case EINVALID:
		return "invalid"
	case ECONNECTION:
		return "transmission-error"
	case EINTERNAL:
		return "internal error"
	case EINVALIDCONFIG:
		return "invalid configuration"
	case EFONTLOAD:
		return "font load failure"
	case EGLYPHOVERFLOW:
		return "glyph overflow"
	case EEXTERNALTOOL:
		return "external tool failure"
	case EBLOBFORMAT:
		return "blob format error"
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

type coreError struct {
	error
	code int
	msg  string
}

func (e coreError) Unwrap() error {
	return e.error
}

func (e coreError) Error() string {
	if e.msg == "" || e.msg == e.error.Error() {
		return fmt.Sprintf("[%d] %v", e.code, e.error)
	}
	return fmt.Sprintf("[%d] %s: %v", e.code, e.msg, e.error)
}

func (e coreError) ErrorCode() int {
	return e.code
}

func (e coreError) UserMessage() string {
	return e.msg
}

var _ AppError = coreError{}

// WrapError wraps an error in a core error, featuring an error code and
// a user message.
// If err is nil, an error denoting the code's default text is wrapped.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	msg := fmt.Sprintf(format, v...)
	return coreError{err, code, msg}
}

// Code returns the status code associated with an error.
// If no status code is found, it returns EINTERNAL.
// If err is nil, NOERROR is returned.
func Code(err error) (code int) {
	if err == nil {
		return NOERROR
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// Is reports whether err carries the given error code anywhere in its chain.
func Is(err error, code int) bool {
	for err != nil {
		if e, ok := err.(AppError); ok && e.ErrorCode() == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// UserMessage returns the user message associated with an error.
// If no message is found, it checks StatusCode and returns that message.
// If err is nil, it returns "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.UserMessage()
	}
	return errorText(Code(err))
}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return coreError{
		errors.New(errorText(code)),
		code,
		fmt.Sprintf(format, v...),
	}
}

// ConfigError describes a rejected configuration value. It is delivered
// wrapped with code EINVALIDCONFIG, see InvalidConfig.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidConfig creates an error with code EINVALIDCONFIG for a configuration
// field, wrapping a *ConfigError.
func InvalidConfig(field string, format string, v ...interface{}) error {
	cerr := &ConfigError{Field: field, Reason: fmt.Sprintf(format, v...)}
	return coreError{cerr, EINVALIDCONFIG, cerr.Error()}
}
