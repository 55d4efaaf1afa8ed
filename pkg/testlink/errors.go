// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testlink

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so callers can tell caller mistakes,
// backend rejections and connectivity problems apart.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindUnsupported      ErrorKind = "unsupported_operation"
	KindAuthentication   ErrorKind = "authentication"
	KindPermission       ErrorKind = "permission"
	KindNotFound         ErrorKind = "not_found"
	KindBackend          ErrorKind = "backend"
	KindTransport        ErrorKind = "transport"
	KindMissingArguments ErrorKind = "missing_arguments"
	KindUnknownOperation ErrorKind = "unknown_operation"
	KindInternal         ErrorKind = "internal"
)

// Backend error codes embedded in TestLink responses.
const (
	CodeAuthenticationFailed = 2000
	CodePermissionDenied     = 3000
	CodeObjectNotFound       = 7000
)

// Error is the uniform error record produced by this package.
type Error struct {
	Kind    ErrorKind
	Message string
	Code    int   // backend error code, 0 when not applicable
	Err     error // underlying cause, if any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same call could succeed.
// Only transport failures qualify; the caller owns any retry policy.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport
}

// NewValidationError returns a validation error for the given message.
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var tlErr *Error
	if errors.As(err, &tlErr) {
		return tlErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// backendError maps an error code embedded in a TestLink response.
func backendError(code int, message string) *Error {
	if message == "" {
		message = "Unknown error"
	}
	switch code {
	case CodeAuthenticationFailed:
		return &Error{Kind: KindAuthentication, Code: code, Message: "TestLink Authentication Failed: Invalid API key"}
	case CodePermissionDenied:
		return &Error{Kind: KindPermission, Code: code, Message: fmt.Sprintf("TestLink Permission Denied: %s", message)}
	case CodeObjectNotFound:
		return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf("TestLink Object Not Found: %s", message)}
	default:
		return &Error{Kind: KindBackend, Code: code, Message: fmt.Sprintf("TestLink API Error (%d): %s", code, message)}
	}
}
