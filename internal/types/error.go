// error.go
//
// A video hosting service for users, videos, comments, tags and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of videohost.
// videohost is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// videohost is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with videohost.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"fmt"
	"net/http"
)

// CustomError is the error every service returns for a caller-visible failure.
// Code is the HTTP status the error maps to.
type CustomError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Type    string   `json:"type"`
	Errors  []string `json:"errors,omitempty"`
	Err     error    `json:"-"`
}

// Kind sentinels, for use with errors.Is.
var (
	ErrBadRequest   = &CustomError{Code: http.StatusBadRequest}
	ErrUnauthorized = &CustomError{Code: http.StatusUnauthorized}
	ErrForbidden    = &CustomError{Code: http.StatusForbidden}
	ErrNotFound     = &CustomError{Code: http.StatusNotFound}
	ErrConflict     = &CustomError{Code: http.StatusConflict}
	ErrInternal     = &CustomError{Code: http.StatusInternalServerError}
)

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s [type: %s]: %v", e.Code, e.Message, e.Type, e.Err)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is matches a kind sentinel (a CustomError with no message) by code.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

// WithType returns a copy of the error carrying a more specific type tag.
func (e *CustomError) WithType(errorType string) *CustomError {
	c := *e
	c.Type = errorType
	return &c
}

func NotFound(message string) *CustomError {
	return &CustomError{Code: http.StatusNotFound, Message: message, Type: "notfound"}
}

func Conflict(message string) *CustomError {
	return &CustomError{Code: http.StatusConflict, Message: message, Type: "conflict"}
}

// BadRequest optionally carries the individual validation failures.
func BadRequest(message string, errs ...string) *CustomError {
	return &CustomError{Code: http.StatusBadRequest, Message: message, Type: "badrequest", Errors: errs}
}

// FileTooLarge rejects an upload bigger than maxBytes
func FileTooLarge(maxBytes int64) *CustomError {
	return BadRequest(fmt.Sprintf("File size exceeds the %d MB limit.", maxBytes/(1024*1024)))
}

func Unauthorized(message string) *CustomError {
	return &CustomError{Code: http.StatusUnauthorized, Message: message, Type: "unauthorized"}
}

func Forbidden(message string) *CustomError {
	return &CustomError{Code: http.StatusForbidden, Message: message, Type: "forbidden"}
}

// Internal wraps the underlying cause. The cause is logged, never sent to clients.
func Internal(message string, err error) *CustomError {
	return &CustomError{Code: http.StatusInternalServerError, Message: message, Type: "internal", Err: err}
}
