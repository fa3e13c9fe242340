// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"fmt"
)

// QueryError reports a failed read against the content store.
type QueryError struct {
	Op          string // Client operation, e.g. "list_posts"
	StatusCode  int    // 0 when the request never got a response
	Description string // Error description returned by the store, if any
	Err         error
}

func (e *QueryError) Error() string {
	return describe("query", e.Op, e.StatusCode, e.Description, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// WriteError reports a failed mutation against the content store.
type WriteError struct {
	Op          string
	StatusCode  int
	Description string
	Err         error
}

func (e *WriteError) Error() string {
	return describe("write", e.Op, e.StatusCode, e.Description, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func describe(kind, op string, status int, description string, err error) string {
	msg := fmt.Sprintf("content %s %s failed", kind, op)
	if status != 0 {
		msg += fmt.Sprintf(" (status %d)", status)
	}
	if description != "" {
		msg += ": " + description
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg
}
