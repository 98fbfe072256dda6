// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dispatch

import "errors"

type ErrorKind string

const (
	ErrorKindNone          ErrorKind = ""
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindTransport     ErrorKind = "transport"
	ErrorKindAPI           ErrorKind = "api"
)

// Outcome is the terminal result of a single dispatch. Success and failure
// share the same shape so callers always receive one.
type Outcome struct {
	Success     bool      `json:"success"`
	HTTPStatus  int       `json:"httpStatus,omitempty"`
	ErrorKind   ErrorKind `json:"errorKind,omitempty"`
	ErrorDetail string    `json:"errorDetail,omitempty"`
}

// OutcomeFromError builds the outcome for an adapter result. status is the
// last HTTP status observed, 0 when no response was received.
func OutcomeFromError(status int, err error) Outcome {
	if err == nil {
		return Outcome{Success: true, HTTPStatus: status}
	}

	out := Outcome{HTTPStatus: status, ErrorDetail: err.Error()}

	var (
		cfgErr *ConfigurationError
		apiErr *APIError
	)
	switch {
	case errors.As(err, &cfgErr):
		out.ErrorKind = ErrorKindConfiguration
		out.HTTPStatus = 0
	case errors.As(err, &apiErr):
		out.ErrorKind = ErrorKindAPI
		out.HTTPStatus = apiErr.StatusCode
	default:
		out.ErrorKind = ErrorKindTransport
	}
	return out
}
