// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package redact

import (
	"errors"
	"net/url"
	"strings"
)

const placeholder = "REDACTED"

var sensitiveParams = []string{"token", "password", "pass", "apikey", "api_key", "passkey", "sid"}

// URLString masks credentials and sensitive query values in a raw URL.
// Strings that do not parse as URLs are returned unchanged.
func URLString(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}

	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), placeholder)
		}
	}

	if u.RawQuery != "" {
		pairs := strings.Split(u.RawQuery, "&")
		for i, pair := range pairs {
			key, _, found := strings.Cut(pair, "=")
			if found && isSensitive(key) {
				pairs[i] = key + "=" + placeholder
			}
		}
		u.RawQuery = strings.Join(pairs, "&")
	}

	return u.String()
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, p := range sensitiveParams {
		if key == p {
			return true
		}
	}
	return false
}

// URLError rewrites the URL of a *url.Error anywhere in the chain so that the
// returned error is safe to log. Other errors pass through untouched.
func URLError(err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	return &url.Error{
		Op:  urlErr.Op,
		URL: URLString(urlErr.URL),
		Err: urlErr.Err,
	}
}
