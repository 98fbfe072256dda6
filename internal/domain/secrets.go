// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import "strings"

// RedactString replaces a string with asterisks of the same length
func RedactString(s string) string {
	if len(s) == 0 {
		return ""
	}

	return strings.Repeat("*", len(s))
}

// IsRedactedValue reports whether value consists only of asterisks, which is
// what clients send back when they echo a redacted password unchanged.
func IsRedactedValue(value string) bool {
	if value == "" {
		return false
	}
	return strings.Trim(value, "*") == ""
}
