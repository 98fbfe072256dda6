// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package httphelpers

import (
	"io"
	"net/http"
	"strings"
)

// DrainAndClose consumes the remaining response body and closes it to allow connection reuse.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// ReadBody reads at most limit bytes of the response body. Read errors are
// swallowed: the body is only used as diagnostic detail.
func ReadBody(resp *http.Response, limit int64) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, limit))
	return string(data)
}

// NormalizeBasePath turns user input such as "share/" into "/share".
// An empty or root path yields "".
func NormalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// JoinBasePath appends suffix to a normalized base path.
func JoinBasePath(basePath, suffix string) string {
	suffix = strings.TrimPrefix(suffix, "/")
	if suffix == "" {
		if basePath == "" {
			return "/"
		}
		return basePath
	}
	return basePath + "/" + suffix
}
