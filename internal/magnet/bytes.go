// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package magnet

import "fmt"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with binary units and one decimal, e.g. "2.0 GB".
func FormatBytes(n int64) string {
	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, byteUnits[unit])
}
