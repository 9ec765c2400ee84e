package netutil

import "time"

// SanitizeTimeout replaces a non-positive timeout with fallback. Connect
// paths use it to collapse "unset" and "nonsense" values into the
// configured default.
func SanitizeTimeout(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// SanitizeTimeoutAllowZero keeps zero as an explicit "no timeout" and
// falls back only for negative values.
func SanitizeTimeoutAllowZero(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return 0
	}
	return SanitizeTimeout(d, fallback)
}
