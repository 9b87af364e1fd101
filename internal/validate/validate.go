package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCurrency = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ID validates a simple resource identifier (product/category/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Qty parses a strictly positive quantity. Unlike a clamp, a bad value
// is rejected: pricing and totals must not silently fix caller input.
func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 100000 {
		return 0, false
	}
	return n, true
}

// Currency validates an ISO 4217-style code (e.g. RON, EUR).
func Currency(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reCurrency.MatchString(s)
}

// Group validates a customer group id. Empty is allowed and means
// "use the default retail group".
func Group(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, reID.MatchString(s)
}
