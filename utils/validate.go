package utils

import "regexp"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s-]{2,50}$`)
)

// ValidEmail checks local@domain.tld shape; it does not resolve anything.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidName accepts 2-50 ASCII letters, whitespace or hyphens.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}
