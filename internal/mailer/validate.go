package mailer

import "regexp"

// addressPattern is a conservative local@domain-with-dot check. It is not an
// RFC 5322 validator; it only filters out values that cannot possibly be
// deliverable addresses.
var addressPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValidAddress reports whether value is acceptable as a destination address.
func IsValidAddress(value string) bool {
	return value != "" && addressPattern.MatchString(value)
}
