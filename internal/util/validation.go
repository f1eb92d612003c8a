package util

import (
	"regexp"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)
)

// IdentifierKind classifies a login identifier.
type IdentifierKind string

const (
	IdentifierEmail   IdentifierKind = "email"
	IdentifierPhone   IdentifierKind = "phone"
	IdentifierInvalid IdentifierKind = ""
)

// ValidateIdentifier accepts an email address or a 10-digit phone number.
func ValidateIdentifier(identifier string) IdentifierKind {
	switch {
	case emailRegex.MatchString(identifier):
		return IdentifierEmail
	case phoneRegex.MatchString(identifier):
		return IdentifierPhone
	default:
		return IdentifierInvalid
	}
}
