package phone

import "regexp"

// e164Pattern matches international dialing format: a leading "+"
// followed by 10-15 digits, e.g. +11234567890
var e164Pattern = regexp.MustCompile(`^\+\d{10,15}$`)

// IsValid reports whether the phone number is in E.164 format
func IsValid(phoneNumber string) bool {
	return e164Pattern.MatchString(phoneNumber)
}
