package services

import (
	"strings"
	"unicode"
)

const (
	minPasswordLength    = 8
	requiredCharClasses  = 3
	passwordSpecialChars = "!@#$%^&*"
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

// PasswordTooLong reports whether password exceeds what bcrypt can hash.
func PasswordTooLong(password string) bool {
	return len(password) > maxPasswordBytes
}

// PasswordProblems lists what password lacks. An empty result means it is acceptable:
// at least 8 characters and at least 3 of lowercase, uppercase, digit, special.
func PasswordProblems(password string) []string {
	var problems []string
	if len([]rune(password)) < minPasswordLength {
		problems = append(problems, "At least 8 characters")
	}

	var lower, upper, digit, special bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c) && c < unicode.MaxASCII:
			lower = true
		case unicode.IsUpper(c) && c < unicode.MaxASCII:
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecialChars, c):
			special = true
		}
	}

	met := 0
	var missing []string
	for _, class := range []struct {
		ok   bool
		name string
	}{
		{lower, "Lowercase letters (a-z)"},
		{upper, "Uppercase letters (A-Z)"},
		{digit, "Numbers (0-9)"},
		{special, "Special characters (!@#$%^&*)"},
	} {
		if class.ok {
			met++
		} else {
			missing = append(missing, class.name)
		}
	}
	if met < requiredCharClasses {
		problems = append(problems, "At least 3 of the following: "+strings.Join(missing, ", "))
	}
	return problems
}

// PasswordMessage renders the problems as a single user-facing sentence.
func PasswordMessage(problems []string) string {
	return "Your password must contain: " + strings.Join(problems, ", ")
}
