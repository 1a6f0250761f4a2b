package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// bcrypt ignores input past 72 bytes, and newer x/crypto refuses it.
const maxPasswordBytes = 72

// minSimilarPartLen is the shortest attribute fragment compared against a password.
const minSimilarPartLen = 4

var attributeSplit = regexp.MustCompile(`\W+`)

// commonPasswords is a short list of leaked passwords rejected outright.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password12": {}, "password123": {}, "passw0rd": {},
	"12345678": {}, "123456789": {}, "1234567890": {}, "87654321": {}, "11111111": {},
	"qwertyuiop": {}, "qwerty123": {}, "qwerty12": {}, "1q2w3e4r": {}, "1qaz2wsx": {},
	"iloveyou": {}, "sunshine": {}, "princess": {}, "football": {}, "baseball": {},
	"welcome1": {}, "welcome123": {}, "letmein1": {}, "trustno1": {}, "superman": {},
	"starwars": {}, "whatever": {}, "dragon123": {}, "monkey123": {}, "abc12345": {},
	"abcd1234": {}, "admin123": {}, "administrator": {}, "changeme": {}, "computer": {},
	"michelle": {}, "jennifer": {}, "jordan23": {}, "zaq12wsx": {}, "asdfghjkl": {},
	"qazwsxedc": {}, "aa123456": {}, "a1b2c3d4": {}, "00000000": {}, "88888888": {},
}

// PasswordPolicy decides whether a password is strong enough to be stored
type PasswordPolicy interface {
	// Validate checks password. attrs maps attribute names (e.g. "username")
	// to the values the password must not resemble.
	Validate(password string, attrs map[string]string) error
}

// PolicyError lists every rule a password broke
type PolicyError struct {
	Problems []string
}

func (e *PolicyError) Error() string {
	return strings.Join(e.Problems, " ")
}

type defaultPolicy struct {
	minLength int
}

// NewPasswordPolicy returns the default policy: minimum length, bcrypt input
// limit, not entirely numeric, not common, not similar to user attributes.
func NewPasswordPolicy(minLength int) PasswordPolicy {
	if minLength < 1 {
		minLength = 8
	}
	return &defaultPolicy{minLength: minLength}
}

func (p *defaultPolicy) Validate(password string, attrs map[string]string) error {
	var problems []string

	if len([]rune(password)) < p.minLength {
		problems = append(problems,
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.minLength))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems,
			fmt.Sprintf("This password is too long. It must contain at most %d bytes.", maxPasswordBytes))
	}
	if password != "" && isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "This password is too common.")
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if similarTo(password, attrs[name]) {
			problems = append(problems, fmt.Sprintf("The password is too similar to the %s.", name))
		}
	}

	if len(problems) > 0 {
		return &PolicyError{Problems: problems}
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similarTo reports whether password contains, or is contained in, the
// attribute value or one of its word fragments (email local part, domain, ...).
func similarTo(password, value string) bool {
	pw := strings.ToLower(password)
	value = strings.ToLower(value)
	if pw == "" || value == "" {
		return false
	}

	parts := append([]string{value}, attributeSplit.Split(value, -1)...)
	for _, part := range parts {
		if len(part) < minSimilarPartLen {
			continue
		}
		if strings.Contains(pw, part) || strings.Contains(part, pw) {
			return true
		}
	}
	return false
}
