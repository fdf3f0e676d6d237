// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import (
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the minimum number of runes in a password.
const MinPasswordLength = 8

// IsValidPassword reports whether candidate satisfies the password policy:
// at least MinPasswordLength runes, with at least one cased letter, one
// digit and one rune that is neither a letter nor a digit.
func IsValidPassword(candidate string) bool {
	if utf8.RuneCountInString(candidate) < MinPasswordLength {
		return false
	}

	var hasAlpha, hasDigit, hasSpecial bool
	for _, r := range candidate {
		switch {
		case unicode.IsUpper(r) || unicode.IsLower(r):
			hasAlpha = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}
	return hasAlpha && hasDigit && hasSpecial
}
