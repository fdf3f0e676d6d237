// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icyfeed/icy/internal/auth"
)

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"letters digits and special", "Aa123456789!", true},
		{"exactly minimum length", "abc123!@", true},
		{"missing special character", "A123456789", false},
		{"too short", "Aa1!", false},
		{"seven runes", "Aa1!Aa1", false},
		{"missing digit", "Password!!", false},
		{"missing letter", "12345678!!", false},
		{"empty", "", false},
		{"space counts as special", "pass word 1", true},
		{"uncased letters are not alphabetic", "한글한글1234!", false},
		{"uncased letters are not special", "한글한글a1234", false},
		{"multibyte runes count once", "Ä1!Ä1!Ä1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.IsValidPassword(tt.password))
		})
	}
}
