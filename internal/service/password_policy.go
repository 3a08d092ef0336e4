package service

import (
	"fmt"
	"unicode"
)

const defaultPasswordMinLength = 8

type passwordPolicyError struct {
	reason string
}

func (e passwordPolicyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrWeakPassword.Error(), e.reason)
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

// validatePassword 最小长度且不能全部为数字
func validatePassword(minLength int, password string) error {
	if minLength <= 0 {
		minLength = defaultPasswordMinLength
	}
	if len([]rune(password)) < minLength {
		return passwordPolicyError{reason: fmt.Sprintf("must be at least %d characters", minLength)}
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return passwordPolicyError{reason: "must not be entirely numeric"}
	}
	return nil
}
