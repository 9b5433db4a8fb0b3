package utils

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/nyaruka/phonenumbers"
)

var (
	// rxPhone is a regex used to validate phone number, according with the E.164 standard https://en.wikipedia.org/wiki/E.164
	rxPhone = regexp.MustCompile(`^\+[1-9]{1}[0-9]{9,14}$`)
	// rxVerificationCode matches the numeric one-time codes accepted by the verification provider.
	rxVerificationCode = regexp.MustCompile(`^\d{4,10}$`)

	ErrEmptyPhoneNumber       = errors.New("phone number cannot be empty")
	ErrInvalidE164PhoneNumber = errors.New("the provided phone number is not a valid E.164 number")
)

// https://github.com/firebase/firebase-admin-go/blob/cef91acd46f2fc5d0b3408d8154a0005db5bdb0b/auth/user_mgt.go#L449-L457
func ValidatePhoneNumber(phoneNumberStr string) error {
	if phoneNumberStr == "" {
		return ErrEmptyPhoneNumber
	}

	if !rxPhone.MatchString(phoneNumberStr) {
		return ErrInvalidE164PhoneNumber
	}

	parsedNumber, err := phonenumbers.Parse(phoneNumberStr, "")
	if err != nil || !phonenumbers.IsValidNumber(parsedNumber) {
		return ErrInvalidE164PhoneNumber
	}

	return nil
}

// ValidateVerificationCode checks the one-time code is made of 4 to 10 digits.
func ValidateVerificationCode(code string) error {
	if code == "" {
		return fmt.Errorf("verification code cannot be empty")
	}

	if !rxVerificationCode.MatchString(code) {
		return fmt.Errorf("the provided verification code must have between 4 and 10 digits")
	}

	return nil
}
