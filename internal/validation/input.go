package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength         = 3
	MaxUsernameLength         = 30
	MinServiceNameLength      = 3
	MaxServiceNameLength      = 200
	MaxOfferDescriptionLength = 5000
	MaxOfferTermsLength       = 2000
	MaxDeliverableLength      = 200
	MaxDeliverablesCount      = 20
	MaxPrice                  = 100000000.0
	MinPhoneDigits            = 10
	MaxPhoneDigits            = 15
)

var (
	localPartRegex = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	domainRegex    = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	usernameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	phoneRegex     = regexp.MustCompile(`^\+?[0-9]+$`)
	panRegex       = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	upiRegex       = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}$`)
)

// ValidateLength checks the rune length of a string field.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateEmail checks the email format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("invalid email format")
	}

	localPart, domainPart := parts[0], parts[1]
	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("email local part must be between 1 and 64 characters")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("email domain must be between 1 and 255 characters")
	}
	if !localPartRegex.MatchString(localPart) {
		return fmt.Errorf("email local part contains invalid characters")
	}
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("email domain has an invalid format")
	}

	return nil
}

// ValidatePhone checks an E.164-ish phone number.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone number is required")
	}
	phone = strings.TrimSpace(phone)
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("phone number may contain only digits and a leading +")
	}
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < MinPhoneDigits || len(digits) > MaxPhoneDigits {
		return fmt.Errorf("phone number must have between %d and %d digits", MinPhoneDigits, MaxPhoneDigits)
	}
	return nil
}

// ValidateUsername checks an account username.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	username = strings.TrimSpace(username)
	if err := ValidateLength("username", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may contain only letters, digits and underscore")
	}
	if username[0] >= '0' && username[0] <= '9' {
		return fmt.Errorf("username must not start with a digit")
	}
	return nil
}

// ValidatePAN checks the Indian tax id format (AAAAA0000A).
func ValidatePAN(pan string) error {
	if pan == "" {
		return fmt.Errorf("PAN number is required")
	}
	if !panRegex.MatchString(strings.ToUpper(strings.TrimSpace(pan))) {
		return fmt.Errorf("PAN number has an invalid format")
	}
	return nil
}

// ValidateUPI checks a UPI handle (name@bank).
func ValidateUPI(handle string) error {
	if handle == "" {
		return fmt.Errorf("UPI handle is required")
	}
	if !upiRegex.MatchString(strings.TrimSpace(handle)) {
		return fmt.Errorf("UPI handle has an invalid format")
	}
	return nil
}

// ValidateNonEmpty checks that a string is not blank.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	return nil
}
