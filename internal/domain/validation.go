package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Validation errors
var (
	ErrInvalidFullName  = errors.New("invalid full name")
	ErrInvalidBirthDate = errors.New("invalid birth date")
	ErrInvalidPhone     = errors.New("invalid phone number")
)

// Validation constants
const (
	MaxFullNameLength = 255
	MinPhoneDigits    = 10
	MaxPhoneDigits    = 11
	MinBirthYear      = 1900
	BirthDateLayout   = "02/01/2006"
)

// MaxEntryAmount caps a single credit or debit (one million units).
const MaxEntryAmount Money = 100_000_000

// ValidateFullName requires a first name and a surname.
func ValidateFullName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")

	if name == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidFullName)
	}

	if len(name) > MaxFullNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidFullName, MaxFullNameLength)
	}

	if len(strings.Fields(name)) < 2 {
		return "", fmt.Errorf("%w: enter first name and surname", ErrInvalidFullName)
	}

	return name, nil
}

// ValidateBirthDate accepts DD/MM/YYYY or DDMMYYYY and returns the
// DD/MM/YYYY form. The date must exist, fall in or after 1900 and not be
// after today.
func ValidateBirthDate(value string, today time.Time) (string, error) {
	digits := onlyDigits(value)
	if len(digits) != 8 {
		return "", fmt.Errorf("%w: expected DD/MM/YYYY", ErrInvalidBirthDate)
	}

	day, _ := strconv.Atoi(digits[0:2])
	month, _ := strconv.Atoi(digits[2:4])
	year, _ := strconv.Atoi(digits[4:8])

	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: month %d out of range", ErrInvalidBirthDate, month)
	}

	if day < 1 || day > daysIn(time.Month(month), year) {
		return "", fmt.Errorf("%w: day %d out of range", ErrInvalidBirthDate, day)
	}

	if year < MinBirthYear {
		return "", fmt.Errorf("%w: year must be %d or later", ErrInvalidBirthDate, MinBirthYear)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	ty, tm, td := today.Date()
	if date.After(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)) {
		return "", fmt.Errorf("%w: date cannot be in the future", ErrInvalidBirthDate)
	}

	return date.Format(BirthDateLayout), nil
}

// ValidatePhone strips formatting and requires 10 or 11 digits.
func ValidatePhone(phone string) (string, error) {
	for _, r := range phone {
		if !unicode.IsDigit(r) && !strings.ContainsRune(" ()-+.", r) {
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidPhone, r)
		}
	}

	digits := onlyDigits(phone)
	if len(digits) < MinPhoneDigits || len(digits) > MaxPhoneDigits {
		return "", fmt.Errorf("%w: must have %d or %d digits", ErrInvalidPhone, MinPhoneDigits, MaxPhoneDigits)
	}

	return digits, nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
