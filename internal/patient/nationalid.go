package patient

import (
	"strings"
	"time"
	"unicode"
)

const birthDateLayout = "2006-01-02"

// ValidateNationalID normalizes a CPF to its 11 digits and verifies both
// mod-11 check digits. Punctuation such as "111.444.777-35" is accepted.
func ValidateNationalID(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)

	if len(digits) != 11 || strings.Count(digits, digits[:1]) == 11 {
		return "", ErrInvalidNationalID
	}

	var d [11]int
	for i, r := range digits {
		if r < '0' || r > '9' {
			return "", ErrInvalidNationalID
		}
		d[i] = int(r - '0')
	}

	if checkDigit(d[:9]) != d[9] || checkDigit(d[:10]) != d[10] {
		return "", ErrInvalidNationalID
	}
	return digits, nil
}

// CompleteNationalID appends both check digits to a 9-digit CPF base.
func CompleteNationalID(base string) (string, error) {
	if len(base) != 9 {
		return "", ErrInvalidNationalID
	}
	d := make([]int, 0, 11)
	for _, r := range base {
		if r < '0' || r > '9' {
			return "", ErrInvalidNationalID
		}
		d = append(d, int(r-'0'))
	}
	d = append(d, checkDigit(d))
	d = append(d, checkDigit(d))

	var b strings.Builder
	for _, v := range d {
		b.WriteByte(byte('0' + v))
	}
	return ValidateNationalID(b.String())
}

// checkDigit computes the next CPF digit from the digits before it, using
// weights that count down to 2.
func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1
	for _, v := range digits {
		sum += v * weight
		weight--
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func validateBirthDate(raw string, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	dob, err := time.Parse(birthDateLayout, raw)
	if err != nil || dob.After(now) {
		return "", ErrInvalidBirthDate
	}
	return raw, nil
}

func trim(s string) string { return strings.TrimSpace(s) }
